package mysql

import (
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mysql")
	}
	return db, nil
}

// repositories hands out repository implementations bound to one storage
// scope: the bare connection pool or a single transaction.
type repositories struct {
	ext sqlx.Ext
}

func (r repositories) Carts() model.CartRepository       { return &cartRepository{ext: r.ext} }
func (r repositories) Orders() model.OrderRepository     { return &orderRepository{ext: r.ext} }
func (r repositories) Products() model.ProductRepository { return &productRepository{ext: r.ext} }
func (r repositories) Reviews() model.ReviewRepository   { return &reviewRepository{ext: r.ext} }
func (r repositories) Users() model.UserRepository       { return &userRepository{ext: r.ext} }

var (
	_ model.RepositoryProvider = repositories{}
	_ model.UnitOfWork         = &Database{}
)

type Database struct {
	db *sqlx.DB
	repositories
}

func NewDatabase(db *sqlx.DB) *Database {
	return &Database{db: db, repositories: repositories{ext: db}}
}

// Execute runs fn inside a single transaction, rolling back on error or
// panic. All repositories obtained from the provider share that transaction.
func (d *Database) Execute(fn func(provider model.RepositoryProvider) error) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(repositories{ext: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	return errors.Wrap(tx.Commit(), "commit transaction")
}
