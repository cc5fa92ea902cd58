package model

import "errors"

var ErrOptimisticLock = errors.New("record has been modified by another transaction")

// RepositoryProvider hands out repositories that share one storage scope:
// either the plain database or a single transaction.
type RepositoryProvider interface {
	Carts() CartRepository
	Orders() OrderRepository
	Products() ProductRepository
	Reviews() ReviewRepository
	Users() UserRepository
}

// UnitOfWork runs fn inside one atomic transaction. When fn returns an
// error nothing it did through the provider is applied.
type UnitOfWork interface {
	Execute(fn func(provider RepositoryProvider) error) error
}
