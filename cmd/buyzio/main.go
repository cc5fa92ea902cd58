package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	applicationservice "github.com/akaBaytar/buyzio-ecommerce/pkg/application/service"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/common/config"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/service"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/infrastructure/auth"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/infrastructure/email"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/infrastructure/mysql"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/infrastructure/paypal"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/infrastructure/rabbitmq"
	"github.com/akaBaytar/buyzio-ecommerce/pkg/infrastructure/transport"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  "buyzio",
		Usage: "e-commerce storefront service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP API server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "manage database schema",
				Subcommands: []*cli.Command{
					{Name: "up", Action: migrateUp},
					{Name: "down", Action: migrateDown},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("application failed")
	}
}

func serve(_ *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := mysql.Connect(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	database := mysql.NewDatabase(db)

	var dispatcher service.EventDispatcher = rabbitmq.NopDispatcher{}
	if cfg.AMQPURL != "" {
		amqpDispatcher, err := rabbitmq.NewDispatcher(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := amqpDispatcher.Close(); err != nil {
				log.WithError(err).Warn("failed to close event dispatcher")
			}
		}()
		dispatcher = amqpDispatcher
	}

	carts := service.NewCartService(database.Carts(), database.Products(), cfg.PricingPolicy(), dispatcher)
	orders := service.NewOrderService(database, database, dispatcher)
	gateway := paypal.NewClient(cfg.PayPalAPIURL, cfg.PayPalClientID, cfg.PayPalAppSecret)
	mailer := email.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderEmail)
	payments := service.NewPaymentService(orders, gateway, mailer)
	reviews := service.NewReviewService(database, database, dispatcher)
	products := service.NewProductService(database.Products(), dispatcher)
	users := service.NewUserService(database.Users(), auth.NewBcryptPasswordManager(), cfg.PaymentMethods, dispatcher)

	storefront := applicationservice.NewStorefront(carts, orders, payments, reviews, products, users)
	server := transport.NewServer(storefront, cfg.StripeWebhookSecret, cfg.LatestProductsLimit)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: transport.Router(server)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func migrateUp(_ *cli.Context) error {
	return withDatabase(mysql.MigrateUp)
}

func migrateDown(_ *cli.Context) error {
	return withDatabase(mysql.MigrateDown)
}

func withDatabase(fn func(db *sqlx.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := mysql.Connect(cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db)
}
