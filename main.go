package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"posservice/pkg/domain/service"
	"posservice/pkg/infrastructure/config"
	"posservice/pkg/infrastructure/event"
	"posservice/pkg/infrastructure/mysql"
	"posservice/pkg/infrastructure/transport"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:  "posservice",
		Usage: "point-of-sale backend",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply database migrations and exit",
				Action: runMigrations,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("application failed")
	}
}

func serve(_ *cli.Context) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	db, err := mysql.NewConnection(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := mysql.Migrate(db, cfg.MigrationsPath); err != nil {
		return err
	}

	productRepo := mysql.NewProductRepository(db)
	customerRepo := mysql.NewCustomerRepository(db)
	saleRepo := mysql.NewSaleRepository(db)
	webhookRepo := mysql.NewWebhookRepository(db)
	uow := mysql.NewUnitOfWork(db)

	dispatcher := event.NewCompositeDispatcher(
		event.LogDispatcher{},
		event.NewWebhookDispatcher(webhookRepo),
	)

	checkout := service.NewCheckoutService(productRepo, customerRepo, saleRepo, uow, dispatcher, service.CheckoutConfig{
		RedemptionCentsPerPoint: cfg.RedemptionCentsPerPoint,
		EarnRateBasisPoints:     cfg.EarnRateBasisPoints,
		TaxRateBasisPoints:      cfg.TaxRateBasisPoints,
	})
	products := service.NewProductService(productRepo, dispatcher)
	customers := service.NewCustomerService(customerRepo, dispatcher)
	webhooks := service.NewWebhookService(webhookRepo)

	srv := &http.Server{
		Addr:    cfg.ServeRESTAddress,
		Handler: transport.Router(checkout, products, customers, webhooks),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{"url": cfg.ServeRESTAddress}).Info("starting server")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runMigrations(_ *cli.Context) error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	db, err := mysql.NewConnection(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := mysql.Migrate(db, cfg.MigrationsPath); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
