package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/dal/postgres"
	"github.com/corray333/backend-labs/meatshop/internal/dal/rabbitmq"
	"github.com/corray333/backend-labs/meatshop/internal/dal/redis"
	"github.com/corray333/backend-labs/meatshop/internal/dal/repositories/changefeed"
	zonerepo "github.com/corray333/backend-labs/meatshop/internal/dal/repositories/deliveryzone/postgres"
	zonecache "github.com/corray333/backend-labs/meatshop/internal/dal/repositories/deliveryzone/redis"
	outboxrepo "github.com/corray333/backend-labs/meatshop/internal/dal/repositories/outbox/postgres"
	productrepo "github.com/corray333/backend-labs/meatshop/internal/dal/repositories/product/postgres"
	"github.com/corray333/backend-labs/meatshop/internal/otel"
	"github.com/corray333/backend-labs/meatshop/internal/service/notify"
	"github.com/corray333/backend-labs/meatshop/internal/service/services/catalogsvc"
	"github.com/corray333/backend-labs/meatshop/internal/service/services/orderstore"
	"github.com/corray333/backend-labs/meatshop/internal/service/services/ordersvc"
	"github.com/corray333/backend-labs/meatshop/internal/service/session"
	"github.com/corray333/backend-labs/meatshop/internal/service/ticket"
	"github.com/corray333/backend-labs/meatshop/internal/transport/consumer"
	httptransport "github.com/corray333/backend-labs/meatshop/internal/transport/http"
	outboxworker "github.com/corray333/backend-labs/meatshop/internal/worker/outbox"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App represents the application.
type App struct {
	sessions       *session.Manager
	transport      *httptransport.HTTPTransport
	outboxWorker   *outboxworker.Worker
	rabbitMqClient *rabbitmq.Client
	redisClient    *redis.Client
	postgresClient *postgres.Client
	otelController *otel.OtelController
}

// MustNewApp creates a new application.
func MustNewApp() *App {
	otelController := otel.MustInitOtel()
	postgresClient := postgres.MustNewClient()
	rabbitMqClient := rabbitmq.MustNewClient()
	redisClient := redis.MustNewClient()

	zoneRepository := zonecache.NewCachedZoneRepository(
		zonerepo.NewPostgresZoneRepository(postgresClient.Pool()),
		redisClient,
	)
	productRepository := productrepo.NewPostgresProductRepository(postgresClient.Pool())
	outboxRepository := outboxrepo.NewOutboxRepository(postgresClient.Pool())
	changeFeed := changefeed.NewChangeFeedRabbitMQRepository(rabbitMqClient)

	catalogSvc := catalogsvc.MustNewCatalogService(
		catalogsvc.WithZoneRepository(zoneRepository),
		catalogsvc.WithProductRepository(productRepository),
	)

	orderSvc := ordersvc.MustNewOrderService(
		ordersvc.WithPostgresClient(postgresClient),
		ordersvc.WithChangeFeed(changeFeed),
		ordersvc.WithOutboxRepository(outboxRepository),
	)

	worker := outboxworker.NewWorker(outboxRepository, changeFeed)
	subscriber := consumer.NewSubscriber(rabbitMqClient, changeFeed.Exchange())

	sessions := session.MustNewManager(
		session.WithStoreFactory(func(sess *session.Session, inbox *notify.Inbox) *orderstore.Store {
			return orderstore.NewStore(
				orderstore.WithBackend(orderSvc),
				orderstore.WithCatalog(catalogSvc),
				orderstore.WithNotifier(inbox),
				orderstore.WithSession(sess),
			)
		}),
		session.WithSubscribe(func(ctx context.Context, store *orderstore.Store) (io.Closer, error) {
			sub, err := subscriber.Subscribe(ctx, store)
			if err != nil {
				return nil, err
			}

			return sub, nil
		}),
	)

	printer := ticket.NewPrinter(viper.GetString("ticket.shop_name"))

	transport := httptransport.NewHTTPTransport(sessions, catalogSvc, printer)
	transport.RegisterRoutes()

	return &App{
		sessions:       sessions,
		transport:      transport,
		outboxWorker:   worker,
		rabbitMqClient: rabbitMqClient,
		redisClient:    redisClient,
		postgresClient: postgresClient,
		otelController: otelController,
	}
}

// Run starts the application.
// Tracks interrupt signal to gracefully shut down the application.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting HTTP server")
		if err := a.transport.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		slog.Info("Starting outbox worker")
		a.outboxWorker.Start(gctx)

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := a.transport.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		} else {
			slog.Info("HTTP server stopped gracefully")
		}

		return nil
	})

	err := g.Wait()
	if err != nil {
		slog.Error("Application error", "error", err)
	}

	a.gracefulShutdown()

	return err
}

// gracefulShutdown ends the sessions, then closes RabbitMQ, Redis, PostgreSQL and OpenTelemetry.
func (a *App) gracefulShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.sessions.Shutdown()
	slog.Info("Sessions closed")

	if err := a.rabbitMqClient.Close(); err != nil {
		slog.Error("RabbitMQ connection close error", "error", err)
	} else {
		slog.Info("RabbitMQ connection closed gracefully")
	}

	if err := a.redisClient.Close(); err != nil {
		slog.Error("Redis connection close error", "error", err)
	} else {
		slog.Info("Redis connection closed gracefully")
	}

	a.postgresClient.Close()
	slog.Info("Database connection closed gracefully")

	if err := a.otelController.Shutdown(ctx); err != nil {
		slog.Error("Otel trace provider connection close error", "error", err)
	} else {
		slog.Info("Otel trace provider connection closed gracefully")
	}

	select {
	case <-ctx.Done():
		slog.Warn("Shutdown timeout exceeded")
	default:
		slog.Info("Application shutdown complete")
	}
}
