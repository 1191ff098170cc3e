// Package ordersvc is the shared order store every staff session reads and writes.
// Each committed change is broadcast on the change feed.
package ordersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/dal/interfaces/ichangefeedrepo"
	"github.com/corray333/backend-labs/meatshop/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/meatshop/internal/dal/interfaces/ioutboxrepo"
	"github.com/corray333/backend-labs/meatshop/internal/dal/postgres"
	"github.com/corray333/backend-labs/meatshop/internal/dal/uow"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/changeevent"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/orderrecord"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/outbox"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// OrderService persists orders and publishes their changes.
type OrderService struct {
	pgClient   *postgres.Client
	changeFeed ichangefeedrepo.IChangeFeedRepository
	outboxRepo ioutboxrepo.IOutboxRepository
	newUOW     func() unitOfWork
	now        func() time.Time
}

type unitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		if s.pgClient == nil {
			panic("ordersvc: postgres client is required")
		}
		s.newUOW = func() unitOfWork {
			return uow.NewUnitOfWork(s.pgClient)
		}
	}

	return s
}

// WithPostgresClient sets the Postgres client for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithPostgresClient(pgClient *postgres.Client) option {
	return func(s *OrderService) {
		s.pgClient = pgClient
	}
}

// WithChangeFeed sets the publisher committed changes are broadcast with.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithChangeFeed(feed ichangefeedrepo.IChangeFeedRepository) option {
	return func(s *OrderService) {
		s.changeFeed = feed
	}
}

// WithOutboxRepository sets where events that failed to publish are kept.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithOutboxRepository(repo ioutboxrepo.IOutboxRepository) option {
	return func(s *OrderService) {
		s.outboxRepo = repo
	}
}

// WithUnitOfWork replaces the Postgres unit of work.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWork(factory func() unitOfWork) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// ListOrders returns every stored order, newest first.
func (s *OrderService) ListOrders(ctx context.Context, actorID string) ([]order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.ListOrders")
	defer span.End()

	if actorID == "" {
		return nil, order.ErrNotAuthenticated
	}

	records, err := s.newUOW().OrderRepository().List(ctx)
	if err != nil {
		return nil, err
	}

	orders := make([]order.Order, 0, len(records))
	for _, rec := range records {
		o, err := orderrecord.ToDomain(rec)
		if err != nil {
			slog.Warn("Skipping unreadable order", "order_id", rec.ID, "error", err)

			continue
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// CreateOrder stores a new order and returns it with its assigned id.
func (s *OrderService) CreateOrder(ctx context.Context, actorID string, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.CreateOrder")
	defer span.End()

	if actorID == "" {
		return order.Order{}, order.ErrNotAuthenticated
	}

	rec, err := s.inTx(ctx, func(repo iorderrepo.IOrderRepository) (orderrecord.Record, error) {
		return repo.Insert(ctx, orderrecord.FromDomain(o))
	})
	if err != nil {
		return order.Order{}, err
	}
	span.SetAttributes(attribute.String("order.id", rec.ID))

	s.broadcast(ctx, changeevent.Event{Type: changeevent.TypeInsert, ActorID: actorID, Record: &rec})

	return orderrecord.ToDomain(rec)
}

// UpdateOrder overwrites the stored order.
func (s *OrderService) UpdateOrder(ctx context.Context, actorID string, o order.Order) (order.Order, error) {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.UpdateOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", o.ID))

	if actorID == "" {
		return order.Order{}, order.ErrNotAuthenticated
	}

	rec, err := s.inTx(ctx, func(repo iorderrepo.IOrderRepository) (orderrecord.Record, error) {
		return repo.Update(ctx, orderrecord.FromDomain(o))
	})
	if err != nil {
		return order.Order{}, err
	}

	s.broadcast(ctx, changeevent.Event{Type: changeevent.TypeUpdate, ActorID: actorID, Record: &rec, OldID: rec.ID})

	return orderrecord.ToDomain(rec)
}

// DeleteOrder removes the stored order.
func (s *OrderService) DeleteOrder(ctx context.Context, actorID, id string) error {
	ctx, span := otel.Tracer("ordersvc").Start(ctx, "OrderService.DeleteOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id))

	if actorID == "" {
		return order.ErrNotAuthenticated
	}

	rec, err := s.inTx(ctx, func(repo iorderrepo.IOrderRepository) (orderrecord.Record, error) {
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.broadcast(ctx, changeevent.Event{Type: changeevent.TypeDelete, ActorID: actorID, OldID: rec.ID})

	return nil
}

func (s *OrderService) inTx(
	ctx context.Context,
	fn func(repo iorderrepo.IOrderRepository) (orderrecord.Record, error),
) (orderrecord.Record, error) {
	work := s.newUOW()
	if err := work.Begin(ctx); err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = work.Rollback(ctx)
	}()

	rec, err := fn(work.OrderRepository())
	if err != nil {
		return orderrecord.Record{}, err
	}

	if err := work.Commit(ctx); err != nil {
		return orderrecord.Record{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return rec, nil
}

// broadcast publishes ev after commit. A failed publish lands in the outbox.
func (s *OrderService) broadcast(ctx context.Context, ev changeevent.Event) {
	if s.changeFeed == nil {
		return
	}
	ev.CommitTS = s.now().UTC()

	payload, err := s.changeFeed.Publish(ctx, ev)
	if err == nil {
		return
	}

	slog.Warn("Failed to publish change event, saving to outbox",
		"order_id", ev.OrderID(),
		"event_type", ev.Type,
		"error", err,
	)
	if payload == nil || s.outboxRepo == nil {
		return
	}

	msg := outbox.NewMessage(ev.OrderID(), s.changeFeed.Exchange(), payload, err, s.now())
	if err := s.outboxRepo.Insert(ctx, msg); err != nil {
		slog.Error("Failed to save change event to outbox", "order_id", ev.OrderID(), "error", err)
	}
}
