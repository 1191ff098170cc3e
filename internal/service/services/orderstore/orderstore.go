// Package orderstore keeps the order collection of one staff session in sync
// with the backing store and the change feed.
package orderstore

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/lifecycle"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/changeevent"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/deliveryzone"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/money"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/orderrecord"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/product"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// backend is the persistent order store.
type backend interface {
	ListOrders(ctx context.Context, actorID string) ([]order.Order, error)
	CreateOrder(ctx context.Context, actorID string, o order.Order) (order.Order, error)
	UpdateOrder(ctx context.Context, actorID string, o order.Order) (order.Order, error)
	DeleteOrder(ctx context.Context, actorID, id string) error
}

// catalog resolves the reference data orders copy from.
type catalog interface {
	GetZone(ctx context.Context, id string) (deliveryzone.Zone, error)
	GetProduct(ctx context.Context, id string) (product.Product, error)
}

// notifier surfaces new orders to staff.
type notifier interface {
	NotifyNewOrder(o order.Order)
}

// session yields the actor of the current session, or false once it ended.
type session interface {
	ActorID() (string, bool)
}

// Store owns the order collection of one session.
type Store struct {
	backend  backend
	catalog  catalog
	notifier notifier
	session  session
	now      func() time.Time

	// opMu serializes local mutations so each one sees the result of the previous.
	opMu sync.Mutex

	mu       sync.RWMutex
	orders   []order.Order
	deleted  *tombstones
	degraded error
}

// option is a function that configures the Store.
type option func(*Store)

// NewStore creates an empty Store. FetchAll loads it.
func NewStore(opts ...option) *Store {
	s := &Store{now: time.Now, deleted: newTombstones()}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithBackend sets the persistent order store.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBackend(b backend) option {
	return func(s *Store) {
		s.backend = b
	}
}

// WithCatalog sets the zone and product lookup.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithCatalog(c catalog) option {
	return func(s *Store) {
		s.catalog = c
	}
}

// WithNotifier registers the new-order notification sink.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n notifier) option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithSession sets the session handle.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSession(sess session) option {
	return func(s *Store) {
		s.session = sess
	}
}

// WithClock replaces time.Now.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(s *Store) {
		s.now = now
	}
}

func (s *Store) actor() (string, error) {
	if s.session == nil {
		return "", order.ErrNotAuthenticated
	}
	id, ok := s.session.ActorID()
	if !ok || id == "" {
		return "", order.ErrNotAuthenticated
	}

	return id, nil
}

// FetchAll replaces the collection with the backing store's content. Changes
// the feed delivered while the listing ran are kept. On failure the collection
// is left empty.
func (s *Store) FetchAll(ctx context.Context) error {
	ctx, span := otel.Tracer("orderstore").Start(ctx, "Store.FetchAll")
	defer span.End()

	actor, err := s.actor()
	if err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	started := s.now()
	orders, err := s.backend.ListOrders(ctx, actor)
	if err != nil {
		s.mu.Lock()
		s.orders = nil
		s.mu.Unlock()

		return &order.PersistenceError{Op: "fetch orders", Err: err}
	}

	s.mu.Lock()
	s.orders = mergeFetched(s.orders, orders, started, s.deleted)
	s.mu.Unlock()

	slog.Info("Orders fetched", "actor_id", actor, "count", len(orders))

	return nil
}

// Create validates the draft, derives its totals, persists it and adds it to
// the collection. External orders raise a new-order notification.
func (s *Store) Create(ctx context.Context, draft order.Draft, external bool) (order.Order, error) {
	ctx, span := otel.Tracer("orderstore").Start(ctx, "Store.Create")
	defer span.End()

	actor, err := s.actor()
	if err != nil {
		return order.Order{}, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	items, err := s.resolveItems(ctx, draft.Items)
	if err != nil {
		return order.Order{}, err
	}
	deliveryCost, err := s.resolveDeliveryCost(ctx, draft.DeliveryZoneID, draft.DeliveryCost)
	if err != nil {
		return order.Order{}, err
	}
	method := draft.PaymentMethod
	if method == "" {
		method = order.PaymentCash
	}

	o := order.Order{
		ActorID:         actor,
		CustomerName:    strings.TrimSpace(draft.CustomerName),
		CustomerPhone:   draft.CustomerPhone,
		DeliveryAddress: draft.DeliveryAddress,
		DeliveryZoneID:  draft.DeliveryZoneID,
		DeliveryCost:    deliveryCost,
		Items:           items,
		PaymentMethod:   method,
		Status:          order.StatusNew,
		Notes:           draft.Notes,
	}
	if err := validate(o); err != nil {
		return order.Order{}, err
	}
	o = recompute(o, true)
	o.CreatedAt = s.now()
	o.UpdatedAt = o.CreatedAt

	created, err := s.backend.CreateOrder(ctx, actor, o)
	if err != nil {
		return order.Order{}, &order.PersistenceError{Op: "create order", Err: err}
	}

	s.mu.Lock()
	s.orders = upsert(s.orders, created)
	s.mu.Unlock()

	if external && s.notifier != nil {
		s.notifier.NotifyNewOrder(created)
	}

	return created.Clone(), nil
}

// Update merges the present patch fields over the current order, recomputes
// its totals and persists it. Absent fields keep their value.
func (s *Store) Update(ctx context.Context, id string, patch order.Patch) (order.Order, error) {
	ctx, span := otel.Tracer("orderstore").Start(ctx, "Store.Update")
	defer span.End()

	actor, err := s.actor()
	if err != nil {
		return order.Order{}, err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	current, err := s.Get(id)
	if err != nil {
		return order.Order{}, err
	}
	if err := lifecycle.CheckEdit(current, patch); err != nil {
		return order.Order{}, err
	}
	if patch.Items.Set {
		items, err := s.resolveItems(ctx, patch.Items.Value)
		if err != nil {
			return order.Order{}, err
		}
		patch.Items = order.Set(items)
	}
	if patch.DeliveryZoneID.Set && !patch.DeliveryCost.Set {
		cost, err := s.resolveDeliveryCost(ctx, patch.DeliveryZoneID.Value, decimal.NullDecimal{})
		if err != nil {
			return order.Order{}, err
		}
		patch.DeliveryCost = order.Set(cost)
	}

	return s.persist(ctx, actor, current, patch)
}

// persist applies patch to current and writes the result. Callers hold opMu.
func (s *Store) persist(ctx context.Context, actor string, current order.Order, patch order.Patch) (order.Order, error) {
	next := patch.Apply(current)
	if err := validate(next); err != nil {
		return order.Order{}, err
	}
	// After reconciliation the real total is the staff-confirmed amount.
	next = recompute(next, !patch.RealTotal.Set && !current.Status.IsShippedOrLater())
	next.UpdatedAt = s.now()

	updated, err := s.backend.UpdateOrder(ctx, actor, next)
	if err != nil {
		return order.Order{}, &order.PersistenceError{Op: "update order", Err: err}
	}

	s.mu.Lock()
	s.orders = upsert(s.orders, updated)
	s.mu.Unlock()

	return updated.Clone(), nil
}

// Delete removes the order from the backing store and the collection.
// Callers check that the order is terminal; Remove does both.
func (s *Store) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("orderstore").Start(ctx, "Store.Delete")
	defer span.End()

	actor, err := s.actor()
	if err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.delete(ctx, actor, id)
}

func (s *Store) delete(ctx context.Context, actor, id string) error {
	if err := s.backend.DeleteOrder(ctx, actor, id); err != nil {
		return &order.PersistenceError{Op: "delete order", Err: err}
	}

	s.mu.Lock()
	s.orders = remove(s.orders, id)
	s.deleted.add(id)
	s.mu.Unlock()

	return nil
}

// ApplyRemote reconciles one change feed event into the collection.
// Events older than the held copy and events for deleted orders are dropped,
// so a late redelivery never reverts newer state. A foreign insert of an
// unknown order raises a new-order notification.
func (s *Store) ApplyRemote(ctx context.Context, ev changeevent.Event) error {
	_, span := otel.Tracer("orderstore").Start(ctx, "Store.ApplyRemote")
	defer span.End()

	actor, err := s.actor()
	if err != nil {
		return err
	}
	if err := ev.Validate(); err != nil {
		return err
	}

	switch ev.Type {
	case changeevent.TypeDelete:
		s.mu.Lock()
		s.orders = remove(s.orders, ev.OrderID())
		s.deleted.add(ev.OrderID())
		s.mu.Unlock()

		return nil
	case changeevent.TypeInsert, changeevent.TypeUpdate:
		o, err := orderrecord.ToDomain(*ev.Record)
		if err != nil {
			return err
		}
		if ev.ActorID != "" && o.ActorID == "" {
			o.ActorID = ev.ActorID
		}

		s.mu.Lock()
		i, known := indexOf(s.orders, o.ID)
		if s.deleted.has(o.ID) || (known && isStale(s.orders[i], o)) {
			s.mu.Unlock()
			slog.Debug("Stale order change ignored", "order_id", o.ID, "type", ev.Type)

			return nil
		}
		s.orders = upsert(s.orders, o)
		s.mu.Unlock()

		if ev.Type == changeevent.TypeInsert && !known && ev.ActorID != actor && s.notifier != nil {
			s.notifier.NotifyNewOrder(o)
		}

		return nil
	}

	return changeevent.ErrInvalidType
}

// Get returns a copy of the order with the given id.
func (s *Store) Get(id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := indexOf(s.orders, id)
	if !ok {
		return order.Order{}, order.ErrOrderNotFound
	}

	return s.orders[i].Clone(), nil
}

// MarkDegraded records a lost change feed. A nil err clears the warning.
func (s *Store) MarkDegraded(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		s.degraded = nil

		return
	}
	s.degraded = &order.SyncDegradedError{Err: err}
}

// SyncStatus returns the standing *order.SyncDegradedError, or nil while live.
func (s *Store) SyncStatus() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.degraded
}

func (s *Store) resolveItems(ctx context.Context, items order.Items) (order.Items, error) {
	out := items.Clone()
	for i, it := range out {
		if it.ProductID == "" || strings.TrimSpace(it.Name) != "" {
			continue
		}
		if s.catalog == nil {
			return nil, order.NewValidationError("itemsList.productId", "catalog unavailable")
		}
		p, err := s.catalog.GetProduct(ctx, it.ProductID)
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, order.NewValidationError("itemsList.productId", "unknown product "+it.ProductID)
		}
		if err != nil {
			return nil, &order.PersistenceError{Op: "get product", Err: err}
		}
		if !p.Available {
			return nil, order.NewValidationError("itemsList.productId", "product "+p.Name+" is not available")
		}
		out[i].Name = p.Name
		out[i].UnitPrice = p.Price
	}

	return out, nil
}

func (s *Store) resolveDeliveryCost(ctx context.Context, zoneID string, explicit decimal.NullDecimal) (decimal.Decimal, error) {
	if explicit.Valid {
		return explicit.Decimal, nil
	}
	if zoneID == "" {
		return decimal.Zero, nil
	}
	if s.catalog == nil {
		return decimal.Zero, order.NewValidationError("deliveryZoneId", "catalog unavailable")
	}
	z, err := s.catalog.GetZone(ctx, zoneID)
	if errors.Is(err, deliveryzone.ErrZoneNotFound) {
		return decimal.Zero, order.NewValidationError("deliveryZoneId", "unknown zone "+zoneID)
	}
	if err != nil {
		return decimal.Zero, &order.PersistenceError{Op: "get delivery zone", Err: err}
	}

	return z.Cost, nil
}

func validate(o order.Order) error {
	if strings.TrimSpace(o.CustomerName) == "" {
		return order.NewValidationError("customerName", "is required")
	}
	if err := o.Items.Validate(); err != nil {
		return err
	}
	if o.DeliveryCost.IsNegative() {
		return order.NewValidationError("deliveryCost", "must not be negative")
	}
	if _, err := order.ParsePaymentMethod(o.PaymentMethod.String()); err != nil {
		return order.NewValidationError("paymentMethod", err.Error())
	}

	return nil
}

// recompute derives item totals, subtotal and summary, and the real total when asked.
func recompute(o order.Order, realTotal bool) order.Order {
	o.Items = o.Items.Recalculate()
	o.Subtotal = o.Items.Subtotal()
	o.ItemSummary = o.Items.Summary()
	if realTotal {
		o.RealTotal = money.GrandTotal(o.Subtotal, o.DeliveryCost)
	}

	return o
}
