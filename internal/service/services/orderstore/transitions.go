package orderstore

import (
	"context"

	"github.com/corray333/backend-labs/meatshop/internal/service/lifecycle"
	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// transition loads the order, builds the lifecycle payload and persists it.
func (s *Store) transition(
	ctx context.Context,
	id string,
	ev lifecycle.Event,
	build func(order.Order) (order.Patch, error),
) (order.Order, error) {
	ctx, span := otel.Tracer("orderstore").Start(ctx, "Store.Transition")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", id), attribute.String("order.event", string(ev)))

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
	patch, err := build(current)
	if err != nil {
		return order.Order{}, err
	}

	return s.persist(ctx, actor, current, patch)
}

// Accept starts preparing a new order.
func (s *Store) Accept(ctx context.Context, id string) (order.Order, error) {
	return s.transition(ctx, id, lifecycle.EventAccept, func(o order.Order) (order.Patch, error) {
		return lifecycle.Accept(o, s.now())
	})
}

// Cancel cancels a new order.
func (s *Store) Cancel(ctx context.Context, id string) (order.Order, error) {
	return s.transition(ctx, id, lifecycle.EventCancel, lifecycle.Cancel)
}

// Send reconciles payment and ships the order. The returned result carries
// the change and the settlement preview shown to staff.
func (s *Store) Send(ctx context.Context, id string, rec lifecycle.Reconciliation) (order.Order, lifecycle.SendResult, error) {
	var res lifecycle.SendResult
	o, err := s.transition(ctx, id, lifecycle.EventSend, func(o order.Order) (order.Patch, error) {
		var err error
		res, err = lifecycle.Send(o, rec, s.now())

		return res.Patch, err
	})
	if err != nil {
		return order.Order{}, lifecycle.SendResult{}, err
	}

	return o, res, nil
}

// Deliver marks a shipped order as delivered.
func (s *Store) Deliver(ctx context.Context, id string) (order.Order, error) {
	return s.transition(ctx, id, lifecycle.EventDeliver, lifecycle.Deliver)
}

// MarkPaid closes the order and persists the driver settlement.
func (s *Store) MarkPaid(ctx context.Context, id string) (order.Order, error) {
	return s.transition(ctx, id, lifecycle.EventMarkPaid, lifecycle.MarkPaid)
}

// Remove deletes a terminal order.
func (s *Store) Remove(ctx context.Context, id string) error {
	actor, err := s.actor()
	if err != nil {
		return err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	current, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := lifecycle.CheckDelete(current); err != nil {
		return err
	}

	return s.delete(ctx, actor, id)
}
