package iorderrepo

import (
	"context"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/orderrecord"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	List(ctx context.Context) ([]orderrecord.Record, error)
	Get(ctx context.Context, id string) (orderrecord.Record, error)
	Insert(ctx context.Context, rec orderrecord.Record) (orderrecord.Record, error)
	Update(ctx context.Context, rec orderrecord.Record) (orderrecord.Record, error)
	Delete(ctx context.Context, id string) (orderrecord.Record, error)
}
