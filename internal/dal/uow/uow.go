package uow

import (
	"context"

	"github.com/corray333/backend-labs/meatshop/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/meatshop/internal/dal/postgres"
	orderrepo "github.com/corray333/backend-labs/meatshop/internal/dal/repositories/order/postgres"
	"github.com/jackc/pgx/v5"
)

type unitOfWork struct {
	client    *postgres.Client
	tx        pgx.Tx
	orderRepo iorderrepo.IOrderRepository
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

// NewUnitOfWork returns a repository bound to the pool until Begin is called.
func NewUnitOfWork(client *postgres.Client) *unitOfWork {
	return &unitOfWork{
		client:    client,
		orderRepo: orderrepo.NewPostgresOrderRepository(client.Pool()),
	}
}

// Begin starts a transaction and rebinds the repository to it.
func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback after Commit returns pgx.ErrTxClosed and changes nothing.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
