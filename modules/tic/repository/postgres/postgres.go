package postgres

import (
	"context"

	"github.com/Ethereum-Phunks/tic-protocol/internal/postgres"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/datagateway"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/logger"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

// Make sure to implement the datagateway interfaces
var (
	_ datagateway.TicDataGateway         = (*Repository)(nil)
	_ datagateway.IndexerInfoDataGateway = (*Repository)(nil)
)

type Repository struct {
	db postgres.DB
	tx pgx.Tx
}

func NewRepository(db postgres.DB) *Repository {
	return &Repository{
		db: db,
	}
}

// querier returns the open transaction if one exists, otherwise the pool.
func (r *Repository) querier() postgres.Queryable {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

var ErrTxAlreadyExists = errors.New("Transaction already exists. Call Commit() or Rollback() first.")

func (r *Repository) Begin(ctx context.Context) (err error) {
	if r.tx != nil {
		return errors.WithStack(ErrTxAlreadyExists)
	}
	r.tx, err = r.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	return nil
}

func (r *Repository) Commit(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	err := r.tx.Commit(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	r.tx = nil
	return nil
}

func (r *Repository) Rollback(ctx context.Context) error {
	if r.tx == nil {
		return nil
	}
	err := r.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return errors.Wrap(err, "failed to rollback transaction")
	}
	if err == nil {
		logger.InfoContext(ctx, "rolled back transaction")
	}
	r.tx = nil
	return nil
}
