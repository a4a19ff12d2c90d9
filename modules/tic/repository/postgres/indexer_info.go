package postgres

import (
	"context"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
)

const selectLatestIndexerState = `
SELECT id, db_version, event_hash_version, network, created_at
FROM tic_indexer_states ORDER BY created_at DESC, id DESC LIMIT 1`

func (r *Repository) GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error) {
	rows, err := r.querier().Query(ctx, selectLatestIndexerState)
	if err != nil {
		return entity.IndexerState{}, errors.Wrap(err, "error during query indexer state")
	}
	model, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[indexerStateModel])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.IndexerState{}, errors.WithStack(errs.NotFound)
		}
		return entity.IndexerState{}, errors.Wrap(err, "error during collect indexer state")
	}
	return mapIndexerStateModelToType(model), nil
}

const insertIndexerState = `
INSERT INTO tic_indexer_states (db_version, event_hash_version, network)
VALUES ($1, $2, $3)`

func (r *Repository) SetIndexerState(ctx context.Context, state entity.IndexerState) error {
	_, err := r.querier().Exec(ctx, insertIndexerState, state.DBVersion, state.EventHashVersion, state.Network)
	if err != nil {
		return errors.Wrap(err, "error during insert indexer state")
	}
	return nil
}
