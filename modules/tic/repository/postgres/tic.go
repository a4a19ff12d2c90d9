package postgres

import (
	"context"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
)

const insertComment = `
INSERT INTO tic_comments (id, topic_parts, topic_key, content, encoding, version, unknown_version, message_type, author, block_height, tx_index, is_deleted, is_valid, invalid_reason)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
	EXISTS (SELECT 1 FROM tic_deletion_markers WHERE ethscription_id = $1),
	$12, $13)
ON CONFLICT (id) DO NOTHING`

func (r *Repository) CreateCommentRecords(ctx context.Context, records []*entity.CommentRecord) error {
	batch := &pgx.Batch{}
	for _, record := range records {
		model := mapCommentTypeToModel(record)
		batch.Queue(insertComment,
			model.Id, model.TopicParts, model.TopicKey, model.Content, model.Encoding,
			model.Version, model.UnknownVersion, model.MessageType, model.Author,
			model.BlockHeight, model.TxIndex, model.IsValid, model.InvalidReason,
		)
	}
	if err := r.sendBatch(ctx, batch); err != nil {
		return errors.Wrap(err, "error during insert comment records")
	}
	return nil
}

const insertDeletionMarker = `
INSERT INTO tic_deletion_markers (ethscription_id, block_height, tx_index)
VALUES ($1, $2, $3)
ON CONFLICT (ethscription_id) DO NOTHING`

const markCommentDeleted = `
UPDATE tic_comments SET is_deleted = TRUE WHERE id = $1`

func (r *Repository) CreateDeletionMarkers(ctx context.Context, markers []*entity.DeletionMarker) error {
	batch := &pgx.Batch{}
	for _, marker := range markers {
		model := mapDeletionMarkerTypeToModel(marker)
		batch.Queue(insertDeletionMarker, model.EthscriptionId, model.BlockHeight, model.TxIndex)
		batch.Queue(markCommentDeleted, model.EthscriptionId)
	}
	if err := r.sendBatch(ctx, batch); err != nil {
		return errors.Wrap(err, "error during insert deletion markers")
	}
	return nil
}

const insertIndexedBlock = `
INSERT INTO tic_indexed_blocks (height, hash, parent_hash, timestamp, event_hash, cumulative_event_hash)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (height) DO UPDATE SET
	hash = excluded.hash,
	parent_hash = excluded.parent_hash,
	timestamp = excluded.timestamp,
	event_hash = excluded.event_hash,
	cumulative_event_hash = excluded.cumulative_event_hash`

func (r *Repository) CreateIndexedBlock(ctx context.Context, block *entity.IndexedBlock) error {
	model := mapIndexedBlockTypeToModel(block)
	_, err := r.querier().Exec(ctx, insertIndexedBlock,
		model.Height, model.Hash, model.ParentHash, model.Timestamp, model.EventHash, model.CumulativeEventHash,
	)
	if err != nil {
		return errors.Wrap(err, "error during insert indexed block")
	}
	return nil
}

func (r *Repository) DeleteCommentRecordsSinceHeight(ctx context.Context, height int64) error {
	_, err := r.querier().Exec(ctx, `DELETE FROM tic_comments WHERE block_height >= $1`, height)
	if err != nil {
		return errors.Wrap(err, "error during delete comment records")
	}
	return nil
}

const unmarkCommentsForRevertedMarkers = `
UPDATE tic_comments SET is_deleted = FALSE
WHERE id IN (SELECT ethscription_id FROM tic_deletion_markers WHERE block_height >= $1)`

func (r *Repository) DeleteDeletionMarkersSinceHeight(ctx context.Context, height int64) error {
	if _, err := r.querier().Exec(ctx, unmarkCommentsForRevertedMarkers, height); err != nil {
		return errors.Wrap(err, "error during unmark reverted deletions")
	}
	if _, err := r.querier().Exec(ctx, `DELETE FROM tic_deletion_markers WHERE block_height >= $1`, height); err != nil {
		return errors.Wrap(err, "error during delete deletion markers")
	}
	return nil
}

func (r *Repository) DeleteIndexedBlocksSinceHeight(ctx context.Context, height int64) error {
	_, err := r.querier().Exec(ctx, `DELETE FROM tic_indexed_blocks WHERE height >= $1`, height)
	if err != nil {
		return errors.Wrap(err, "error during delete indexed blocks")
	}
	return nil
}

const selectLatestIndexedBlock = `
SELECT height, hash, parent_hash, timestamp, event_hash, cumulative_event_hash
FROM tic_indexed_blocks ORDER BY height DESC LIMIT 1`

func (r *Repository) GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error) {
	rows, err := r.querier().Query(ctx, selectLatestIndexedBlock)
	if err != nil {
		return nil, errors.Wrap(err, "error during query latest indexed block")
	}
	model, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[indexedBlockModel])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during collect latest indexed block")
	}
	return mapIndexedBlockModelToType(model), nil
}

const selectIndexedBlockByHeight = `
SELECT height, hash, parent_hash, timestamp, event_hash, cumulative_event_hash
FROM tic_indexed_blocks WHERE height = $1`

func (r *Repository) GetIndexedBlockByHeight(ctx context.Context, height int64) (*entity.IndexedBlock, error) {
	rows, err := r.querier().Query(ctx, selectIndexedBlockByHeight, height)
	if err != nil {
		return nil, errors.Wrap(err, "error during query indexed block")
	}
	model, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[indexedBlockModel])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during collect indexed block")
	}
	return mapIndexedBlockModelToType(model), nil
}

const commentColumns = `id, topic_parts, topic_key, content, encoding, version, unknown_version, message_type, author, block_height, tx_index, is_deleted, is_valid, invalid_reason`

func (r *Repository) GetCommentRecord(ctx context.Context, id common.Hash) (*entity.CommentRecord, error) {
	rows, err := r.querier().Query(ctx, `SELECT `+commentColumns+` FROM tic_comments WHERE id = $1`, hashToDB(id))
	if err != nil {
		return nil, errors.Wrap(err, "error during query comment record")
	}
	model, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[commentModel])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during collect comment record")
	}
	return mapCommentModelToType(model), nil
}

func (r *Repository) GetCommentRecordsByIds(ctx context.Context, ids []common.Hash) (map[common.Hash]*entity.CommentRecord, error) {
	dbIds := lo.Map(ids, func(id common.Hash, _ int) string { return hashToDB(id) })
	rows, err := r.querier().Query(ctx, `SELECT `+commentColumns+` FROM tic_comments WHERE id = ANY($1)`, dbIds)
	if err != nil {
		return nil, errors.Wrap(err, "error during query comment records by ids")
	}
	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[commentModel])
	if err != nil {
		return nil, errors.Wrap(err, "error during collect comment records by ids")
	}
	result := make(map[common.Hash]*entity.CommentRecord, len(models))
	for _, model := range models {
		record := mapCommentModelToType(model)
		result[record.Id] = record
	}
	return result, nil
}

const selectCommentsByTopic = `
SELECT ` + commentColumns + `
FROM tic_comments
WHERE topic_key = $1 AND is_valid = TRUE
ORDER BY block_height, tx_index
LIMIT NULLIF($2::bigint, -1) OFFSET $3`

func (r *Repository) GetCommentRecordsByTopic(ctx context.Context, topicKey string, limit, offset int32) ([]*entity.CommentRecord, error) {
	rows, err := r.querier().Query(ctx, selectCommentsByTopic, topicKey, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query comment records by topic")
	}
	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[commentModel])
	if err != nil {
		return nil, errors.Wrap(err, "error during collect comment records by topic")
	}
	return lo.Map(models, func(model commentModel, _ int) *entity.CommentRecord {
		return mapCommentModelToType(model)
	}), nil
}

const selectCommentsByAuthor = `
SELECT ` + commentColumns + `
FROM tic_comments
WHERE author = $1 AND is_valid = TRUE
ORDER BY block_height, tx_index
LIMIT NULLIF($2::bigint, -1) OFFSET $3`

func (r *Repository) GetCommentRecordsByAuthor(ctx context.Context, author common.Address, limit, offset int32) ([]*entity.CommentRecord, error) {
	rows, err := r.querier().Query(ctx, selectCommentsByAuthor, addressToDB(author), limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query comment records by author")
	}
	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[commentModel])
	if err != nil {
		return nil, errors.Wrap(err, "error during collect comment records by author")
	}
	return lo.Map(models, func(model commentModel, _ int) *entity.CommentRecord {
		return mapCommentModelToType(model)
	}), nil
}

func (r *Repository) CountCommentRecords(ctx context.Context) (uint64, error) {
	var count int64
	err := r.querier().QueryRow(ctx, `SELECT COUNT(*) FROM tic_comments WHERE is_valid = TRUE`).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "error during count comment records")
	}
	return uint64(count), nil
}

// sendBatch executes all queued statements and surfaces the first error.
func (r *Repository) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	var results pgx.BatchResults
	if r.tx != nil {
		results = r.tx.SendBatch(ctx, batch)
	} else {
		results = r.db.SendBatch(ctx, batch)
	}
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return errors.WithStack(err)
		}
	}
	return results.Close()
}
