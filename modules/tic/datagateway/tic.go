package datagateway

import (
	"context"

	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/ethereum/go-ethereum/common"
)

type TicDataGateway interface {
	Tx
	TicReaderDataGateway
	TicWriterDataGateway
}

// Tx is the transaction contract of the comment store: one block batch is
// applied atomically, so readers never observe a partially-applied event.
type Tx interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type TicReaderDataGateway interface {
	// GetLatestIndexedBlock returns the highest indexed block. Returns
	// errs.NotFound if nothing is indexed yet.
	GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error)
	// GetIndexedBlockByHeight returns errs.NotFound if the block is not retained.
	GetIndexedBlockByHeight(ctx context.Context, height int64) (*entity.IndexedBlock, error)

	// GetCommentRecord returns the record for the given ethscription id,
	// valid or not. Returns errs.NotFound if the id is unknown.
	GetCommentRecord(ctx context.Context, id common.Hash) (*entity.CommentRecord, error)
	// GetCommentRecordsByIds returns the known records among the given ids.
	GetCommentRecordsByIds(ctx context.Context, ids []common.Hash) (map[common.Hash]*entity.CommentRecord, error)

	// GetCommentRecordsByTopic returns valid records whose topic key equals
	// topicKey, ordered by sequence ascending. Use limit = -1 as no limit.
	GetCommentRecordsByTopic(ctx context.Context, topicKey string, limit, offset int32) ([]*entity.CommentRecord, error)
	// GetCommentRecordsByAuthor returns valid records by the given creator
	// address, ordered by sequence ascending. Use limit = -1 as no limit.
	GetCommentRecordsByAuthor(ctx context.Context, author common.Address, limit, offset int32) ([]*entity.CommentRecord, error)

	// CountCommentRecords returns the number of valid records.
	CountCommentRecords(ctx context.Context) (uint64, error)
}

type TicWriterDataGateway interface {
	// CreateCommentRecords inserts records. Ids already present are skipped
	// so that event replay is idempotent.
	CreateCommentRecords(ctx context.Context, records []*entity.CommentRecord) error
	// CreateDeletionMarkers inserts markers, keeping only the earliest per
	// id. Markers referencing unknown ids are retained and apply when the
	// record appears.
	CreateDeletionMarkers(ctx context.Context, markers []*entity.DeletionMarker) error
	CreateIndexedBlock(ctx context.Context, block *entity.IndexedBlock) error

	DeleteCommentRecordsSinceHeight(ctx context.Context, height int64) error
	// DeleteDeletionMarkersSinceHeight removes markers at or above height
	// and unmarks the records they had deleted.
	DeleteDeletionMarkersSinceHeight(ctx context.Context, height int64) error
	DeleteIndexedBlocksSinceHeight(ctx context.Context, height int64) error
}
