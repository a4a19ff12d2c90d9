package memory

import (
	"context"
	"testing"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	author1 = common.HexToAddress("0x4b3e9e3c71c154b46b8b79177dd6e2641b1f4e39")
	author2 = common.HexToAddress("0xc55bd9abbc614e657393b46f90210a44b046b8e1")
)

func record(id byte, topicKey string, author common.Address, height int64, txIndex uint32) *entity.CommentRecord {
	return &entity.CommentRecord{
		Id:         common.BytesToHash([]byte{id}),
		TopicParts: []string{topicKey},
		Content:    "gm",
		Version:    "0x0",
		Author:     author,
		Sequence:   types.Sequence{BlockHeight: height, TxIndex: txIndex},
		Valid:      true,
	}
}

func marker(id byte, height int64, txIndex uint32) *entity.DeletionMarker {
	return &entity.DeletionMarker{
		EthscriptionId: common.BytesToHash([]byte{id}),
		Sequence:       types.Sequence{BlockHeight: height, TxIndex: txIndex},
	}
}

func block(height int64) *entity.IndexedBlock {
	return &entity.IndexedBlock{
		Height: height,
		Hash:   common.BytesToHash([]byte{byte(height)}),
	}
}

func TestCreateCommentRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("replay is idempotent", func(t *testing.T) {
		repo := NewRepository()
		first := record(1, "0xaa", author1, 10, 0)
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{first}))

		replayed := record(1, "0xaa", author1, 10, 0)
		replayed.Content = "different"
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{replayed}))

		stored, err := repo.GetCommentRecord(ctx, first.Id)
		require.NoError(t, err)
		assert.Equal(t, "gm", stored.Content)

		records, err := repo.GetCommentRecordsByTopic(ctx, "0xaa", -1, 0)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("invalid records are excluded from query views", func(t *testing.T) {
		repo := NewRepository()
		invalid := &entity.CommentRecord{
			Id:            common.BytesToHash([]byte{9}),
			Author:        author1,
			Sequence:      types.Sequence{BlockHeight: 10, TxIndex: 0},
			Valid:         false,
			InvalidReason: "schema violation",
		}
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{invalid}))

		stored, err := repo.GetCommentRecord(ctx, invalid.Id)
		require.NoError(t, err)
		assert.False(t, stored.Valid)
		assert.Equal(t, "schema violation", stored.InvalidReason)

		byAuthor, err := repo.GetCommentRecordsByAuthor(ctx, author1, -1, 0)
		require.NoError(t, err)
		assert.Empty(t, byAuthor)

		count, err := repo.CountCommentRecords(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := NewRepository()
		_, err := repo.GetCommentRecord(ctx, common.BytesToHash([]byte{99}))
		assert.ErrorIs(t, err, errs.NotFound)
	})
}

func TestDeletionMarkers(t *testing.T) {
	ctx := context.Background()

	t.Run("marker deletes existing record", func(t *testing.T) {
		repo := NewRepository()
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{record(1, "0xaa", author1, 10, 0)}))
		require.NoError(t, repo.CreateDeletionMarkers(ctx, []*entity.DeletionMarker{marker(1, 12, 0)}))

		stored, err := repo.GetCommentRecord(ctx, common.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.True(t, stored.Deleted)
	})

	t.Run("marker buffered before record arrives", func(t *testing.T) {
		repo := NewRepository()
		require.NoError(t, repo.CreateDeletionMarkers(ctx, []*entity.DeletionMarker{marker(1, 10, 0)}))
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{record(1, "0xaa", author1, 12, 0)}))

		stored, err := repo.GetCommentRecord(ctx, common.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.True(t, stored.Deleted)
	})

	t.Run("only the earliest marker is retained", func(t *testing.T) {
		repo := NewRepository()
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{record(1, "0xaa", author1, 5, 0)}))
		require.NoError(t, repo.CreateDeletionMarkers(ctx, []*entity.DeletionMarker{marker(1, 7, 0)}))
		require.NoError(t, repo.CreateDeletionMarkers(ctx, []*entity.DeletionMarker{marker(1, 9, 0)}))

		// rolling back above the first marker must not resurrect the record
		require.NoError(t, repo.DeleteDeletionMarkersSinceHeight(ctx, 8))
		stored, err := repo.GetCommentRecord(ctx, common.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.True(t, stored.Deleted)
	})

	t.Run("deleting markers unmarks records", func(t *testing.T) {
		repo := NewRepository()
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{record(1, "0xaa", author1, 5, 0)}))
		require.NoError(t, repo.CreateDeletionMarkers(ctx, []*entity.DeletionMarker{marker(1, 7, 0)}))
		require.NoError(t, repo.DeleteDeletionMarkersSinceHeight(ctx, 6))

		stored, err := repo.GetCommentRecord(ctx, common.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.False(t, stored.Deleted)
	})
}

func TestTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("rollback restores previous state", func(t *testing.T) {
		repo := NewRepository()
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{record(1, "0xaa", author1, 5, 0)}))
		require.NoError(t, repo.CreateIndexedBlock(ctx, block(5)))

		require.NoError(t, repo.Begin(ctx))
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{record(2, "0xaa", author2, 6, 0)}))
		require.NoError(t, repo.CreateDeletionMarkers(ctx, []*entity.DeletionMarker{marker(1, 6, 1)}))
		require.NoError(t, repo.CreateIndexedBlock(ctx, block(6)))
		require.NoError(t, repo.Rollback(ctx))

		records, err := repo.GetCommentRecordsByTopic(ctx, "0xaa", -1, 0)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, common.BytesToHash([]byte{1}), records[0].Id)
		assert.False(t, records[0].Deleted)

		latest, err := repo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(5), latest.Height)
	})

	t.Run("rollback restores deleted data", func(t *testing.T) {
		repo := NewRepository()
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{record(1, "0xaa", author1, 5, 0)}))
		require.NoError(t, repo.CreateDeletionMarkers(ctx, []*entity.DeletionMarker{marker(1, 6, 0)}))
		require.NoError(t, repo.CreateIndexedBlock(ctx, block(5)))
		require.NoError(t, repo.CreateIndexedBlock(ctx, block(6)))

		require.NoError(t, repo.Begin(ctx))
		require.NoError(t, repo.DeleteDeletionMarkersSinceHeight(ctx, 6))
		require.NoError(t, repo.DeleteCommentRecordsSinceHeight(ctx, 5))
		require.NoError(t, repo.DeleteIndexedBlocksSinceHeight(ctx, 5))
		require.NoError(t, repo.Rollback(ctx))

		stored, err := repo.GetCommentRecord(ctx, common.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.True(t, stored.Deleted)

		latest, err := repo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6), latest.Height)
	})

	t.Run("rollback after commit is a no-op", func(t *testing.T) {
		repo := NewRepository()
		require.NoError(t, repo.Begin(ctx))
		require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{record(1, "0xaa", author1, 5, 0)}))
		require.NoError(t, repo.Commit(ctx))
		require.NoError(t, repo.Rollback(ctx))

		_, err := repo.GetCommentRecord(ctx, common.BytesToHash([]byte{1}))
		assert.NoError(t, err)
	})

	t.Run("commit without transaction fails", func(t *testing.T) {
		repo := NewRepository()
		assert.Error(t, repo.Commit(ctx))
	})
}

func TestDeleteSinceHeight(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()
	require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{
		record(1, "0xaa", author1, 5, 0),
		record(2, "0xaa", author1, 6, 0),
		record(3, "0xbb", author2, 7, 0),
	}))
	require.NoError(t, repo.CreateIndexedBlock(ctx, block(5)))
	require.NoError(t, repo.CreateIndexedBlock(ctx, block(6)))
	require.NoError(t, repo.CreateIndexedBlock(ctx, block(7)))

	require.NoError(t, repo.DeleteCommentRecordsSinceHeight(ctx, 6))
	require.NoError(t, repo.DeleteIndexedBlocksSinceHeight(ctx, 6))

	records, err := repo.GetCommentRecordsByTopic(ctx, "0xaa", -1, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(5), records[0].Sequence.BlockHeight)

	_, err = repo.GetCommentRecord(ctx, common.BytesToHash([]byte{3}))
	assert.ErrorIs(t, err, errs.NotFound)

	latest, err := repo.GetLatestIndexedBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), latest.Height)
}

func TestQueryOrderingAndPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	// inserted out of order on purpose
	require.NoError(t, repo.CreateCommentRecords(ctx, []*entity.CommentRecord{
		record(3, "0xaa", author1, 7, 2),
		record(1, "0xaa", author1, 5, 0),
		record(4, "0xaa", author2, 7, 9),
		record(2, "0xaa", author1, 5, 3),
	}))

	t.Run("ordered by sequence ascending", func(t *testing.T) {
		records, err := repo.GetCommentRecordsByTopic(ctx, "0xaa", -1, 0)
		require.NoError(t, err)
		require.Len(t, records, 4)
		for i := 1; i < len(records); i++ {
			assert.Negative(t, records[i-1].Sequence.Cmp(records[i].Sequence))
		}
	})

	t.Run("limit and offset", func(t *testing.T) {
		records, err := repo.GetCommentRecordsByTopic(ctx, "0xaa", 2, 1)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, common.BytesToHash([]byte{2}), records[0].Id)
		assert.Equal(t, common.BytesToHash([]byte{3}), records[1].Id)
	})

	t.Run("offset past the end", func(t *testing.T) {
		records, err := repo.GetCommentRecordsByTopic(ctx, "0xaa", -1, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("by author", func(t *testing.T) {
		records, err := repo.GetCommentRecordsByAuthor(ctx, author1, -1, 0)
		require.NoError(t, err)
		assert.Len(t, records, 3)

		records, err = repo.GetCommentRecordsByAuthor(ctx, author2, -1, 0)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("results are copies", func(t *testing.T) {
		records, err := repo.GetCommentRecordsByTopic(ctx, "0xaa", -1, 0)
		require.NoError(t, err)
		records[0].Content = "mutated"
		records[0].TopicParts[0] = "0xmutated"

		fresh, err := repo.GetCommentRecordsByTopic(ctx, "0xaa", -1, 0)
		require.NoError(t, err)
		assert.Equal(t, "gm", fresh[0].Content)
		assert.Equal(t, "0xaa", fresh[0].TopicParts[0])
	})
}

func TestIndexerState(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository()

	_, err := repo.GetLatestIndexerState(ctx)
	assert.ErrorIs(t, err, errs.NotFound)

	require.NoError(t, repo.SetIndexerState(ctx, entity.IndexerState{DBVersion: 1, EventHashVersion: 1, Network: "mainnet"}))
	state, err := repo.GetLatestIndexerState(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), state.DBVersion)
	assert.Equal(t, "mainnet", state.Network)
}
