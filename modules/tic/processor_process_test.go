package tic

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Ethereum-Phunks/tic-protocol/common"
	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	ticmemory "github.com/Ethereum-Phunks/tic-protocol/modules/tic/repository/memory"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testAuthor = ethcommon.HexToAddress("0x4b3e9e3c71c154b46b8b79177dd6e2641b1f4e39")
	testTopic  = "0xc55bd9abbc614e657393b46f90210a44b046b8e1"
)

func newTestProcessor(network common.Network) (*Processor, *ticmemory.Repository) {
	repo := ticmemory.NewRepository()
	processor := NewProcessor(repo, repo, nil, network, nil, nil, 0, 0)
	return processor, repo
}

func ticInscription(id byte, topic, content string, height int64, txIndex uint32) *types.InscriptionEvent {
	return &types.InscriptionEvent{
		Id:          ethcommon.BytesToHash([]byte{id}),
		Creator:     testAuthor,
		ContentType: "message/vnd.tic+json;rule=esip6",
		Payload:     fmt.Sprintf(`{"topic":%q,"content":%q,"version":"0x0"}`, topic, content),
		BlockHeight: height,
		TxIndex:     txIndex,
	}
}

func burnTransfer(id byte, height int64, txIndex uint32) *types.TransferEvent {
	return &types.TransferEvent{
		EthscriptionId: ethcommon.BytesToHash([]byte{id}),
		From:           testAuthor,
		To:             ethcommon.Address{},
		BlockHeight:    height,
		TxIndex:        txIndex,
	}
}

func testBlock(height int64, inscriptions []*types.InscriptionEvent, transfers []*types.TransferEvent) *types.Block {
	return &types.Block{
		Header: types.BlockHeader{
			Height:     height,
			Hash:       ethcommon.BytesToHash([]byte{0xb, byte(height)}),
			ParentHash: ethcommon.BytesToHash([]byte{0xb, byte(height - 1)}),
			Timestamp:  time.Unix(height*12, 0),
		},
		Inscriptions: inscriptions,
		Transfers:    transfers,
	}
}

func TestProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes comments, replies and deletions", func(t *testing.T) {
		processor, repo := newTestProcessor(common.NetworkMainnet)
		rootId := ethcommon.BytesToHash([]byte{1})

		blocks := []*types.Block{
			testBlock(100, []*types.InscriptionEvent{
				ticInscription(1, testTopic, "root comment", 100, 0),
			}, nil),
			testBlock(101, []*types.InscriptionEvent{
				ticInscription(2, rootId.Hex(), "a reply", 101, 3),
				ticInscription(3, rootId.Hex(), "another reply", 101, 7),
			}, nil),
			testBlock(102, nil, []*types.TransferEvent{
				burnTransfer(2, 102, 1),
			}),
		}
		require.NoError(t, processor.Process(ctx, blocks))

		byTopic, err := repo.GetCommentRecordsByTopic(ctx, testTopic, -1, 0)
		require.NoError(t, err)
		require.Len(t, byTopic, 1)
		assert.Equal(t, "root comment", byTopic[0].Content)
		assert.Equal(t, testAuthor, byTopic[0].Author)

		replies, err := repo.GetCommentRecordsByTopic(ctx, rootId.Hex(), -1, 0)
		require.NoError(t, err)
		require.Len(t, replies, 2)
		assert.Equal(t, "a reply", replies[0].Content)
		assert.True(t, replies[0].Deleted)
		assert.Equal(t, "another reply", replies[1].Content)
		assert.False(t, replies[1].Deleted)

		latest, err := repo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(102), latest.Height)
		assert.NotEqual(t, ethcommon.Hash{}, latest.EventHash)
		assert.NotEqual(t, ethcommon.Hash{}, latest.CumulativeEventHash)
	})

	t.Run("foreign media types leave no record", func(t *testing.T) {
		processor, repo := newTestProcessor(common.NetworkMainnet)
		blocks := []*types.Block{
			testBlock(100, []*types.InscriptionEvent{
				{
					Id:          ethcommon.BytesToHash([]byte{1}),
					Creator:     testAuthor,
					ContentType: "image/png;base64",
					Payload:     "iVBORw0KGgo=",
					BlockHeight: 100,
					TxIndex:     0,
				},
			}, nil),
		}
		require.NoError(t, processor.Process(ctx, blocks))

		_, err := repo.GetCommentRecord(ctx, ethcommon.BytesToHash([]byte{1}))
		assert.ErrorIs(t, err, errs.NotFound)
	})

	t.Run("invalid tic payloads are recorded for audit", func(t *testing.T) {
		processor, repo := newTestProcessor(common.NetworkMainnet)
		blocks := []*types.Block{
			testBlock(100, []*types.InscriptionEvent{
				{
					Id:          ethcommon.BytesToHash([]byte{1}),
					Creator:     testAuthor,
					ContentType: "message/vnd.tic+json;rule=esip6",
					Payload:     `{"topic":"not hex","version":"0x0"}`,
					BlockHeight: 100,
					TxIndex:     0,
				},
			}, nil),
		}
		require.NoError(t, processor.Process(ctx, blocks))

		stored, err := repo.GetCommentRecord(ctx, ethcommon.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.False(t, stored.Valid)
		assert.NotEmpty(t, stored.InvalidReason)

		count, err := repo.CountCommentRecords(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("ordinary transfers are not deletions", func(t *testing.T) {
		processor, repo := newTestProcessor(common.NetworkMainnet)
		blocks := []*types.Block{
			testBlock(100, []*types.InscriptionEvent{
				ticInscription(1, testTopic, "gm", 100, 0),
			}, []*types.TransferEvent{
				{
					EthscriptionId: ethcommon.BytesToHash([]byte{1}),
					From:           testAuthor,
					To:             ethcommon.HexToAddress("0x000000000000000000000000000000000000dead"),
					BlockHeight:    100,
					TxIndex:        5,
				},
			}),
		}
		require.NoError(t, processor.Process(ctx, blocks))

		stored, err := repo.GetCommentRecord(ctx, ethcommon.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.False(t, stored.Deleted)
	})
}

func TestEventHashes(t *testing.T) {
	ctx := context.Background()
	blocks := func(content string) []*types.Block {
		return []*types.Block{
			testBlock(100, []*types.InscriptionEvent{
				ticInscription(1, testTopic, content, 100, 0),
			}, nil),
			testBlock(101, nil, []*types.TransferEvent{
				burnTransfer(1, 101, 0),
			}),
		}
	}

	t.Run("replay produces identical hashes", func(t *testing.T) {
		first, firstRepo := newTestProcessor(common.NetworkMainnet)
		second, secondRepo := newTestProcessor(common.NetworkMainnet)
		require.NoError(t, first.Process(ctx, blocks("gm")))
		require.NoError(t, second.Process(ctx, blocks("gm")))

		firstLatest, err := firstRepo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		secondLatest, err := secondRepo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, firstLatest.EventHash, secondLatest.EventHash)
		assert.Equal(t, firstLatest.CumulativeEventHash, secondLatest.CumulativeEventHash)
	})

	t.Run("different events produce different hashes", func(t *testing.T) {
		first, firstRepo := newTestProcessor(common.NetworkMainnet)
		second, secondRepo := newTestProcessor(common.NetworkMainnet)
		require.NoError(t, first.Process(ctx, blocks("gm")))
		require.NoError(t, second.Process(ctx, blocks("gn")))

		firstLatest, err := firstRepo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		secondLatest, err := secondRepo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, firstLatest.CumulativeEventHash, secondLatest.CumulativeEventHash)
	})
}

func TestRevertData(t *testing.T) {
	ctx := context.Background()
	processor, repo := newTestProcessor(common.NetworkMainnet)

	batch := []*types.Block{
		testBlock(100, []*types.InscriptionEvent{
			ticInscription(1, testTopic, "survives", 100, 0),
		}, nil),
		testBlock(101, []*types.InscriptionEvent{
			ticInscription(2, testTopic, "reverted", 101, 0),
		}, nil),
		testBlock(102, nil, []*types.TransferEvent{
			burnTransfer(1, 102, 0),
		}),
	}
	require.NoError(t, processor.Process(ctx, batch))

	before, err := repo.GetLatestIndexedBlock(ctx)
	require.NoError(t, err)

	require.NoError(t, processor.RevertData(ctx, 100))

	t.Run("data above the fork point is gone", func(t *testing.T) {
		latest, err := repo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100), latest.Height)

		_, err = repo.GetCommentRecord(ctx, ethcommon.BytesToHash([]byte{2}))
		assert.ErrorIs(t, err, errs.NotFound)

		survivor, err := repo.GetCommentRecord(ctx, ethcommon.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.False(t, survivor.Deleted, "deletion marker above the fork point must be unwound")
	})

	t.Run("replaying the reverted blocks converges", func(t *testing.T) {
		require.NoError(t, processor.Process(ctx, batch[1:]))

		latest, err := repo.GetLatestIndexedBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, before.EventHash, latest.EventHash)
		assert.Equal(t, before.CumulativeEventHash, latest.CumulativeEventHash)

		survivor, err := repo.GetCommentRecord(ctx, ethcommon.BytesToHash([]byte{1}))
		require.NoError(t, err)
		assert.True(t, survivor.Deleted)
	})
}

func TestVerifyStates(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes state on first run", func(t *testing.T) {
		processor, repo := newTestProcessor(common.NetworkMainnet)
		require.NoError(t, processor.VerifyStates(ctx))

		state, err := repo.GetLatestIndexerState(ctx)
		require.NoError(t, err)
		assert.Equal(t, int32(DBVersion), state.DBVersion)
		assert.Equal(t, int32(EventHashVersion), state.EventHashVersion)
		assert.Equal(t, common.NetworkMainnet.String(), state.Network)

		assert.NoError(t, processor.VerifyStates(ctx))
	})

	t.Run("rejects network mismatch", func(t *testing.T) {
		processor, repo := newTestProcessor(common.NetworkMainnet)
		require.NoError(t, processor.VerifyStates(ctx))

		other := NewProcessor(repo, repo, nil, common.NetworkSepolia, nil, nil, 0, 0)
		err := other.VerifyStates(ctx)
		assert.ErrorIs(t, err, errs.ConflictSetting)
	})
}

func TestCurrentBlock(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store without activation height starts from genesis", func(t *testing.T) {
		processor, _ := newTestProcessor(common.Network("devnet"))
		header, err := processor.CurrentBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(-1), header.Height)
	})

	t.Run("returns the latest indexed block", func(t *testing.T) {
		processor, _ := newTestProcessor(common.NetworkMainnet)
		blocks := []*types.Block{
			testBlock(100, []*types.InscriptionEvent{
				ticInscription(1, testTopic, "gm", 100, 0),
			}, nil),
		}
		require.NoError(t, processor.Process(ctx, blocks))

		header, err := processor.CurrentBlock(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(100), header.Height)
		assert.Equal(t, ethcommon.BytesToHash([]byte{0xb, 100}), header.Hash)
	})
}
