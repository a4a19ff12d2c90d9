package indexer

import (
	"context"
	"testing"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/internal/subscription"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInput struct {
	header types.BlockHeader
}

func (s stubInput) BlockHeader() types.BlockHeader { return s.header }

type stubProcessor struct {
	indexed     map[int64]types.BlockHeader
	revertCalls []int64
	processed   int

	// closed on the first Process call so the datasource stub knows the
	// batch was consumed before it unsubscribes
	processedSignal chan struct{}
}

func (p *stubProcessor) Name() string { return "stub" }

func (p *stubProcessor) Process(_ context.Context, inputs []stubInput) error {
	p.processed += len(inputs)
	if p.processedSignal != nil {
		close(p.processedSignal)
		p.processedSignal = nil
	}
	return nil
}

func (p *stubProcessor) CurrentBlock(_ context.Context) (types.BlockHeader, error) {
	return types.BlockHeader{}, errors.WithStack(errs.NotFound)
}

func (p *stubProcessor) GetIndexedBlock(_ context.Context, height int64) (types.BlockHeader, error) {
	header, ok := p.indexed[height]
	if !ok {
		return types.BlockHeader{}, errors.Wrapf(errs.NotFound, "block %d not indexed", height)
	}
	return header, nil
}

func (p *stubProcessor) RevertData(_ context.Context, from int64) error {
	p.revertCalls = append(p.revertCalls, from)
	return nil
}

func (p *stubProcessor) Shutdown(_ context.Context) error { return nil }

type stubDatasource struct {
	batches [][]stubInput
	headers map[int64]types.BlockHeader

	// when set, the subscription is closed only after this channel fires;
	// otherwise the indexer's own cleanup closes it
	unsubscribeAfter <-chan struct{}
}

func (d *stubDatasource) Name() string { return "stub" }

func (d *stubDatasource) Fetch(_ context.Context, _, _ int64) ([]stubInput, error) {
	return nil, nil
}

func (d *stubDatasource) FetchAsync(ctx context.Context, _, _ int64, ch chan<- []stubInput) (*subscription.ClientSubscription[[]stubInput], error) {
	sub := subscription.NewSubscription(ch)
	go func() {
		for _, batch := range d.batches {
			if err := sub.Send(ctx, batch); err != nil {
				return
			}
		}
		if d.unsubscribeAfter != nil {
			<-d.unsubscribeAfter
			sub.Unsubscribe()
		}
	}()
	return sub.Client(), nil
}

func (d *stubDatasource) GetBlockHeader(_ context.Context, height int64) (types.BlockHeader, error) {
	header, ok := d.headers[height]
	if !ok {
		return types.BlockHeader{}, errors.Wrapf(errs.NotFound, "no header for height %d", height)
	}
	return header, nil
}

func header(height int64, tag, parentTag string) types.BlockHeader {
	return types.BlockHeader{
		Hash:       common.BytesToHash([]byte(tag)),
		ParentHash: common.BytesToHash([]byte(parentTag)),
		Height:     height,
	}
}

func TestProcessReorg(t *testing.T) {
	ctx := context.Background()

	t.Run("reverts from the fork point so the first reorged block is dropped", func(t *testing.T) {
		forkPoint := header(98, "c98", "c97")
		processor := &stubProcessor{indexed: map[int64]types.BlockHeader{
			98:  forkPoint,
			99:  header(99, "s99", "c98"),
			100: header(100, "s100", "s99"),
		}}
		datasource := &stubDatasource{
			batches: [][]stubInput{{{header: header(101, "n101", "n100")}}},
			headers: map[int64]types.BlockHeader{
				98: forkPoint,
				99: header(99, "n99", "c98"),
			},
		}

		i := New[stubInput](processor, datasource)
		i.currentBlock = header(100, "s100", "s99")

		require.NoError(t, i.process(ctx))
		require.Equal(t, []int64{98}, processor.revertCalls, "revert must keep the fork point and drop everything above it")
		assert.Equal(t, forkPoint, i.currentBlock)
		assert.Zero(t, processor.processed)
	})

	t.Run("falls back to a full revert when history does not reach the fork point", func(t *testing.T) {
		processor := &stubProcessor{indexed: map[int64]types.BlockHeader{}}
		datasource := &stubDatasource{
			batches: [][]stubInput{{{header: header(101, "n101", "n100")}}},
			headers: map[int64]types.BlockHeader{},
		}

		i := New[stubInput](processor, datasource)
		i.currentBlock = header(100, "s100", "s99")

		require.NoError(t, i.process(ctx))
		require.Equal(t, []int64{-1}, processor.revertCalls)
		assert.Equal(t, int64(-1), i.currentBlock.Height)
	})

	t.Run("continuous batch advances current block", func(t *testing.T) {
		consumed := make(chan struct{})
		processor := &stubProcessor{processedSignal: consumed}
		datasource := &stubDatasource{
			batches: [][]stubInput{{
				{header: header(101, "c101", "c100")},
				{header: header(102, "c102", "c101")},
			}},
			unsubscribeAfter: consumed,
		}

		i := New[stubInput](processor, datasource)
		i.currentBlock = header(100, "c100", "c99")

		require.NoError(t, i.process(ctx))
		assert.Empty(t, processor.revertCalls)
		assert.Equal(t, 2, processor.processed)
		assert.Equal(t, int64(102), i.currentBlock.Height)
	})
}
