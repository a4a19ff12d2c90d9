package datasources

import (
	"context"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/internal/subscription"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/dataurl"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/sync/errgroup"
)

// Make sure to implement the Datasource interface
var _ Datasource[*types.Block] = (*EVMNodeDatasource)(nil)

const (
	// fetchBatchSize is the number of blocks sent to the indexer per batch.
	fetchBatchSize = 100

	// fetchConcurrency is the number of concurrent block fetches within a batch.
	fetchConcurrency = 8
)

// EVMNodeDatasource fetches ethscription activity from an Ethereum execution
// client. Creations are transactions whose calldata is a UTF-8 data URL,
// transfers are transactions whose calldata is a 32-byte ethscription id.
type EVMNodeDatasource struct {
	client *ethclient.Client
	signer ethtypes.Signer
}

func NewEVMNode(ctx context.Context, client *ethclient.Client) (*EVMNodeDatasource, error) {
	chainId, err := client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain id")
	}
	return &EVMNodeDatasource{
		client: client,
		signer: ethtypes.LatestSignerForChainID(chainId),
	}, nil
}

func (d *EVMNodeDatasource) Name() string {
	return "ethereum-node"
}

// Fetch fetches blocks from the Ethereum node
//
//   - from: block height to start fetching, if -1, it will start from genesis block
//   - to: block height to stop fetching, if -1, it will fetch until the latest block
func (d *EVMNodeDatasource) Fetch(ctx context.Context, from, to int64) ([]*types.Block, error) {
	ch := make(chan []*types.Block)
	sub, err := d.FetchAsync(ctx, from, to, ch)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer sub.Unsubscribe()

	blocks := make([]*types.Block, 0)
	for {
		select {
		case b := <-ch:
			blocks = append(blocks, b...)
		case <-sub.Done():
			return blocks, nil
		case err := <-sub.Err():
			if err != nil {
				return nil, errors.WithStack(err)
			}
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "context done")
		}
	}
}

// FetchAsync fetches blocks from the Ethereum node asynchronously (non-blocking)
func (d *EVMNodeDatasource) FetchAsync(ctx context.Context, from, to int64, ch chan<- []*types.Block) (*subscription.ClientSubscription[[]*types.Block], error) {
	start, end, skip, err := d.prepareRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare fetch range")
	}

	sub := subscription.NewSubscription(ch)
	if skip {
		if err := sub.UnsubscribeWithContext(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to unsubscribe")
		}
		return sub.Client(), nil
	}

	go func() {
		for height := start; height <= end; {
			batchEnd := height + fetchBatchSize - 1
			if batchEnd > end {
				batchEnd = end
			}

			blocks, err := d.fetchRange(ctx, height, batchEnd)
			if err != nil {
				_ = sub.SendError(ctx, errors.Wrapf(err, "failed to fetch blocks %d-%d", height, batchEnd))
				return
			}
			if err := sub.Send(ctx, blocks); err != nil {
				return
			}

			height = batchEnd + 1
		}
		sub.Unsubscribe()
	}()

	return sub.Client(), nil
}

func (d *EVMNodeDatasource) GetBlockHeader(ctx context.Context, height int64) (types.BlockHeader, error) {
	header, err := d.client.HeaderByNumber(ctx, big.NewInt(height))
	if err != nil {
		return types.BlockHeader{}, errors.Wrapf(err, "failed to get block header, height: %d", height)
	}
	return types.BlockHeader{
		Hash:       header.Hash(),
		ParentHash: header.ParentHash,
		Height:     header.Number.Int64(),
		Timestamp:  time.Unix(int64(header.Time), 0),
	}, nil
}

func (d *EVMNodeDatasource) fetchRange(ctx context.Context, from, to int64) ([]*types.Block, error) {
	blocks := make([]*types.Block, to-from+1)

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(fetchConcurrency)
	for height := from; height <= to; height++ {
		eg.Go(func() error {
			block, err := d.client.BlockByNumber(ectx, big.NewInt(height))
			if err != nil {
				return errors.Wrapf(err, "failed to get block, height: %d", height)
			}
			blocks[height-from] = d.parseBlock(block)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.WithStack(err)
	}

	return blocks, nil
}

func (d *EVMNodeDatasource) parseBlock(src *ethtypes.Block) *types.Block {
	block := &types.Block{
		Header: types.BlockHeader{
			Hash:       src.Hash(),
			ParentHash: src.ParentHash(),
			Height:     src.Number().Int64(),
			Timestamp:  time.Unix(int64(src.Time()), 0),
		},
	}

	for txIndex, tx := range src.Transactions() {
		calldata := tx.Data()
		if len(calldata) == 0 {
			continue
		}

		switch {
		case utf8.Valid(calldata) && strings.HasPrefix(string(calldata), "data:"):
			sender, err := ethtypes.Sender(d.signer, tx)
			if err != nil {
				continue
			}
			decoded, err := dataurl.Parse(string(calldata))
			if err != nil {
				// malformed data URLs never became an ethscription
				continue
			}
			block.Inscriptions = append(block.Inscriptions, &types.InscriptionEvent{
				Id:          tx.Hash(),
				Creator:     sender,
				ContentType: decoded.ContentType,
				Payload:     string(decoded.Data),
				BlockHeight: block.Header.Height,
				TxIndex:     uint32(txIndex),
			})
		case len(calldata) == common.HashLength && tx.To() != nil:
			sender, err := ethtypes.Sender(d.signer, tx)
			if err != nil {
				continue
			}
			block.Transfers = append(block.Transfers, &types.TransferEvent{
				EthscriptionId: common.BytesToHash(calldata),
				From:           sender,
				To:             *tx.To(),
				BlockHeight:    block.Header.Height,
				TxIndex:        uint32(txIndex),
			})
		}
	}

	return block
}

func (d *EVMNodeDatasource) prepareRange(ctx context.Context, fromHeight, toHeight int64) (start, end int64, skip bool, err error) {
	start = fromHeight
	end = toHeight

	// get current chain head height
	latestBlockHeight, err := d.client.BlockNumber(ctx)
	if err != nil {
		return -1, -1, false, errors.Wrap(err, "failed to get latest block number")
	}

	// set start to genesis block height
	if start < 0 {
		start = 0
	}

	// set end to latest block height if
	// - end is -1
	// - end is greater than latest block height
	if end < 0 || end > int64(latestBlockHeight) {
		end = int64(latestBlockHeight)
	}

	// if start is greater than end, skip this round
	if start > end {
		return -1, -1, true, nil
	}

	return start, end, false, nil
}
