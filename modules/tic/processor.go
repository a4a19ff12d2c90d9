package tic

import (
	"context"

	"github.com/Ethereum-Phunks/tic-protocol/common"
	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/core/datasources"
	"github.com/Ethereum-Phunks/tic-protocol/core/indexer"
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/datagateway"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/tic"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/logger"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/reportingclient"
	"github.com/cockroachdb/errors"
)

var _ indexer.Processor[*types.Block] = (*Processor)(nil)

type Processor struct {
	ticDg           datagateway.TicDataGateway
	indexerInfoDg   datagateway.IndexerInfoDataGateway
	datasource      datasources.Datasource[*types.Block]
	network         common.Network
	reportingClient *reportingclient.ReportingClient
	cleanupFuncs    []func(context.Context) error

	startBlockHeight int64
	maxTopicParts    int
}

func NewProcessor(ticDg datagateway.TicDataGateway, indexerInfoDg datagateway.IndexerInfoDataGateway, datasource datasources.Datasource[*types.Block], network common.Network, reportingClient *reportingclient.ReportingClient, cleanupFuncs []func(context.Context) error, startBlockHeight int64, maxTopicParts int) *Processor {
	if maxTopicParts <= 0 {
		maxTopicParts = tic.DefaultMaxTopicParts
	}
	return &Processor{
		ticDg:            ticDg,
		indexerInfoDg:    indexerInfoDg,
		datasource:       datasource,
		network:          network,
		reportingClient:  reportingClient,
		cleanupFuncs:     cleanupFuncs,
		startBlockHeight: startBlockHeight,
		maxTopicParts:    maxTopicParts,
	}
}

func (p *Processor) Name() string {
	return "TIC"
}

func (p *Processor) VerifyStates(ctx context.Context) error {
	indexerState, err := p.indexerInfoDg.GetLatestIndexerState(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get latest indexer state")
	}
	// if not found, set indexer state
	if errors.Is(err, errs.NotFound) {
		if err := p.indexerInfoDg.SetIndexerState(ctx, entity.IndexerState{
			DBVersion:        DBVersion,
			EventHashVersion: EventHashVersion,
			Network:          p.network.String(),
		}); err != nil {
			return errors.Wrap(err, "failed to set indexer state")
		}
		return nil
	}
	if indexerState.DBVersion != DBVersion {
		return errors.Wrapf(errs.ConflictSetting, "db version mismatch: current version is %d. Please migrate to version %d", indexerState.DBVersion, DBVersion)
	}
	if indexerState.EventHashVersion != EventHashVersion {
		return errors.Wrapf(errs.ConflictSetting, "event hash version mismatch: current version is %d, expected %d. Please reset the database and reindex", indexerState.EventHashVersion, EventHashVersion)
	}
	if indexerState.Network != p.network.String() {
		return errors.Wrapf(errs.ConflictSetting, "network mismatch: latest indexed network is %s, configured network is %s. If you want to change the network, please reset the database", indexerState.Network, p.network)
	}
	return nil
}

func (p *Processor) CurrentBlock(ctx context.Context) (types.BlockHeader, error) {
	block, err := p.ticDg.GetLatestIndexedBlock(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return p.startingBlockHeader(ctx)
		}
		return types.BlockHeader{}, errors.Wrap(err, "failed to get latest indexed block")
	}
	return types.BlockHeader{
		Height:     block.Height,
		Hash:       block.Hash,
		ParentHash: block.ParentHash,
		Timestamp:  block.Timestamp,
	}, nil
}

// startingBlockHeader resolves the header just below the first block to
// index, so that the first fetched batch passes the parent hash check.
func (p *Processor) startingBlockHeader(ctx context.Context) (types.BlockHeader, error) {
	startHeight := p.startBlockHeight
	if startHeight <= 0 {
		startHeight = activationBlockHeight[p.network]
	}
	if startHeight <= 0 {
		return types.BlockHeader{Height: -1}, nil
	}
	header, err := p.datasource.GetBlockHeader(ctx, startHeight-1)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "failed to get starting block header")
	}
	return header, nil
}

func (p *Processor) GetIndexedBlock(ctx context.Context, height int64) (types.BlockHeader, error) {
	block, err := p.ticDg.GetIndexedBlockByHeight(ctx, height)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "failed to get indexed block")
	}
	return types.BlockHeader{
		Height:     block.Height,
		Hash:       block.Hash,
		ParentHash: block.ParentHash,
		Timestamp:  block.Timestamp,
	}, nil
}

func (p *Processor) RevertData(ctx context.Context, from int64) error {
	err := p.ticDg.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := p.ticDg.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to rollback transaction", err)
		}
	}()

	sinceHeight := from + 1

	// markers first: unmarking touches surviving comment records
	if err := p.ticDg.DeleteDeletionMarkersSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete deletion markers")
	}
	if err := p.ticDg.DeleteCommentRecordsSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete comment records")
	}
	if err := p.ticDg.DeleteIndexedBlocksSinceHeight(ctx, sinceHeight); err != nil {
		return errors.Wrap(err, "failed to delete indexed blocks")
	}

	if err := p.ticDg.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (p *Processor) Shutdown(ctx context.Context) error {
	for _, cleanup := range p.cleanupFuncs {
		if err := cleanup(ctx); err != nil {
			return errors.Wrap(err, "error during cleanup")
		}
	}
	return nil
}
