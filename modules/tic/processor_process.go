package tic

import (
	"context"
	"log/slog"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/tic"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/logger"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/logger/slogx"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/reportingclient"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

func (p *Processor) Process(ctx context.Context, blocks []*types.Block) error {
	// resolve the cumulative event hash chain tip before opening the write
	// transaction; block batches are contiguous, so it only moves forward
	// within the loop
	prevCumulativeEventHash, err := p.latestCumulativeEventHash(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get latest cumulative event hash")
	}

	if err := p.ticDg.Begin(ctx); err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err := p.ticDg.Rollback(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to rollback transaction", err)
		}
	}()

	indexedBlocks := make([]*entity.IndexedBlock, 0, len(blocks))
	for _, block := range blocks {
		records := make([]*entity.CommentRecord, 0, len(block.Inscriptions))
		for _, inscription := range block.Inscriptions {
			record, ok := p.processInscription(ctx, inscription)
			if !ok {
				continue
			}
			records = append(records, record)
		}

		markers := make([]*entity.DeletionMarker, 0)
		for _, transfer := range block.Transfers {
			if transfer.To != (common.Address{}) {
				continue
			}
			markers = append(markers, &entity.DeletionMarker{
				EthscriptionId: transfer.EthscriptionId,
				Sequence:       transfer.Sequence(),
			})
		}

		eventHash := p.calculateEventHash(block.Header, records, markers)
		cumulativeEventHash := chainEventHashes(prevCumulativeEventHash, eventHash)
		prevCumulativeEventHash = cumulativeEventHash

		if err := p.ticDg.CreateCommentRecords(ctx, records); err != nil {
			return errors.Wrap(err, "failed to create comment records")
		}
		if err := p.ticDg.CreateDeletionMarkers(ctx, markers); err != nil {
			return errors.Wrap(err, "failed to create deletion markers")
		}

		indexedBlock := &entity.IndexedBlock{
			Height:              block.Header.Height,
			Hash:                block.Header.Hash,
			ParentHash:          block.Header.ParentHash,
			Timestamp:           block.Header.Timestamp,
			EventHash:           eventHash,
			CumulativeEventHash: cumulativeEventHash,
		}
		if err := p.ticDg.CreateIndexedBlock(ctx, indexedBlock); err != nil {
			return errors.Wrap(err, "failed to create indexed block")
		}
		indexedBlocks = append(indexedBlocks, indexedBlock)

		logger.DebugContext(ctx, "processed block",
			slog.Int64("height", block.Header.Height),
			slog.Int("comments", len(records)),
			slog.Int("deletions", len(markers)),
		)
	}

	if err := p.ticDg.Commit(ctx); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}

	if p.reportingClient != nil && len(indexedBlocks) > 0 {
		p.submitBlockReport(ctx, indexedBlocks[len(indexedBlocks)-1])
	}
	return nil
}

// processInscription turns one inscription into a comment record. Foreign
// media types are not TIC traffic and produce no record at all. TIC media
// types that fail the mandatory rule, JSON parsing or schema validation are
// recorded invalid so operators can audit them.
func (p *Processor) processInscription(ctx context.Context, inscription *types.InscriptionEvent) (*entity.CommentRecord, bool) {
	object, err := tic.ParsePayload(inscription.ContentType, inscription.Payload)
	if err != nil {
		if errors.Is(err, tic.ErrNotTicPayload) {
			return nil, false
		}
		return p.invalidRecord(inscription, err), true
	}

	candidate, err := tic.ValidateCandidate(object, p.maxTopicParts)
	if err != nil {
		logger.DebugContext(ctx, "rejected tic candidate",
			slog.String("id", inscription.Id.Hex()),
			slogx.Error(err),
		)
		return p.invalidRecord(inscription, err), true
	}

	return &entity.CommentRecord{
		Id:             inscription.Id,
		TopicParts:     tic.NormalizeTopic(candidate.Topic),
		Content:        candidate.Content,
		Encoding:       candidate.Encoding,
		Version:        candidate.Version,
		UnknownVersion: candidate.UnknownVersion,
		Type:           candidate.Type,
		Author:         inscription.Creator,
		Sequence:       inscription.Sequence(),
		Valid:          true,
	}, true
}

func (p *Processor) invalidRecord(inscription *types.InscriptionEvent, reason error) *entity.CommentRecord {
	return &entity.CommentRecord{
		Id:            inscription.Id,
		Author:        inscription.Creator,
		Sequence:      inscription.Sequence(),
		Valid:         false,
		InvalidReason: reason.Error(),
	}
}

func (p *Processor) latestCumulativeEventHash(ctx context.Context) (common.Hash, error) {
	block, err := p.ticDg.GetLatestIndexedBlock(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return common.Hash{}, nil
		}
		return common.Hash{}, errors.WithStack(err)
	}
	return block.CumulativeEventHash, nil
}

func (p *Processor) submitBlockReport(ctx context.Context, block *entity.IndexedBlock) {
	err := p.reportingClient.SubmitBlockReport(ctx, reportingclient.SubmitBlockReportPayload{
		Type:                "tic",
		ClientVersion:       Version,
		DBVersion:           DBVersion,
		EventHashVersion:    EventHashVersion,
		Network:             p.network,
		BlockHeight:         block.Height,
		BlockHash:           block.Hash,
		EventHash:           block.EventHash,
		CumulativeEventHash: block.CumulativeEventHash,
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to submit block report", slogx.Error(err))
	}
}
