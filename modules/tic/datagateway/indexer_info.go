package datagateway

import (
	"context"

	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
)

type IndexerInfoDataGateway interface {
	GetLatestIndexerState(ctx context.Context) (entity.IndexerState, error)
	SetIndexerState(ctx context.Context, state entity.IndexerState) error
}
