package tic

import (
	"context"
	"strings"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/core/datasources"
	"github.com/Ethereum-Phunks/tic-protocol/core/indexer"
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/internal/config"
	"github.com/Ethereum-Phunks/tic-protocol/internal/postgres"
	tichttphandler "github.com/Ethereum-Phunks/tic-protocol/modules/tic/api/httphandler"
	ticdatagateway "github.com/Ethereum-Phunks/tic-protocol/modules/tic/datagateway"
	ticmemory "github.com/Ethereum-Phunks/tic-protocol/modules/tic/repository/memory"
	ticpostgres "github.com/Ethereum-Phunks/tic-protocol/modules/tic/repository/postgres"
	ticusecase "github.com/Ethereum-Phunks/tic-protocol/modules/tic/usecase"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/logger"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/reportingclient"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do/v2"
	"github.com/samber/lo"
)

func New(injector do.Injector) (indexer.IndexerWorker, error) {
	ctx := do.MustInvoke[context.Context](injector)
	conf := do.MustInvoke[config.Config](injector)
	reportingClient := do.MustInvoke[*reportingclient.ReportingClient](injector)

	var (
		ticDg         ticdatagateway.TicDataGateway
		indexerInfoDg ticdatagateway.IndexerInfoDataGateway
	)
	var cleanupFuncs []func(context.Context) error
	switch strings.ToLower(conf.Modules.Tic.Database) {
	case "postgresql", "postgres", "pg":
		pg, err := postgres.NewPool(ctx, conf.Modules.Tic.Postgres)
		if err != nil {
			if errors.Is(err, errs.InvalidArgument) {
				return nil, errors.Wrap(err, "Invalid Postgres configuration for indexer")
			}
			return nil, errors.Wrap(err, "can't create Postgres connection pool")
		}
		cleanupFuncs = append(cleanupFuncs, func(ctx context.Context) error {
			pg.Close()
			return nil
		})
		ticRepo := ticpostgres.NewRepository(pg)
		ticDg = ticRepo
		indexerInfoDg = ticRepo
	case "memory":
		ticRepo := ticmemory.NewRepository()
		ticDg = ticRepo
		indexerInfoDg = ticRepo
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q database for indexer is not supported", conf.Modules.Tic.Database)
	}

	var datasource datasources.Datasource[*types.Block]
	switch strings.ToLower(conf.Modules.Tic.Datasource) {
	case "ethereum-node":
		client := do.MustInvoke[*ethclient.Client](injector)
		evmDatasource, err := datasources.NewEVMNode(ctx, client)
		if err != nil {
			return nil, errors.Wrap(err, "can't create EVM node datasource")
		}
		datasource = evmDatasource
	default:
		return nil, errors.Wrapf(errs.Unsupported, "%q datasource is not supported", conf.Modules.Tic.Datasource)
	}

	processor := NewProcessor(ticDg, indexerInfoDg, datasource, conf.Network, reportingClient, cleanupFuncs, conf.Modules.Tic.StartBlockHeight, conf.Modules.Tic.MaxTopicParts)
	if err := processor.VerifyStates(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	// Mount API
	apiHandlers := lo.Uniq(conf.Modules.Tic.APIHandlers)
	for _, handler := range apiHandlers {
		switch handler {
		case "http":
			httpServer := do.MustInvoke[*fiber.App](injector)
			ticUsecase := ticusecase.New(ticDg)
			ticHTTPHandler := tichttphandler.New(conf.Network, ticUsecase)
			if err := ticHTTPHandler.Mount(httpServer); err != nil {
				return nil, errors.Wrap(err, "can't mount TIC API")
			}
			logger.InfoContext(ctx, "Mounted HTTP handler")
		default:
			return nil, errors.Wrapf(errs.Unsupported, "%q API handler is not supported", handler)
		}
	}

	indexerWorker := indexer.New(processor, datasource)
	return indexerWorker, nil
}
