package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getCurrentBlockResult struct {
	Hash                string `json:"hash"`
	Height              int64  `json:"height"`
	EventHash           string `json:"eventHash"`
	CumulativeEventHash string `json:"cumulativeEventHash"`
}

type getCurrentBlockResponse = HttpResponse[getCurrentBlockResult]

func (h *HttpHandler) GetCurrentBlock(ctx *fiber.Ctx) (err error) {
	block, err := h.usecase.GetLatestIndexedBlock(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetLatestIndexedBlock")
	}

	resp := getCurrentBlockResponse{
		Result: &getCurrentBlockResult{
			Hash:                block.Hash.Hex(),
			Height:              block.Height,
			EventHash:           block.EventHash.Hex(),
			CumulativeEventHash: block.CumulativeEventHash.Hex(),
		},
	}

	return errors.WithStack(ctx.JSON(resp))
}
