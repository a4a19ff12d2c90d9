package httphandler

import (
	"encoding/hex"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type getCommentRequest struct {
	Id string `params:"id"`
}

func isHexHash(s string) bool {
	if len(s) != common.HashLength*2+2 || (s[:2] != "0x" && s[:2] != "0X") {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

func (r *getCommentRequest) Validate() error {
	if !isHexHash(r.Id) {
		return errs.NewPublicError("'id' is not a valid 32-byte hash")
	}
	return nil
}

type getCommentResponse = HttpResponse[comment]

func (h *HttpHandler) GetComment(ctx *fiber.Ctx) error {
	var req getCommentRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	record, err := h.usecase.GetComment(ctx.UserContext(), common.HexToHash(req.Id))
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("comment not found")
		}
		return errors.Wrap(err, "error during GetComment")
	}

	result := mapCommentToResponse(record)
	resp := getCommentResponse{
		Result: &result,
	}
	return errors.WithStack(ctx.JSON(resp))
}
