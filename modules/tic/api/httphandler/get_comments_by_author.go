package httphandler

import (
	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
)

type getCommentsByAuthorRequest struct {
	paginationRequest
	Author string `params:"author"`
}

func (r *getCommentsByAuthorRequest) Validate() error {
	var errList []error
	if !common.IsHexAddress(r.Author) {
		errList = append(errList, errors.Errorf("'%s' is not a valid address", r.Author))
	}
	if err := r.paginationRequest.Validate(); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getCommentsByAuthorResult struct {
	Author string    `json:"author"`
	List   []comment `json:"list"`
}

type getCommentsByAuthorResponse = HttpResponse[getCommentsByAuthorResult]

func (h *HttpHandler) GetCommentsByAuthor(ctx *fiber.Ctx) error {
	var req getCommentsByAuthorRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	req.ParseDefault()

	author := common.HexToAddress(req.Author)
	records, err := h.usecase.GetCommentsByAuthor(ctx.UserContext(), author, req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetCommentsByAuthor")
	}

	resp := getCommentsByAuthorResponse{
		Result: &getCommentsByAuthorResult{
			Author: author.Hex(),
			List:   mapCommentsToResponse(records),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
