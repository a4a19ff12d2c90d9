package httphandler

import (
	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/usecase"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

type getThreadRequest struct {
	Id       string `params:"id"`
	MaxDepth int    `query:"maxDepth"`
}

func (r *getThreadRequest) Validate() error {
	var errList []error
	if !isHexHash(r.Id) {
		errList = append(errList, errors.New("'id' is not a valid 32-byte hash"))
	}
	if r.MaxDepth < 0 {
		errList = append(errList, errors.New("'maxDepth' must be non-negative"))
	}
	if r.MaxDepth > usecase.DefaultMaxThreadDepth {
		errList = append(errList, errors.Errorf("'maxDepth' cannot exceed %d", usecase.DefaultMaxThreadDepth))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type threadNode struct {
	comment
	Replies []threadNode `json:"replies"`
}

func mapThreadNodeToResponse(src *usecase.ThreadNode) threadNode {
	return threadNode{
		comment: mapCommentToResponse(src.CommentRecord),
		Replies: lo.Map(src.Replies, func(reply *usecase.ThreadNode, _ int) threadNode {
			return mapThreadNodeToResponse(reply)
		}),
	}
}

type getThreadResponse = HttpResponse[threadNode]

func (h *HttpHandler) GetThread(ctx *fiber.Ctx) error {
	var req getThreadRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	root, err := h.usecase.GetThread(ctx.UserContext(), common.HexToHash(req.Id), req.MaxDepth)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("comment not found")
		}
		return errors.Wrap(err, "error during GetThread")
	}

	result := mapThreadNodeToResponse(root)
	resp := getThreadResponse{
		Result: &result,
	}
	return errors.WithStack(ctx.JSON(resp))
}
