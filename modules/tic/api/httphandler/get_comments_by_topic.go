package httphandler

import (
	"net/url"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/tic"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getCommentsByTopicRequest struct {
	paginationRequest
	Topic string `query:"topic"`
}

func (r *getCommentsByTopicRequest) Validate() error {
	var errList []error
	topic, err := url.QueryUnescape(r.Topic)
	if err != nil {
		return errors.WithStack(err)
	}
	r.Topic = topic
	if r.Topic == "" {
		errList = append(errList, errors.New("'topic' is required"))
	}
	if err := r.paginationRequest.Validate(); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getCommentsByTopicResult struct {
	Topic []string  `json:"topic"`
	List  []comment `json:"list"`
}

type getCommentsByTopicResponse = HttpResponse[getCommentsByTopicResult]

func (h *HttpHandler) GetCommentsByTopic(ctx *fiber.Ctx) error {
	var req getCommentsByTopicRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	req.ParseDefault()

	records, err := h.usecase.GetCommentsByTopic(ctx.UserContext(), req.Topic, req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetCommentsByTopic")
	}

	resp := getCommentsByTopicResponse{
		Result: &getCommentsByTopicResult{
			Topic: tic.NormalizeTopic(req.Topic),
			List:  mapCommentsToResponse(records),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
