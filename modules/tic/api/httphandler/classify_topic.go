package httphandler

import (
	"net/url"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/tic"
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type classifyTopicRequest struct {
	Topic string `query:"topic"`
}

func (r *classifyTopicRequest) Validate() error {
	topic, err := url.QueryUnescape(r.Topic)
	if err != nil {
		return errors.WithStack(err)
	}
	r.Topic = topic
	if r.Topic == "" {
		return errs.NewPublicError("'topic' is required")
	}
	return nil
}

type classifyTopicResult struct {
	Topic []string       `json:"topic"`
	Class tic.TopicClass `json:"class"`
}

type classifyTopicResponse = HttpResponse[classifyTopicResult]

func (h *HttpHandler) ClassifyTopic(ctx *fiber.Ctx) error {
	var req classifyTopicRequest
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	parts := tic.NormalizeTopic(req.Topic)
	resp := classifyTopicResponse{
		Result: &classifyTopicResult{
			Topic: parts,
			Class: tic.ClassifyTopic(parts),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
