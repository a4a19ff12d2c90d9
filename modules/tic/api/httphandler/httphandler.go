package httphandler

import (
	"github.com/Ethereum-Phunks/tic-protocol/common"
	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/usecase"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	network common.Network
}

func New(network common.Network, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		network: network,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

type paginationRequest struct {
	Limit  int32 `query:"limit"`
	Offset int32 `query:"offset"`
}

func (r *paginationRequest) Validate() error {
	var errList []error
	if r.Limit < 0 {
		errList = append(errList, errors.New("'limit' must be non-negative"))
	}
	if r.Limit > maxLimit {
		errList = append(errList, errors.Errorf("'limit' cannot exceed %d", maxLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must be non-negative"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

func (r *paginationRequest) ParseDefault() {
	if r.Limit == 0 {
		r.Limit = defaultLimit
	}
}

type comment struct {
	Id             string         `json:"id"`
	Topic          []string       `json:"topic"`
	Content        string         `json:"content"`
	Encoding       string         `json:"encoding"`
	Version        string         `json:"version"`
	UnknownVersion bool           `json:"unknownVersion"`
	Type           string         `json:"type"`
	Author         string         `json:"author"`
	Sequence       types.Sequence `json:"sequence"`
	Deleted        bool           `json:"deleted"`
	Valid          bool           `json:"valid"`
	InvalidReason  string         `json:"invalidReason,omitempty"`
}

func mapCommentToResponse(src *entity.CommentRecord) comment {
	return comment{
		Id:             src.Id.Hex(),
		Topic:          src.TopicParts,
		Content:        src.Content,
		Encoding:       src.Encoding.String(),
		Version:        src.Version,
		UnknownVersion: src.UnknownVersion,
		Type:           src.Type.String(),
		Author:         src.Author.Hex(),
		Sequence:       src.Sequence,
		Deleted:        src.Deleted,
		Valid:          src.Valid,
		InvalidReason:  src.InvalidReason,
	}
}

func mapCommentsToResponse(src []*entity.CommentRecord) []comment {
	return lo.Map(src, func(record *entity.CommentRecord, _ int) comment {
		return mapCommentToResponse(record)
	})
}
