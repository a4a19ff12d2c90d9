package usecase

import (
	"context"

	"github.com/Ethereum-Phunks/tic-protocol/common/errs"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

const DefaultMaxThreadDepth = 64

// ThreadNode is one comment with its direct replies, ordered by sequence
// ascending. A deleted comment keeps its place so replies stay attached.
type ThreadNode struct {
	*entity.CommentRecord
	Replies []*ThreadNode
}

// GetThread resolves the reply tree rooted at the given comment id. Replies
// are comments whose topic equals the parent's id. maxDepth <= 0 uses
// DefaultMaxThreadDepth; levels below the cap are cut off silently.
func (u *Usecase) GetThread(ctx context.Context, rootId common.Hash, maxDepth int) (*ThreadNode, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxThreadDepth
	}

	root, err := u.ticDg.GetCommentRecord(ctx, rootId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get thread root")
	}
	// Invalid records are kept for audit only and never anchor a thread.
	if !root.Valid {
		return nil, errors.Wrapf(errs.NotFound, "comment %s is not a valid thread root", rootId)
	}

	visited := map[common.Hash]struct{}{root.Id: {}}
	node, err := u.resolveReplies(ctx, root, visited, maxDepth)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (u *Usecase) resolveReplies(ctx context.Context, record *entity.CommentRecord, visited map[common.Hash]struct{}, depthLeft int) (*ThreadNode, error) {
	node := &ThreadNode{CommentRecord: record}
	if depthLeft <= 1 {
		return node, nil
	}

	replies, err := u.ticDg.GetCommentRecordsByTopic(ctx, record.IdTopicKey(), -1, 0)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get replies")
	}
	for _, reply := range replies {
		if _, ok := visited[reply.Id]; ok {
			return nil, errors.Wrapf(errs.CycleDetected, "comment %s already visited in thread", reply.Id)
		}
		visited[reply.Id] = struct{}{}
		child, err := u.resolveReplies(ctx, reply, visited, depthLeft-1)
		if err != nil {
			return nil, err
		}
		node.Replies = append(node.Replies, child)
	}
	return node, nil
}
