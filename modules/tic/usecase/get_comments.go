package usecase

import (
	"context"

	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/tic"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
)

// GetCommentsByTopic returns valid comments for the given raw topic, ordered
// by sequence ascending. The topic is normalized before lookup, so lookups
// are case-insensitive.
func (u *Usecase) GetCommentsByTopic(ctx context.Context, topic string, limit, offset int32) ([]*entity.CommentRecord, error) {
	topicKey := tic.TopicKey(tic.NormalizeTopic(topic))
	records, err := u.ticDg.GetCommentRecordsByTopic(ctx, topicKey, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get comments by topic")
	}
	return records, nil
}

func (u *Usecase) GetCommentsByAuthor(ctx context.Context, author common.Address, limit, offset int32) ([]*entity.CommentRecord, error) {
	records, err := u.ticDg.GetCommentRecordsByAuthor(ctx, author, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get comments by author")
	}
	return records, nil
}

func (u *Usecase) GetComment(ctx context.Context, id common.Hash) (*entity.CommentRecord, error) {
	record, err := u.ticDg.GetCommentRecord(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get comment")
	}
	return record, nil
}

func (u *Usecase) GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error) {
	block, err := u.ticDg.GetLatestIndexedBlock(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get latest indexed block")
	}
	return block, nil
}

// ClassifyTopic normalizes and classifies a raw topic string. The class is
// advisory and has no effect on indexing.
func (u *Usecase) ClassifyTopic(topic string) tic.TopicClass {
	return tic.ClassifyTopic(tic.NormalizeTopic(topic))
}
