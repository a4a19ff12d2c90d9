package entity

import (
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/tic"
	"github.com/ethereum/go-ethereum/common"
)

// CommentRecord is the indexed form of one TIC inscription, valid or not.
// Invalid records are retained for audit and excluded from all query views.
type CommentRecord struct {
	// Id is the originating ethscription id.
	Id common.Hash

	// TopicParts is the normalized topic; empty for invalid records.
	TopicParts []string

	Content        string
	Encoding       tic.Encoding
	Version        string
	UnknownVersion bool
	Type           tic.MessageType

	// Author is the creator address of the underlying inscription.
	Author common.Address

	Sequence types.Sequence

	// Deleted is derived from deletion markers on read. Monotonic: a marker
	// is never removed except by chain reorganization rollback.
	Deleted bool

	Valid bool

	// InvalidReason holds the joined violation messages for audit when
	// Valid is false.
	InvalidReason string
}

// TopicKey returns the canonical topic index key for this record.
func (r *CommentRecord) TopicKey() string {
	return tic.TopicKey(r.TopicParts)
}

// IdTopicKey returns the topic key replies to this record use.
func (r *CommentRecord) IdTopicKey() string {
	return r.Id.Hex()
}
