package tic

import (
	"strings"

	"github.com/samber/lo"
)

const (
	addressHexLength = 42 // 0x + 20 bytes
	hashHexLength    = 66 // 0x + 32 bytes
)

// NormalizeTopic canonicalizes a validated topic string: split on ":",
// lower-case each part. Hex-ness is already guaranteed by schema validation
// and is not re-checked here.
func NormalizeTopic(topic string) []string {
	return lo.Map(strings.Split(topic, ":"), func(part string, _ int) string {
		return strings.ToLower(part)
	})
}

// TopicKey joins normalized topic parts into the canonical index key.
func TopicKey(parts []string) string {
	return strings.Join(parts, ":")
}

type TopicClassKind string

const (
	TopicClassAddress TopicClassKind = "address"
	TopicClassHash    TopicClassKind = "hash"
	TopicClassUnknown TopicClassKind = "unknown"
	TopicClassNFT     TopicClassKind = "nft"
	TopicClassMulti   TopicClassKind = "multi"
)

type TopicClass struct {
	Kind     TopicClassKind `json:"kind"`
	Contract string         `json:"contract,omitempty"`
	TokenId  string         `json:"tokenId,omitempty"`
	Parts    []string       `json:"parts,omitempty"`
}

// ClassifyTopic structurally classifies normalized topic parts. The
// classification is advisory and recomputed on demand: topic structure is
// community-interpretable, so nothing here is ever persisted as
// authoritative.
func ClassifyTopic(parts []string) TopicClass {
	switch len(parts) {
	case 1:
		switch len(parts[0]) {
		case addressHexLength:
			return TopicClass{Kind: TopicClassAddress}
		case hashHexLength:
			return TopicClass{Kind: TopicClassHash}
		default:
			return TopicClass{Kind: TopicClassUnknown}
		}
	case 2:
		if len(parts[0]) == addressHexLength {
			return TopicClass{Kind: TopicClassNFT, Contract: parts[0], TokenId: parts[1]}
		}
	}
	return TopicClass{Kind: TopicClassMulti, Parts: parts}
}
