package tic

import (
	"strconv"
	"strings"

	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// calculateEventHash commits to every record and marker this block produced.
// Records and markers are serialized in event order, which is deterministic
// across replays, so two honest indexers at the same height always agree.
func (p *Processor) calculateEventHash(header types.BlockHeader, records []*entity.CommentRecord, markers []*entity.DeletionMarker) common.Hash {
	var sb strings.Builder
	sb.WriteString("payload:v" + strconv.Itoa(EventHashVersion) + ":")
	sb.WriteString("blockHash:")
	sb.Write(header.Hash[:])

	for _, record := range records {
		sb.WriteString(serializeCommentRecord(record))
	}
	for _, marker := range markers {
		sb.WriteString(serializeDeletionMarker(marker))
	}

	return crypto.Keccak256Hash([]byte(sb.String()))
}

func chainEventHashes(prevCumulativeEventHash, eventHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(prevCumulativeEventHash[:], eventHash[:])
}

func serializeCommentRecord(record *entity.CommentRecord) string {
	var sb strings.Builder
	sb.WriteString("comment:")
	sb.WriteString("id:" + record.Id.Hex())
	sb.WriteString("topic:" + record.TopicKey())
	sb.WriteString("content:" + record.Content)
	sb.WriteString("encoding:" + record.Encoding.String())
	sb.WriteString("version:" + record.Version)
	sb.WriteString("type:" + record.Type.String())
	sb.WriteString("author:" + strings.ToLower(record.Author.Hex()))
	sb.WriteString("sequence:" + record.Sequence.String())
	sb.WriteString("valid:" + strconv.FormatBool(record.Valid))
	return sb.String()
}

func serializeDeletionMarker(marker *entity.DeletionMarker) string {
	var sb strings.Builder
	sb.WriteString("deletion:")
	sb.WriteString("id:" + marker.EthscriptionId.Hex())
	sb.WriteString("sequence:" + marker.Sequence.String())
	return sb.String()
}
