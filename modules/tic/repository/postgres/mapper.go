package postgres

import (
	"strings"
	"time"

	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/entity"
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/tic"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5/pgtype"
)

// id and address columns hold lowercase hex text so that equality predicates
// and indexes work without custom operators.
func hashToDB(h common.Hash) string {
	return strings.ToLower(h.Hex())
}

func addressToDB(a common.Address) string {
	return strings.ToLower(a.Hex())
}

func mapCommentModelToType(src commentModel) *entity.CommentRecord {
	return &entity.CommentRecord{
		Id:             common.HexToHash(src.Id),
		TopicParts:     src.TopicParts,
		Content:        src.Content,
		Encoding:       tic.Encoding(src.Encoding),
		Version:        src.Version,
		UnknownVersion: src.UnknownVersion,
		Type:           tic.MessageType(src.MessageType),
		Author:         common.HexToAddress(src.Author),
		Sequence: types.Sequence{
			BlockHeight: src.BlockHeight,
			TxIndex:     uint32(src.TxIndex),
		},
		Deleted:       src.IsDeleted,
		Valid:         src.IsValid,
		InvalidReason: src.InvalidReason.String,
	}
}

func mapCommentTypeToModel(src *entity.CommentRecord) commentModel {
	var invalidReason pgtype.Text
	if src.InvalidReason != "" {
		invalidReason = pgtype.Text{String: src.InvalidReason, Valid: true}
	}
	return commentModel{
		Id:             hashToDB(src.Id),
		TopicParts:     src.TopicParts,
		TopicKey:       src.TopicKey(),
		Content:        src.Content,
		Encoding:       src.Encoding.String(),
		Version:        src.Version,
		UnknownVersion: src.UnknownVersion,
		MessageType:    src.Type.String(),
		Author:         addressToDB(src.Author),
		BlockHeight:    src.Sequence.BlockHeight,
		TxIndex:        int32(src.Sequence.TxIndex),
		IsValid:        src.Valid,
		InvalidReason:  invalidReason,
	}
}

func mapDeletionMarkerTypeToModel(src *entity.DeletionMarker) deletionMarkerModel {
	return deletionMarkerModel{
		EthscriptionId: hashToDB(src.EthscriptionId),
		BlockHeight:    src.Sequence.BlockHeight,
		TxIndex:        int32(src.Sequence.TxIndex),
	}
}

func mapIndexedBlockModelToType(src indexedBlockModel) *entity.IndexedBlock {
	var timestamp time.Time
	if src.Timestamp.Valid {
		timestamp = src.Timestamp.Time.UTC()
	}
	return &entity.IndexedBlock{
		Height:              src.Height,
		Hash:                common.HexToHash(src.Hash),
		ParentHash:          common.HexToHash(src.ParentHash),
		Timestamp:           timestamp,
		EventHash:           common.HexToHash(src.EventHash),
		CumulativeEventHash: common.HexToHash(src.CumulativeEventHash),
	}
}

func mapIndexedBlockTypeToModel(src *entity.IndexedBlock) indexedBlockModel {
	return indexedBlockModel{
		Height:              src.Height,
		Hash:                hashToDB(src.Hash),
		ParentHash:          hashToDB(src.ParentHash),
		Timestamp:           pgtype.Timestamptz{Time: src.Timestamp, Valid: true},
		EventHash:           hashToDB(src.EventHash),
		CumulativeEventHash: hashToDB(src.CumulativeEventHash),
	}
}

func mapIndexerStateModelToType(src indexerStateModel) entity.IndexerState {
	var createdAt time.Time
	if src.CreatedAt.Valid {
		createdAt = src.CreatedAt.Time.UTC()
	}
	return entity.IndexerState{
		DBVersion:        src.DbVersion,
		EventHashVersion: src.EventHashVersion,
		Network:          src.Network,
		CreatedAt:        createdAt,
	}
}
