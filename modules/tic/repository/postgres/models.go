package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type commentModel struct {
	Id             string      `db:"id"`
	TopicParts     []string    `db:"topic_parts"`
	TopicKey       string      `db:"topic_key"`
	Content        string      `db:"content"`
	Encoding       string      `db:"encoding"`
	Version        string      `db:"version"`
	UnknownVersion bool        `db:"unknown_version"`
	MessageType    string      `db:"message_type"`
	Author         string      `db:"author"`
	BlockHeight    int64       `db:"block_height"`
	TxIndex        int32       `db:"tx_index"`
	IsDeleted      bool        `db:"is_deleted"`
	IsValid        bool        `db:"is_valid"`
	InvalidReason  pgtype.Text `db:"invalid_reason"`
}

type deletionMarkerModel struct {
	EthscriptionId string `db:"ethscription_id"`
	BlockHeight    int64  `db:"block_height"`
	TxIndex        int32  `db:"tx_index"`
}

type indexedBlockModel struct {
	Height              int64              `db:"height"`
	Hash                string             `db:"hash"`
	ParentHash          string             `db:"parent_hash"`
	Timestamp           pgtype.Timestamptz `db:"timestamp"`
	EventHash           string             `db:"event_hash"`
	CumulativeEventHash string             `db:"cumulative_event_hash"`
}

type indexerStateModel struct {
	Id               int64              `db:"id"`
	DbVersion        int32              `db:"db_version"`
	EventHashVersion int32              `db:"event_hash_version"`
	Network          string             `db:"network"`
	CreatedAt        pgtype.Timestamptz `db:"created_at"`
}
