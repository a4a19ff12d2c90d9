package entity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type IndexedBlock struct {
	Height     int64
	Hash       common.Hash
	ParentHash common.Hash
	Timestamp  time.Time

	// EventHash commits to this block's accepted records and deletion
	// markers; CumulativeEventHash chains it onto the previous block's, so
	// independent indexer operators can cross-check replay consistency.
	EventHash           common.Hash
	CumulativeEventHash common.Hash
}

type IndexerState struct {
	DBVersion        int32
	EventHashVersion int32
	Network          string
	CreatedAt        time.Time
}
