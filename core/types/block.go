package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

type BlockHeader struct {
	Hash       common.Hash
	ParentHash common.Hash
	Height     int64
	Timestamp  time.Time
}

// Block is one Ethereum block reduced to its ethscription activity.
// Inscriptions and Transfers are ordered by transaction index.
type Block struct {
	Header       BlockHeader
	Inscriptions []*InscriptionEvent
	Transfers    []*TransferEvent
}

func (b Block) BlockHeader() BlockHeader {
	return b.Header
}
