package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Sequence is the canonical total order of ethscription events:
// (block height, transaction index) ascending.
type Sequence struct {
	BlockHeight int64  `json:"block"`
	TxIndex     uint32 `json:"index"`
}

// Cmp returns -1 if s < other, 0 if s == other, 1 if s > other.
func (s Sequence) Cmp(other Sequence) int {
	if s.BlockHeight != other.BlockHeight {
		if s.BlockHeight < other.BlockHeight {
			return -1
		}
		return 1
	}
	if s.TxIndex != other.TxIndex {
		if s.TxIndex < other.TxIndex {
			return -1
		}
		return 1
	}
	return 0
}

func (s Sequence) String() string {
	return fmt.Sprintf("%d:%d", s.BlockHeight, s.TxIndex)
}

// InscriptionEvent is the creation of an ethscription: a transaction whose
// calldata decodes to a data URL. ContentType carries the full MIME string
// including parameters. Payload is the decoded data URL body.
type InscriptionEvent struct {
	Id          common.Hash
	Creator     common.Address
	ContentType string
	Payload     string
	BlockHeight int64
	TxIndex     uint32
}

func (e *InscriptionEvent) Sequence() Sequence {
	return Sequence{BlockHeight: e.BlockHeight, TxIndex: e.TxIndex}
}

// TransferEvent is an ethscription changing owner: a transaction whose
// calldata is an ethscription id previously owned by the sender.
type TransferEvent struct {
	EthscriptionId common.Hash
	From           common.Address
	To             common.Address
	BlockHeight    int64
	TxIndex        uint32
}

func (e *TransferEvent) Sequence() Sequence {
	return Sequence{BlockHeight: e.BlockHeight, TxIndex: e.TxIndex}
}
