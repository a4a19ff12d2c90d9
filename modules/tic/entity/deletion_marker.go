package entity

import (
	"github.com/Ethereum-Phunks/tic-protocol/core/types"
	"github.com/ethereum/go-ethereum/common"
)

// DeletionMarker records a zero-address transfer of an ethscription. Markers
// are stored independently of comment records so that a burn observed before
// its comment still applies once the record arrives, and so that rollback
// can unmark precisely. Only the earliest marker per id is retained; later
// burns of the same id are idempotent no-ops.
type DeletionMarker struct {
	EthscriptionId common.Hash
	Sequence       types.Sequence
}
