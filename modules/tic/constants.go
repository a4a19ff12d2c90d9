package tic

import (
	"github.com/Ethereum-Phunks/tic-protocol/common"
)

const (
	Version          = "v0.0.1"
	DBVersion        = 1
	EventHashVersion = 1
)

// activationBlockHeight is the first block scanned when no explicit start
// height is configured. Ethscriptions predate the threaded-comment rule, so
// there is no point scanning from genesis.
var activationBlockHeight = map[common.Network]int64{
	common.NetworkMainnet: 17478950,
	common.NetworkSepolia: 3900000,
}
