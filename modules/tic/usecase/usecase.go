package usecase

import (
	"github.com/Ethereum-Phunks/tic-protocol/modules/tic/datagateway"
)

type Usecase struct {
	ticDg datagateway.TicReaderDataGateway
}

func New(ticDg datagateway.TicReaderDataGateway) *Usecase {
	return &Usecase{
		ticDg: ticDg,
	}
}
