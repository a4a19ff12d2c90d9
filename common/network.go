package common

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkSepolia Network = "sepolia"
)

var supportedNetworks = map[Network]struct{}{
	NetworkMainnet: {},
	NetworkSepolia: {},
}

var chainIds = map[Network]int64{
	NetworkMainnet: 1,
	NetworkSepolia: 11155111,
}

func (n Network) IsSupported() bool {
	_, ok := supportedNetworks[n]
	return ok
}

func (n Network) ChainId() int64 {
	return chainIds[n]
}

func (n Network) String() string {
	return string(n)
}

func GetSupportedNetworks() []Network {
	return []Network{NetworkMainnet, NetworkSepolia}
}
