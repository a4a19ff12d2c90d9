package config

import "github.com/Ethereum-Phunks/tic-protocol/internal/postgres"

type Config struct {
	Datasource string          `mapstructure:"datasource"` // Datasource to fetch inscription and transfer events e.g. `ethereum-node`
	Database   string          `mapstructure:"database"`   // Database to store indexed comments. e.g. `postgres` | `memory`
	Postgres   postgres.Config `mapstructure:"postgres"`

	// StartBlockHeight is the first block to index. 0 starts at the
	// protocol activation height for the configured network.
	StartBlockHeight int64 `mapstructure:"start_block_height"`

	// MaxTopicParts caps topic fan-out. 0 uses the protocol default.
	MaxTopicParts int `mapstructure:"max_topic_parts"`

	APIHandlers []string `mapstructure:"api_handlers"`
}
