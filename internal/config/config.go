package config

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/Ethereum-Phunks/tic-protocol/common"
	ticconfig "github.com/Ethereum-Phunks/tic-protocol/modules/tic/config"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/logger"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/logger/slogx"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/middleware/requestcontext"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/middleware/requestlogger"
	"github.com/Ethereum-Phunks/tic-protocol/pkg/reportingclient"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	configOnce sync.Once
	config     = &Config{
		Logger: logger.Config{
			Output: "TEXT",
		},
		Network: common.NetworkMainnet,
		HTTPServer: HTTPServer{
			Port: 8080,
		},
	}
)

type Config struct {
	Logger        logger.Config          `mapstructure:"logger"`
	EthereumNode  EthereumNodeClient     `mapstructure:"ethereum_node"`
	Network       common.Network         `mapstructure:"network"`
	APIOnly       bool                   `mapstructure:"api_only"`
	EnableModules []string               `mapstructure:"enable_modules"`
	HTTPServer    HTTPServer             `mapstructure:"http_server"`
	Reporting     reportingclient.Config `mapstructure:"reporting"`
	Modules       Modules                `mapstructure:"modules"`
}

type EthereumNodeClient struct {
	// Host is the execution client RPC endpoint, http(s) or ws(s)
	Host string `mapstructure:"host"`
}

type HTTPServer struct {
	Port      int                               `mapstructure:"port"`
	Logger    requestlogger.Config              `mapstructure:"logger"`
	RequestIP requestcontext.WithClientIPConfig `mapstructure:"request_ip"`
}

type Modules struct {
	Tic ticconfig.Config `mapstructure:"tic"`
}

// BindPFlag binds a cobra flag to a configuration key, overriding file and
// environment values when set.
func BindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		logger.Panic("Failed to bind flag to configuration", slogx.String("key", key), slogx.Error(err))
	}
}

// Parse reads the config file (or ./config.yaml by default), environment
// variables and bound flags into the process configuration. Safe to call
// more than once; only the first call parses.
func Parse(configFile string) Config {
	ctx := logger.WithContext(context.Background(), slog.String("package", "config"))
	configOnce.Do(func() {
		if configFile != "" {
			viper.SetConfigFile(configFile)
		} else {
			viper.AddConfigPath("./")
			viper.SetConfigName("config")
		}

		viper.AutomaticEnv()
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		if err := viper.ReadInConfig(); err != nil {
			var errNotfound viper.ConfigFileNotFoundError
			if errors.As(err, &errNotfound) {
				logger.WarnContext(ctx, "config file not found, use default value", slogx.Error(err))
			} else {
				logger.PanicContext(ctx, "invalid config file", slogx.Error(err))
			}
		}

		if err := viper.Unmarshal(&config); err != nil {
			logger.PanicContext(ctx, "failed to unmarshal config", slogx.Error(err))
		}
	})

	return *config
}

// Load returns the parsed configuration.
func Load() Config {
	return Parse("")
}
