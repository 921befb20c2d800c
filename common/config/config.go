package config

import (
	"github.com/pkg/errors"
	"github.com/ykhdr/rainbow-table/common/internal/kdl"
)

const defaultConfigPath = "./config/config.kdl"

// InitializeConfig loads the config named by the first argument (or the
// default path) over defaultCfg and sets up the global logger from it.
func InitializeConfig[T any](args []string, defaultCfg T) (*T, error) {
	configPath := defaultConfigPath
	if len(args) > 0 && args[0] != "" {
		configPath = args[0]
	}
	config, err := kdl.Unmarshal[T](configPath, defaultCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", configPath)
	}
	setupLogger(&config)
	return &config, nil
}
