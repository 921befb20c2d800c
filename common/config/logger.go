package config

import "github.com/ykhdr/rainbow-table/common/logging"

type LogConfig struct {
	LogLevel string `kdl:"log-level"`
}

func (c *LogConfig) GetLogLevel() string {
	return c.LogLevel
}

type hasLogLevel interface {
	GetLogLevel() string
}

func setupLogger(cfg any) {
	logLevel := logging.InfoLevel
	if logCfg, ok := cfg.(hasLogLevel); ok {
		logLevel = logging.ParseLevel(logCfg.GetLogLevel())
	}
	logging.Setup(logLevel)
}
