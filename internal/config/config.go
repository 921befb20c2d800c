package config

import (
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/ykhdr/rainbow-table/common/amqp"
	"github.com/ykhdr/rainbow-table/common/config"
	"github.com/ykhdr/rainbow-table/common/consul"
	"github.com/ykhdr/rainbow-table/common/store/mongo"
	"github.com/ykhdr/rainbow-table/internal/corpus"
	"github.com/ykhdr/rainbow-table/internal/hashfunc"
	"github.com/ykhdr/rainbow-table/internal/rainbow"
)

type TableConfig struct {
	Alphabet       string `kdl:"alphabet"`
	PasswordLength int    `kdl:"password-length"`
	ChainLength    int    `kdl:"chain-length"`
	CorpusSize     int    `kdl:"corpus-size"`
	// Seed 0 picks a seed from the clock.
	Seed    int64  `kdl:"seed"`
	Hash    string `kdl:"hash"`
	Workers int    `kdl:"workers"`
}

func (c *TableConfig) Params() rainbow.Params {
	return rainbow.Params{
		Alphabet:       c.Alphabet,
		PasswordLength: c.PasswordLength,
		ChainLength:    c.ChainLength,
	}
}

type DispatcherConfig struct {
	RequestQueueSize int           `kdl:"request-queue-size"`
	DispatchTimeout  time.Duration `kdl:"dispatch-timeout"`
}

type Config struct {
	config.LogConfig
	ApiServerAddr    string            `kdl:"api-server-addr"`
	TableConfig      *TableConfig      `kdl:"table"`
	DispatcherConfig *DispatcherConfig `kdl:"dispatcher"`
	AmqpConfig       *amqp.Config      `kdl:"amqp"`
	ConsulConfig     *consul.Config    `kdl:"consul"`
	MongoDBConfig    *mongo.Config     `kdl:"mongodb"`
}

func DefaultConfig() *Config {
	return &Config{
		LogConfig:     config.LogConfig{LogLevel: "info"},
		ApiServerAddr: "127.0.0.1:8080",
		TableConfig: &TableConfig{
			Alphabet:       corpus.LowercaseAlphabet,
			PasswordLength: 6,
			ChainLength:    10000,
			CorpusSize:     1000,
			Hash:           hashfunc.DefaultName,
		},
		DispatcherConfig: &DispatcherConfig{
			RequestQueueSize: 1024,
			DispatchTimeout:  5 * time.Second,
		},
	}
}

func InitializeConfig(args []string) (*Config, error) {
	cfg, err := config.InitializeConfig[Config](args, *DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the table cannot be built from.
func (c *Config) Validate() error {
	t := c.TableConfig
	if t == nil {
		return errors.Wrap(rainbow.ErrConfiguration, "missing table section")
	}
	if t.ChainLength < 1 {
		return errors.Wrapf(rainbow.ErrConfiguration, "chain-length %d", t.ChainLength)
	}
	if t.Alphabet == "" {
		return errors.Wrap(rainbow.ErrConfiguration, "empty alphabet")
	}
	if t.PasswordLength < 1 {
		return errors.Wrapf(rainbow.ErrConfiguration, "password-length %d", t.PasswordLength)
	}
	if t.CorpusSize < 0 {
		return errors.Wrapf(rainbow.ErrConfiguration, "corpus-size %d", t.CorpusSize)
	}
	if _, err := hashfunc.Get(t.Hash); err != nil {
		return errors.Wrap(rainbow.ErrConfiguration, err.Error())
	}
	if d := c.DispatcherConfig; d == nil || d.RequestQueueSize < 1 {
		return errors.Wrap(rainbow.ErrConfiguration, "dispatcher request-queue-size must be positive")
	}
	return nil
}

// AdvertiseAddress is the host and port other services reach the api server
// on. A wildcard or empty host is replaced by the first up, non-loopback
// IPv4 address.
func (c *Config) AdvertiseAddress() (string, int, error) {
	host, portStr, err := net.SplitHostPort(c.ApiServerAddr)
	if err != nil {
		return "", 0, errors.Wrap(err, "parse api-server-addr")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, errors.Wrap(err, "parse api-server-addr port")
	}
	if host != "" && host != "0.0.0.0" && host != "::" {
		return host, port, nil
	}
	addr, err := findAvailableIPv4Addr()
	if err != nil {
		return "", 0, err
	}
	return addr, port, nil
}

func findAvailableIPv4Addr() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", errors.Wrap(err, "list network interfaces")
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			return "", errors.Wrapf(err, "list addresses of %s", iface.Name)
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipNet.IP.To4(); ip4 != nil {
					return ip4.String(), nil
				}
			}
		}
	}
	return "", errors.New("no valid network interface found")
}
