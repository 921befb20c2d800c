package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/rainbow-table/internal/rainbow"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.kdl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestInitializeConfig(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	path := writeConfig(t, `
api-server-addr "0.0.0.0:9090"
table {
    alphabet "abc"
    password-length 4
    chain-length 20
    corpus-size 50
    seed 42
    hash "sha256"
    workers 2
}
`)
	cfg, err := InitializeConfig([]string{path})
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.ApiServerAddr)
	require.NotNil(t, cfg.TableConfig)
	assert.Equal(t, "abc", cfg.TableConfig.Alphabet)
	assert.Equal(t, 4, cfg.TableConfig.PasswordLength)
	assert.Equal(t, 20, cfg.TableConfig.ChainLength)
	assert.Equal(t, 50, cfg.TableConfig.CorpusSize)
	assert.Equal(t, int64(42), cfg.TableConfig.Seed)
	assert.Equal(t, "sha256", cfg.TableConfig.Hash)
	assert.Equal(t, 2, cfg.TableConfig.Workers)

	require.NotNil(t, cfg.DispatcherConfig)
	assert.Equal(t, 1024, cfg.DispatcherConfig.RequestQueueSize)
	assert.Nil(t, cfg.AmqpConfig)
	assert.Nil(t, cfg.ConsulConfig)
	assert.Nil(t, cfg.MongoDBConfig)

	assert.Equal(t, rainbow.Params{Alphabet: "abc", PasswordLength: 4, ChainLength: 20}, cfg.TableConfig.Params())
}

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10000, cfg.TableConfig.ChainLength)
	assert.Equal(t, 1000, cfg.TableConfig.CorpusSize)
	assert.Equal(t, "md5", cfg.TableConfig.Hash)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"chain length": func(c *Config) { c.TableConfig.ChainLength = 0 },
		"alphabet":     func(c *Config) { c.TableConfig.Alphabet = "" },
		"length":       func(c *Config) { c.TableConfig.PasswordLength = 0 },
		"corpus":       func(c *Config) { c.TableConfig.CorpusSize = -1 },
		"hash":         func(c *Config) { c.TableConfig.Hash = "crc32" },
		"no table":     func(c *Config) { c.TableConfig = nil },
		"queue":        func(c *Config) { c.DispatcherConfig.RequestQueueSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, rainbow.ErrConfiguration))
		})
	}
}

func TestAdvertiseAddress(t *testing.T) {
	cfg := DefaultConfig()
	host, port, err := cfg.AdvertiseAddress()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, 8080, port)

	cfg.ApiServerAddr = "no-port"
	_, _, err = cfg.AdvertiseAddress()
	require.Error(t, err)
}
