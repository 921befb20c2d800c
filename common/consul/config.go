package consul

import (
	"fmt"

	"github.com/hashicorp/consul/api"
)

type HealthConfig struct {
	Interval string `kdl:"interval"`
	Timeout  string `kdl:"timeout"`
	Http     string `kdl:"http"`
}

// toApiConfig builds an HTTP check against the health path of the service at
// address:port.
func (c *HealthConfig) toApiConfig(address string, port int) *api.AgentServiceCheck {
	return &api.AgentServiceCheck{
		HTTP:     fmt.Sprintf("http://%s:%d%s", address, port, c.Http),
		Timeout:  c.Timeout,
		Interval: c.Interval,
	}
}

type Config struct {
	Address string        `kdl:"address"`
	Health  *HealthConfig `kdl:"health"`
}

func (c *Config) toApiConfig() *api.Config {
	cfg := api.DefaultConfig()
	cfg.Address = c.Address
	return cfg
}
