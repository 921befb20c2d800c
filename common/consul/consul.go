package consul

import (
	"fmt"

	"github.com/hashicorp/consul/api"
	"github.com/pkg/errors"
)

type Client interface {
	RegisterService(serviceName, address string, port int) (string, error)
	DeregisterService(serviceId string) error
}

type client struct {
	cfg    *Config
	client *api.Client
}

func NewClient(cfg *Config) (Client, error) {
	cl, err := api.NewClient(cfg.toApiConfig())
	if err != nil {
		return nil, errors.Wrap(err, "create consul client")
	}
	return &client{client: cl, cfg: cfg}, nil
}

func ServiceId(address string, port int) string {
	return fmt.Sprintf("%s:%d", address, port)
}

func (c *client) registration(serviceName, address string, port int) *api.AgentServiceRegistration {
	reg := &api.AgentServiceRegistration{
		ID:      ServiceId(address, port),
		Name:    serviceName,
		Address: address,
		Port:    port,
	}
	if c.cfg.Health != nil {
		reg.Check = c.cfg.Health.toApiConfig(address, port)
	}
	return reg
}

// RegisterService registers the service with the local agent and returns its
// id.
func (c *client) RegisterService(serviceName, address string, port int) (string, error) {
	reg := c.registration(serviceName, address, port)
	if err := c.client.Agent().ServiceRegister(reg); err != nil {
		return "", errors.Wrapf(err, "register service %s", reg.ID)
	}
	return reg.ID, nil
}

func (c *client) DeregisterService(serviceId string) error {
	if err := c.client.Agent().ServiceDeregister(serviceId); err != nil {
		return errors.Wrapf(err, "deregister service %s", serviceId)
	}
	return nil
}
