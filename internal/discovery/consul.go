package discovery

import (
	"fmt"
	"log"
	"strconv"

	"iqscalar-service/internal/config"

	"github.com/hashicorp/consul/api"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
}

func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Consul.Address

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %v", err)
	}

	return &ServiceRegistry{
		client: client,
		config: cfg,
	}, nil
}

// Registration describes this instance to the Consul agent, with an HTTP
// check against the health endpoint.
func Registration(cfg *config.Config) (*api.AgentServiceRegistration, error) {
	port, err := strconv.Atoi(cfg.Server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %v", cfg.Server.Port, err)
	}

	return &api.AgentServiceRegistration{
		ID:      cfg.Server.ServiceID,
		Name:    cfg.Server.ServiceName,
		Port:    port,
		Address: cfg.Server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/api/health", cfg.Server.ServiceAddress, port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
		Tags: []string{"quiz", "iq", "http"},
		Meta: map[string]string{
			"protocol":    "http",
			"environment": cfg.Server.Environment,
		},
	}, nil
}

func (sr *ServiceRegistry) Register() error {
	registration, err := Registration(sr.config)
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register HTTP service with Consul: %v", err)
	}

	log.Printf("Registered %s with Consul as %s", sr.config.Server.ServiceName, sr.config.Server.ServiceID)
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	if err := sr.client.Agent().ServiceDeregister(sr.config.Server.ServiceID); err != nil {
		return fmt.Errorf("failed to deregister %s: %v", sr.config.Server.ServiceID, err)
	}
	log.Printf("Deregistered %s from Consul", sr.config.Server.ServiceID)
	return nil
}
