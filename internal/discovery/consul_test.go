package discovery

import (
	"testing"

	"iqscalar-service/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistration(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{
		Port:           "5001",
		Environment:    "production",
		ServiceName:    "iqscalar-service",
		ServiceAddress: "quiz.internal",
		ServiceID:      "iqscalar-service-node1",
	}}

	reg, err := Registration(cfg)
	require.NoError(t, err)
	assert.Equal(t, "iqscalar-service-node1", reg.ID)
	assert.Equal(t, 5001, reg.Port)
	assert.Equal(t, "http://quiz.internal:5001/api/health", reg.Check.HTTP)
	assert.Equal(t, "production", reg.Meta["environment"])

	cfg.Server.Port = "http"
	_, err = Registration(cfg)
	assert.Error(t, err)
}
