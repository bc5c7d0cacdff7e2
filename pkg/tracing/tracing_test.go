package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/career-onboard/internal/config"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(config.Config{}, logger.NewNop(), "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_WithEndpoint(t *testing.T) {
	var cfg config.Config
	cfg.Jaeger.OTLPEndpoint = "localhost:4317"
	cfg.App.Env = "test"

	// The gRPC client connects lazily, so no collector is needed here.
	shutdown, err := Init(cfg, logger.NewNop(), "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
}
