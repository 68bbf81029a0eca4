package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/MikeMC777/ordenes-checkout/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestSetupWithoutEndpointIsNoop(t *testing.T) {
	ctx := context.Background()

	shutdownTraces, err := SetupTracingSDK(ctx, config.Config{}, "order-service")
	require.NoError(t, err)
	assert.NoError(t, shutdownTraces(ctx))

	shutdownLogs, err := SetupLoggingSDK(ctx, config.Config{}, "order-service")
	require.NoError(t, err)
	assert.NoError(t, shutdownLogs(ctx))
}

func TestNewLogger(t *testing.T) {
	l := NewLogger("order-service", "error", false)
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))
}
