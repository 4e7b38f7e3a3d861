package logger_test

import (
	"context"
	"testing"

	"github.com/jpl-au/smartbar/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	l, err := logger.New(logger.EnvProd, "")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))

	l, err = logger.New(logger.EnvDev, "")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = logger.New("", "debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_Invalid(t *testing.T) {
	_, err := logger.New("staging", "")
	assert.Error(t, err)

	_, err = logger.New(logger.EnvDev, "loud")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.NotNil(t, logger.FromContext(context.Background()))

	l := zap.NewExample()
	ctx := logger.ContextWithLogger(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
}
