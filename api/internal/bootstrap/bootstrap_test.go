package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"analyze-skin/api/internal/config"
	"analyze-skin/api/internal/skin"
)

func TestServiceSelectsEngine(t *testing.T) {
	for _, name := range []string{"rest", "sdk"} {
		cfg := &config.Config{Engine: name, GeminiAPIKey: "k", GeminiModel: "gemini-test"}
		svc, err := Service(cfg, zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, name, svc.Engine().Name())
		assert.Equal(t, "gemini-test", svc.Engine().GetModel())
		assert.NoError(t, svc.Ready())
	}
}

func TestServiceWithoutKeyIsNotReady(t *testing.T) {
	svc, err := Service(&config.Config{Engine: "rest"}, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, skin.IsKind(svc.Ready(), skin.KindConfiguration))
}

func TestServiceUnknownEngine(t *testing.T) {
	_, err := Service(&config.Config{Engine: "openai"}, zap.NewNop())
	assert.Error(t, err)
}
