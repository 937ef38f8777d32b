package config

import (
	"os"
	"testing"

	"github.com/ales-tsurko/colly-go/clock"
	"github.com/ales-tsurko/colly-go/cursor"
	"github.com/stretchr/testify/assert"
)

func TestFromEnv_ReadsKeysAndOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("COLLY_RESOLUTION", "480")
	t.Setenv("COLLY_TEMPO", "140")

	cfg := FromEnv()
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, "gm-test", cfg.GeminiAPIKey)
	assert.Equal(t, uint64(480), cfg.DefaultResolution)
	assert.Equal(t, 140.0, cfg.DefaultTempo)
}

func TestFromEnv_UnsetFieldsFallBackToDefaults(t *testing.T) {
	os.Unsetenv("COLLY_RESOLUTION")
	os.Unsetenv("COLLY_TEMPO")

	cfg := FromEnv()
	assert.Equal(t, cursor.DefaultResolution, cfg.ResolutionOrDefault())
	assert.Equal(t, clock.DefaultTempo, cfg.TempoOrDefault())
}

func TestConfig_ExplicitValuesWin(t *testing.T) {
	cfg := Config{DefaultResolution: 96, DefaultTempo: 90}
	assert.Equal(t, uint64(96), cfg.ResolutionOrDefault())
	assert.Equal(t, 90.0, cfg.TempoOrDefault())
}
