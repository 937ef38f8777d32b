package config

import (
	"os"
	"strconv"

	"github.com/ales-tsurko/colly-go/clock"
	"github.com/ales-tsurko/colly-go/cursor"
)

// Config contains configuration for the Colly assistant and compiler.
type Config struct {
	OpenAIAPIKey string // OpenAI API key for LLM provider
	GeminiAPIKey string // Google Gemini API key (optional)

	// DefaultResolution and DefaultTempo are the compiler defaults used
	// when no outer evaluator supplies its own. Zero means unset; callers
	// apply cursor.DefaultResolution / DefaultTempo themselves.
	DefaultResolution uint64
	DefaultTempo      float64
}

// FromEnv reads OPENAI_API_KEY, GEMINI_API_KEY, COLLY_RESOLUTION, and
// COLLY_TEMPO. Zero value means unset; callers decide the default.
func FromEnv() Config {
	cfg := Config{
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
	}

	if v := os.Getenv("COLLY_RESOLUTION"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.DefaultResolution = n
		}
	}
	if v := os.Getenv("COLLY_TEMPO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.DefaultTempo = f
		}
	}

	return cfg
}

// ResolutionOrDefault returns cfg.DefaultResolution, falling back to
// cursor.DefaultResolution when unset.
func (c Config) ResolutionOrDefault() uint64 {
	if c.DefaultResolution == 0 {
		return cursor.DefaultResolution
	}
	return c.DefaultResolution
}

// TempoOrDefault returns cfg.DefaultTempo, falling back to
// clock.DefaultTempo when unset.
func (c Config) TempoOrDefault() float64 {
	if c.DefaultTempo == 0 {
		return clock.DefaultTempo
	}
	return c.DefaultTempo
}
