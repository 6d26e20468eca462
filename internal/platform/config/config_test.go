package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EngineSettings(t *testing.T) {
	t.Setenv("SPLIT_AMOUNT_THRESHOLD", "150.5")
	t.Setenv("SPLIT_MERCHANTS", "Costco, ,Target")
	t.Setenv("LOOKUP_DEBOUNCE", "not-a-duration")
	t.Setenv("DUPLICATE_AMOUNT_TOLERANCE", "-1")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Engine.SplitAmountThreshold.Equal(decimal.RequireFromString("150.5")))
	assert.Equal(t, []string{"Costco", "Target"}, cfg.Engine.SplitMerchants)
	assert.Equal(t, 300*time.Millisecond, cfg.Engine.LookupDebounce)
	assert.True(t, cfg.Engine.DuplicateAmountTolerance.Equal(decimal.RequireFromString("0.50")))
	assert.Equal(t, 5*time.Minute, cfg.Engine.SessionIdleTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b "))
}
