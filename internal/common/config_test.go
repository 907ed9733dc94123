package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()
	assert.Equal(t, "./out", cfg.Pipeline.OutputRoot)
	assert.Equal(t, 2, cfg.Pipeline.MaxRetries)
	assert.InDelta(t, 0.75, cfg.Pipeline.ClassifierThreshold, 1e-9)
	assert.InDelta(t, 0.86, cfg.Pipeline.FuzzyThreshold, 1e-9)
	assert.InDelta(t, 1, cfg.Pipeline.ToleranceAbsolute, 1e-9)
	assert.Equal(t, "INR", cfg.Units.Currency)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AFS_OUTPUT_ROOT", "/var/lib/afs")
	t.Setenv("AFS_MAX_RETRIES", "4")
	t.Setenv("AFS_CLASSIFIER_THRESHOLD", "0.6")
	t.Setenv("AFS_ULB_NAME", "Test Municipal Council")

	cfg := LoadConfig()
	assert.Equal(t, "/var/lib/afs", cfg.Pipeline.OutputRoot)
	assert.Equal(t, 4, cfg.Pipeline.MaxRetries)
	assert.InDelta(t, 0.6, cfg.Pipeline.ClassifierThreshold, 1e-9)
	assert.Equal(t, "Test Municipal Council", cfg.Entity.ULBName)
}

func TestLoadConfigIgnoresUnparsableEnv(t *testing.T) {
	t.Setenv("AFS_MAX_RETRIES", "many")
	t.Setenv("AFS_FUZZY_THRESHOLD", "high")

	cfg := LoadConfig()
	assert.Equal(t, 2, cfg.Pipeline.MaxRetries)
	assert.InDelta(t, 0.86, cfg.Pipeline.FuzzyThreshold, 1e-9)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := LoadConfig()
	cfg.Pipeline.MaxRetries = -1
	require.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.Pipeline.ClassifierThreshold = 1.5
	require.Error(t, cfg.Validate())

	cfg = LoadConfig()
	cfg.Pipeline.OutputRoot = ""
	require.Error(t, cfg.Validate())
}
