package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maktaba/core"
)

func TestNewConfig_defaults(t *testing.T) {
	t.Setenv("ENV", "")

	conf, err := core.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "DEV", conf.Env)
	assert.Equal(t, 10, conf.Moderation.ResourceFlagThreshold)
	assert.Equal(t, 100, conf.Moderation.OwnerSuspendThreshold)
	assert.Equal(t, 2*time.Minute, conf.Moderation.RetryMaxElapsed)
	assert.Equal(t, 6, conf.Analytics.TopRatedLimit)
	assert.Equal(t, core.EngineMemory, conf.Database.Engine)
	assert.Equal(t, "Maktaba", conf.DefaultFromEmail().Name)
}

func TestNewConfig_environment(t *testing.T) {
	t.Setenv("ENV", "qa")
	t.Setenv("QA_MODERATION_RESOURCEFLAGTHRESHOLD", "3")
	t.Setenv("QA_DATABASE_ENGINE", "mongo")
	t.Setenv("QA_SERVER_REVIEWRATELIMIT", "0.5")

	conf, err := core.NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "QA", conf.Env)
	assert.Equal(t, 3, conf.Moderation.ResourceFlagThreshold)
	assert.Equal(t, core.EngineMongo, conf.Database.Engine)
	assert.Equal(t, 0.5, conf.Server.ReviewRateLimit)
}

func TestNewConfig_invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "zero flag threshold", key: "QA_MODERATION_RESOURCEFLAGTHRESHOLD", val: "0"},
		{name: "negative suspend threshold", key: "QA_MODERATION_OWNERSUSPENDTHRESHOLD", val: "-1"},
		{name: "unknown engine", key: "QA_DATABASE_ENGINE", val: "sqlite"},
		{name: "zero top rated", key: "QA_ANALYTICS_TOPRATEDLIMIT", val: "0"},
		{name: "unbounded retries", key: "QA_MODERATION_RETRYMAXELAPSED", val: "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "qa")
			t.Setenv(tt.key, tt.val)

			_, err := core.NewConfig()
			require.Error(t, err)
			assert.True(t, core.IsValidation(err), "got %v", err)
		})
	}
}

func TestNewTestConfig(t *testing.T) {
	assert.NoError(t, core.NewTestConfig().Validate())
}
