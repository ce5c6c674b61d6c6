package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	selgoErrors "github.com/selgo-ml/selgo/pkg/errors"
	"github.com/selgo-ml/selgo/pkg/log"
)

func TestZerologProvider(t *testing.T) {
	t.Run("structured fields", func(t *testing.T) {
		var buf bytes.Buffer
		provider := log.NewZerologProviderWithOutput(log.LevelInfo, &buf)
		logger := provider.GetLoggerWithName("selection")

		logger.Info("selection fitted",
			log.ModelNameKey, "SelectKBest",
			log.FeaturesKey, 8,
			log.SelectedKey, 4,
		)

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "selection fitted", record["message"])
		assert.Equal(t, "selection", record[log.ComponentKey])
		assert.Equal(t, "SelectKBest", record[log.ModelNameKey])
		assert.EqualValues(t, 8, record[log.FeaturesKey])
		assert.EqualValues(t, 4, record[log.SelectedKey])
	})

	t.Run("level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		provider := log.NewZerologProviderWithOutput(log.LevelWarn, &buf)
		logger := provider.GetLogger()

		logger.Debug("hidden")
		logger.Info("also hidden")
		assert.Zero(t, buf.Len())

		logger.Warn("visible")
		assert.NotZero(t, buf.Len())
	})

	t.Run("enabled", func(t *testing.T) {
		provider := log.NewZerologProviderWithOutput(log.LevelInfo, &bytes.Buffer{})
		logger := provider.GetLogger()

		assert.False(t, logger.Enabled(context.Background(), log.LevelDebug))
		assert.True(t, logger.Enabled(context.Background(), log.LevelInfo))
		assert.True(t, logger.Enabled(context.Background(), log.LevelError))
	})

	t.Run("error in first position", func(t *testing.T) {
		var buf bytes.Buffer
		provider := log.NewZerologProviderWithOutput(log.LevelInfo, &buf)
		logger := provider.GetLogger()

		logger.Error("fit failed", selgoErrors.New("boom"), log.ModelNameKey, "RFE")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Contains(t, record["error"], "boom")
		assert.Equal(t, "RFE", record[log.ModelNameKey])
	})

	t.Run("with fields", func(t *testing.T) {
		var buf bytes.Buffer
		provider := log.NewZerologProviderWithOutput(log.LevelInfo, &buf)
		logger := provider.GetLogger().With(log.SeedKey, 42)

		logger.Info("forest trained")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.EqualValues(t, 42, record[log.SeedKey])
	})
}

func TestToLogLevel(t *testing.T) {
	assert.Equal(t, log.LevelDebug, log.ToLogLevel("debug"))
	assert.Equal(t, log.LevelWarn, log.ToLogLevel("warn"))
	assert.Equal(t, log.LevelInfo, log.ToLogLevel("nonsense"))
}

func TestInstallWarningSink(t *testing.T) {
	var buf bytes.Buffer
	provider := log.NewZerologProviderWithOutput(log.LevelWarn, &buf)
	log.InstallWarningSink(provider.GetLogger())
	defer selgoErrors.SetZerologWarnFunc(nil)

	selgoErrors.Warn(selgoErrors.NewConvergenceWarning("lbfgs", 100, ""))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Contains(t, record["warning"], "lbfgs")
}
