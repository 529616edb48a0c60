package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/azores-high-index/internal/domain"
)

const (
	defaultBroker = "localhost:9092"
	testDataPath  = "/data/PSL_monthly.nc"
)

// unsetForTest clears key for the duration of the test and restores it afterwards.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_PATH", testDataPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testDataPath, cfg.DataPath)
	assert.Equal(t, "PSL", cfg.SLPVariable)
	assert.Equal(t, "lat", cfg.LatVariable)
	assert.Equal(t, "lon", cfg.LonVariable)
	assert.Equal(t, "time", cfg.TimeVariable)
	assert.Equal(t, domain.DefaultParams(), cfg.Params)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.True(t, cfg.ParquetEnabled)
	assert.True(t, cfg.XLSXEnabled)
	assert.True(t, cfg.PlotsEnabled)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "azores-high-index", cfg.KafkaSinkTopic)
	assert.Equal(t, 3, cfg.PublishRetries)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 64, cfg.CacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_PATH", testDataPath)
	t.Setenv("SLP_VARIABLE", "slp")
	t.Setenv("LAT_VARIABLE", "latitude")
	t.Setenv("LON_VARIABLE", "longitude")
	t.Setenv("TIME_VARIABLE", "t")
	t.Setenv("NORM_TYPE", "global_mean")
	t.Setenv("CUTOFF_PERCENTILE", "95")
	t.Setenv("WINDOW_YEARS", "31")
	t.Setenv("OUTPUT_DIR", "/tmp/aha")
	t.Setenv("PARQUET_ENABLED", "false")
	t.Setenv("XLSX_ENABLED", "false")
	t.Setenv("PLOTS_ENABLED", "false")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("PUBLISH_RETRIES", "5")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CACHE_SIZE", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "slp", cfg.SLPVariable)
	assert.Equal(t, "latitude", cfg.LatVariable)
	assert.Equal(t, "longitude", cfg.LonVariable)
	assert.Equal(t, "t", cfg.TimeVariable)
	assert.Equal(t, domain.Params{Norm: domain.NormGlobalMean, CutoffPercentile: 95, Window: 31}, cfg.Params)
	assert.Equal(t, "/tmp/aha", cfg.OutputDir)
	assert.False(t, cfg.ParquetEnabled)
	assert.False(t, cfg.XLSXEnabled)
	assert.False(t, cfg.PlotsEnabled)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, 5, cfg.PublishRetries)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 8, cfg.CacheSize)
}

func TestLoad_MissingDataPath(t *testing.T) {
	unsetForTest(t, "DATA_PATH")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_PATH")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"NORM_TYPE", "zscore"},
		{"CUTOFF_PERCENTILE", "100"},
		{"CUTOFF_PERCENTILE", "abc"},
		{"WINDOW_YEARS", "0"},
		{"PUBLISH_RETRIES", "-2"},
		{"CACHE_SIZE", "lots"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("DATA_PATH", testDataPath)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DATA_PATH=/from/file.nc\nWINDOW_YEARS=11\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	unsetForTest(t, "DATA_PATH")
	unsetForTest(t, "WINDOW_YEARS")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/from/file.nc", cfg.DataPath)
	assert.Equal(t, 11, cfg.Params.Window)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("DATA_PATH", testDataPath)

	_, err := Load()
	require.NoError(t, err)
}
