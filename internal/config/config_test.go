package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFresh(t *testing.T, dir string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(dir))
}

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	loadFresh(t, dir)

	_, err := os.Stat(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, AppConfig.DatabaseDriver)
	assert.Equal(t, filepath.Join(dir, "talentmatch.db"), AppConfig.DatabasePath)
	assert.Equal(t, 40, AppConfig.MinScore)
	assert.Equal(t, 4, AppConfig.ScoreWorkers)
	assert.Equal(t, "@every 1h", AppConfig.RescoreSchedule)
	assert.Equal(t, ":8090", AppConfig.HTTPAddr)
	assert.Equal(t, "EVENT_MATCH", AppConfig.NotifyChannel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TALENTMATCH_MIN_SCORE", "55")
	t.Setenv("TALENTMATCH_REDIS_URL", "redis://localhost:6379/0")
	loadFresh(t, t.TempDir())

	assert.Equal(t, 55, AppConfig.MinScore)
	assert.Equal(t, "redis://localhost:6379/0", AppConfig.RedisURL)
}

func TestSetPersists(t *testing.T) {
	dir := t.TempDir()
	loadFresh(t, dir)

	require.NoError(t, Set("min_score", "60"))
	assert.Error(t, Set("openai_key", "sk-123"))

	loadFresh(t, dir)
	assert.Equal(t, 60, AppConfig.MinScore)
	assert.Equal(t, "60", Get("min_score"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite ok", Config{DatabaseDriver: DriverSQLite, DatabasePath: "x.db", MinScore: 40}, false},
		{"sqlite without path", Config{DatabaseDriver: DriverSQLite}, true},
		{"postgres without url", Config{DatabaseDriver: DriverPostgres}, true},
		{"postgres ok", Config{DatabaseDriver: DriverPostgres, DatabaseURL: "postgres://localhost/tm"}, false},
		{"unknown driver", Config{DatabaseDriver: "mysql"}, true},
		{"score out of range", Config{DatabaseDriver: DriverSQLite, DatabasePath: "x.db", MinScore: 101}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKeysSorted(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "database_driver")
	assert.Contains(t, keys, "rescore_schedule")
	assert.IsIncreasing(t, keys)
}
