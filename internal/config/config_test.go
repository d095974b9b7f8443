package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, time.Hour, cfg.JWTExpiry())
}

func TestLoadYAMLFileThenEnvWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server_port: \"9090\"\ndb_name: from_yaml\njwt_expiry_minutes: 5\n"), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_NAME", "from_env")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort, "yaml overrides the default")
	assert.Equal(t, "from_env", cfg.DBName, "env overrides yaml")
	assert.Equal(t, 5*time.Minute, cfg.JWTExpiry())
}

func TestConnectionString(t *testing.T) {
	cfg := &Config{
		DBHost: "db", DBPort: "5433", DBUser: "u",
		DBPassword: "p", DBName: "bank", DBSSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5433 user=u password=p dbname=bank sslmode=disable",
		cfg.GetDBConnectionString())
}
