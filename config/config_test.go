package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearDBEnv(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_PATH", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearDBEnv(t)
	path := filepath.Join(t.TempDir(), "bikebuild.yaml")
	content := `
server:
  port: "9090"
database:
  driver: sqlite
  path: /tmp/builds.db
logging:
  level: debug
scaffold:
  serialize_materialization: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Scaffold.SerializeMaterialization)
	assert.Equal(t, "X-User-ID", cfg.Auth.UserHeader, "defaults survive a partial file")
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeoutDuration())
}

func TestEnvOverridesFile(t *testing.T) {
	clearDBEnv(t)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_USER", "bikes")
	t.Setenv("DB_NAME", "bikes")
	t.Setenv("PORT", "7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "host=db.internal port=5432 user=bikes password= dbname=bikes sslmode=disable", cfg.Database.DSN())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "postgres without host",
			mutate:  func(c *Config) {},
			wantErr: "host, user and name are required",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Database.Driver = DriverSQLite },
			wantErr: "path is required",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: `unknown database driver "mysql"`,
		},
		{
			name: "bad shutdown timeout",
			mutate: func(c *Config) {
				c.Database.Driver = DriverSQLite
				c.Database.Path = "x.db"
				c.Server.ShutdownTimeout = "soon"
			},
			wantErr: "shutdown_timeout",
		},
		{
			name: "valid sqlite",
			mutate: func(c *Config) {
				c.Database.Driver = DriverSQLite
				c.Database.Path = "x.db"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	d := DatabaseConfig{Driver: DriverSQLite, Path: "/var/lib/bikes.db"}
	assert.Equal(t, "file:/var/lib/bikes.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", d.DSN())
}
