package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  type: postgres
  connection_string: postgres://admin@localhost/logistics
  exclude_prefixes: [pg_, audit_]
server:
  port: "8080"
auth:
  secret: s3cret
  token_ttl: 30m
  admins:
    - user_id: USR001
      email: ops@example.com
      password_hash: $2a$10$abcdefghijklmnopqrstuv
events:
  kafka_brokers: [localhost:9092]
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.DBType)
	assert.Equal(t, []string{"pg_", "audit_"}, cfg.Database.ExcludePrefixes)
	assert.Equal(t, DefaultRowLimit, cfg.Database.RowLimit)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "session", cfg.Server.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	require.Len(t, cfg.Auth.Admins, 1)
	assert.Equal(t, "USR001", cfg.Auth.Admins[0].UserID)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, "logistics-admin.changes", cfg.Events.KafkaTopic)
	assert.Equal(t, "info", cfg.Logging.Level)

	connStr, err := cfg.Database.GetConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "postgres://admin@localhost/logistics", connStr)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  type: sqlite\n  file: app.db\n")
	t.Setenv("LOGISTICS_ADMIN_DB_TYPE", "mysql")
	t.Setenv("LOGISTICS_ADMIN_DB_URL", "admin:pw@tcp(localhost:3306)/logistics")
	t.Setenv("LOGISTICS_ADMIN_KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("LOGISTICS_ADMIN_ROW_LIMIT", "25")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.DBType)
	assert.Equal(t, 25, cfg.Database.RowLimit)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Events.KafkaBrokers)

	t.Setenv("LOGISTICS_ADMIN_ROW_LIMIT", "many")
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestApplyDefaults_CapsRowLimit(t *testing.T) {
	for _, tt := range []struct {
		in, want int
	}{
		{in: 0, want: DefaultRowLimit},
		{in: -5, want: DefaultRowLimit},
		{in: 25, want: 25},
		{in: 500, want: DefaultRowLimit},
	} {
		cfg := Config{Database: DatabaseConfig{RowLimit: tt.in}}
		cfg.ApplyDefaults()
		assert.Equal(t, tt.want, cfg.Database.RowLimit, "row_limit %d", tt.in)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	// the default path may be absent; defaults then select the demo backend
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.DBType)
	connStr, err := cfg.Database.GetConnectionString()
	require.NoError(t, err)
	assert.Equal(t, "demo", connStr)
}

func TestGetConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DatabaseConfig
		want    string
		wantErr bool
	}{
		{name: "postgres requires a string", cfg: DatabaseConfig{DBType: "postgres"}, wantErr: true},
		{name: "mysql", cfg: DatabaseConfig{DBType: "mysql", ConnectionString: "dsn"}, want: "dsn"},
		{name: "sqlite default file", cfg: DatabaseConfig{DBType: "sqlite"}, want: "database.db"},
		{name: "sqlite file", cfg: DatabaseConfig{DBType: "sqlite", File: "x.db"}, want: "x.db"},
		{name: "memory empty", cfg: DatabaseConfig{DBType: "memory"}, want: ""},
		{name: "unsupported", cfg: DatabaseConfig{DBType: "oracle"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.GetConnectionString()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
