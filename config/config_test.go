package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "pigeonpost"
kafka:
  host: "localhost"
  port: 9092
  status_changed_topic_name: "tracking.status_changed"
redis:
  host: "localhost"
  port: 6379
pigeonpost:
  http_addr: ":8080"
  public_base_url: "https://pigeon.example"
  admin_username: "admin"
  admin_password: "pigeon123"
  login_rate_limit_per_minute: 10
  worker_refresh_interval_seconds: 60
log:
  mode: "debug"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(sampleYAML), 0o600))
	return p
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t))
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "postgres://u:p@localhost:5432/pigeonpost?sslmode=disable", cfg.Database.ConnString())
	require.Equal(t, "tracking.status_changed", cfg.Kafka.StatusChangedTopicName)
	require.True(t, cfg.Kafka.Enabled())
	require.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers())
	require.Equal(t, "localhost:6379", cfg.Redis.Addr())
	require.Equal(t, ":8080", cfg.PigeonPost.HTTPAddr)
	require.Equal(t, 10, cfg.PigeonPost.LoginRateLimitPerMinute)
	require.Equal(t, "debug", cfg.Log.Mode)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "from-env")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$hash")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := LoadConfig(writeConfig(t))
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Database.Password)
	require.Equal(t, "$2a$10$hash", cfg.PigeonPost.AdminPasswordHash)
	require.Equal(t, ":9090", cfg.PigeonPost.HTTPAddr)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("database: [oops"), 0o600))
	_, err = LoadConfig(p)
	require.Error(t, err)
}

func TestLoad_FlagAndEnvPath(t *testing.T) {
	chdir(t, t.TempDir())
	p := writeConfig(t)

	cfg, err := Load("pigeon-api", []string{"--config", p})
	require.NoError(t, err)
	require.Equal(t, "admin", cfg.PigeonPost.AdminUsername)

	t.Setenv("configPath", p)
	cfg, err = Load("pigeon-api", nil)
	require.NoError(t, err)
	require.Equal(t, "pigeonpost", cfg.Database.DBName)

	t.Setenv("configPath", "")
	_, err = Load("pigeon-api", nil)
	require.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	p := writeConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("configPath="+p+"\n"), 0o600))
	t.Setenv("configPath", "")
	os.Unsetenv("configPath")

	cfg, err := Load("pigeon-api", nil)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
}

func TestDisabledIntegrations(t *testing.T) {
	var cfg Config
	require.False(t, cfg.Kafka.Enabled())
	require.False(t, cfg.Redis.Enabled())
}

// chdir mirrors testing.T.Chdir (Go 1.24+): switch the working directory and
// restore it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { require.NoError(t, os.Chdir(old)) })
}
