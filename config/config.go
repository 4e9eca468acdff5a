package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Redis      RedisConfig      `yaml:"redis"`
	PigeonPost PigeonPostConfig `yaml:"pigeonpost"`
	Log        LogConfig        `yaml:"log"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) ConnString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.DBName, sslMode)
}

// KafkaConfig: пустой host — Kafka не используется.
type KafkaConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	StatusChangedTopicName string `yaml:"status_changed_topic_name"`
}

func (k KafkaConfig) Enabled() bool { return k.Host != "" }

func (k KafkaConfig) Brokers() []string {
	return []string{fmt.Sprintf("%s:%d", k.Host, k.Port)}
}

// RedisConfig: пустой host — без кэша и без ограничения попыток входа.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

func (r RedisConfig) Enabled() bool { return r.Host != "" }

func (r RedisConfig) Addr() string { return fmt.Sprintf("%s:%d", r.Host, r.Port) }

type PigeonPostConfig struct {
	HTTPAddr              string `yaml:"http_addr"`
	PublicBaseURL         string `yaml:"public_base_url"`
	SwaggerPath           string `yaml:"swagger_path"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	KafkaConsumerGroup    string `yaml:"kafka_consumer_group"`
	RecordCacheTTLSeconds int    `yaml:"record_cache_ttl_seconds"`

	AdminUsername     string `yaml:"admin_username"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	// только для разработки: хэшируется при старте
	AdminPassword string `yaml:"admin_password"`

	SessionTTLHours             int `yaml:"session_ttl_hours"`
	SessionSweepIntervalSeconds int `yaml:"session_sweep_interval_seconds"`
	LoginRateLimitPerMinute     int `yaml:"login_rate_limit_per_minute"`

	WorkerHTTPAddr               string `yaml:"worker_http_addr"`
	WorkerSwaggerPath            string `yaml:"worker_swagger_path"`
	WorkerRefreshIntervalSeconds int    `yaml:"worker_refresh_interval_seconds"`
	WorkerBatchSize              int    `yaml:"worker_batch_size"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	Dir        string `yaml:"dir"`
	Filename   string `yaml:"filename"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	applyEnvOverrides(&config)
	return &config, nil
}

// Load: .env (если есть) -> флаг --config или переменная configPath -> YAML -> секреты из окружения.
func Load(name string, args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	path := fs.StringP("config", "c", os.Getenv("configPath"), "path to YAML config")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("config path is required (--config or configPath env var)")
	}
	return LoadConfig(*path)
}

// Секреты удобнее держать в окружении, а не в YAML.
func applyEnvOverrides(c *Config) {
	setString(&c.Database.Password, "DATABASE_PASSWORD")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.PigeonPost.AdminUsername, "ADMIN_USERNAME")
	setString(&c.PigeonPost.AdminPasswordHash, "ADMIN_PASSWORD_HASH")
	setString(&c.PigeonPost.AdminPassword, "ADMIN_PASSWORD")
	setString(&c.Log.Mode, "LOG_MODE")
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p <= 65535 {
			c.PigeonPost.HTTPAddr = fmt.Sprintf(":%d", p)
		}
	}
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}
