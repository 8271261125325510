package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "config.yaml"
	DefaultRowLimit   = 100
	envPrefix         = "LOGISTICS_ADMIN_"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Events   EventsConfig   `yaml:"events"`
}

type DatabaseConfig struct {
	DBType           string `yaml:"type"`
	ConnectionString string `yaml:"connection_string,omitempty"`
	File             string `yaml:"file,omitempty"`
	// Demo seeds the memory backend with sample records.
	Demo            bool     `yaml:"demo,omitempty"`
	ExcludePrefixes []string `yaml:"exclude_prefixes,omitempty"`
	RowLimit        int      `yaml:"row_limit,omitempty"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`
	CookieName   string `yaml:"cookie_name"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

type AuthConfig struct {
	Secret   string         `yaml:"secret"`
	TokenTTL time.Duration  `yaml:"token_ttl"`
	Admins   []AdminAccount `yaml:"admins"`
}

// AdminAccount is a staff login. PasswordHash is a bcrypt hash.
type AdminAccount struct {
	UserID       string `yaml:"user_id"`
	Email        string `yaml:"email"`
	PasswordHash string `yaml:"password_hash"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

type EventsConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `yaml:"kafka_topic,omitempty"`
	Websocket    bool     `yaml:"websocket"`
}

// LoadConfig reads .env (if present), the YAML file and LOGISTICS_ADMIN_*
// overrides, then applies defaults. A missing file is only an error when a
// non-default path was requested.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}

	var config Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	return &config, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.DBType, "DB_TYPE")
	setString(&c.Database.ConnectionString, "DB_URL")
	setString(&c.Database.File, "DB_FILE")
	setString(&c.Server.Port, "PORT")
	setString(&c.Auth.Secret, "AUTH_SECRET")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setString(&c.Logging.Format, "LOG_FORMAT")
	setString(&c.Events.KafkaTopic, "KAFKA_TOPIC")

	if v := getEnv("KAFKA_BROKERS"); v != "" {
		c.Events.KafkaBrokers = splitList(v)
	}
	if v := getEnv("ROW_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sROW_LIMIT: %w", envPrefix, err)
		}
		c.Database.RowLimit = n
	}
	if v := getEnv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTOKEN_TTL: %w", envPrefix, err)
		}
		c.Auth.TokenTTL = d
	}
	return nil
}

func (c *Config) ApplyDefaults() {
	if c.Database.DBType == "" {
		c.Database.DBType = "memory"
		c.Database.Demo = true
	}
	// rows per list never exceed the default cap
	if c.Database.RowLimit <= 0 || c.Database.RowLimit > DefaultRowLimit {
		c.Database.RowLimit = DefaultRowLimit
	}
	if c.Server.Port == "" {
		c.Server.Port = "3000"
	}
	if c.Server.CookieName == "" {
		c.Server.CookieName = "session"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Events.KafkaTopic == "" {
		c.Events.KafkaTopic = "logistics-admin.changes"
	}
}

func (d *DatabaseConfig) GetConnectionString() (string, error) {
	switch d.DBType {
	case "postgres", "mysql":
		if d.ConnectionString == "" {
			return "", fmt.Errorf("connection string is required for %s connection", d.DBType)
		}

		return d.ConnectionString, nil

	case "sqlite":
		if d.File == "" {
			d.File = "database.db"
		}
		return d.File, nil

	case "memory":
		if d.Demo {
			return "demo", nil
		}
		return "", nil

	default:
		return "", fmt.Errorf("unsupported database type: %s", d.DBType)
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
