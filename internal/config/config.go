package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Firestore struct {
		ProjectID       string `yaml:"project_id"`
		CredentialsFile string `yaml:"credentials_file"`
		EmulatorHost    string `yaml:"emulator_host"`
	} `yaml:"firestore"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Cache struct {
		TTL string `yaml:"ttl"`
	} `yaml:"cache"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Content struct {
		DataDir string `yaml:"data_dir"`
		Seed    int64  `yaml:"seed"`
	} `yaml:"content"`
}

// Load reads YAML config from path, then applies environment overrides and
// defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg := Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv() {
	overrideStr(&c.Server.Port, "PORT")
	overrideStr(&c.Store.Driver, "STORE_DRIVER")
	overrideStr(&c.Postgres.URL, "DATABASE_URL")
	overrideStr(&c.SQLite.Path, "SQLITE_PATH")
	overrideStr(&c.Firestore.ProjectID, "FIRESTORE_PROJECT_ID")
	overrideStr(&c.Firestore.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	overrideStr(&c.Firestore.EmulatorHost, "FIRESTORE_EMULATOR_HOST")
	overrideStr(&c.Redis.Addr, "REDIS_ADDR")
	overrideStr(&c.Redis.Password, "REDIS_PASSWORD")
	overrideStr(&c.Log.Level, "LOG_LEVEL")
	overrideStr(&c.Log.Format, "LOG_FORMAT")
	overrideStr(&c.Content.DataDir, "CONTENT_DATA_DIR")
	if v := os.Getenv("CONTENT_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Content.Seed = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "content.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Content.DataDir == "" {
		c.Content.DataDir = "data"
	}
}

// Validate checks that the selected store driver has what it needs.
func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite.path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return fmt.Errorf("postgres.url is required for the postgres driver")
		}
	case DriverFirestore:
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore.project_id is required for the firestore driver")
		}
		if c.Firestore.CredentialsFile == "" && c.Firestore.EmulatorHost == "" {
			return fmt.Errorf("firestore.credentials_file or GOOGLE_APPLICATION_CREDENTIALS is required for the firestore driver")
		}
	default:
		return fmt.Errorf("store.driver must be one of memory, sqlite, postgres, firestore, got %q", c.Store.Driver)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

func overrideStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
