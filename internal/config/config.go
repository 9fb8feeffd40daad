package config

import (
	"bufio"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Env        string
	LogLevel   string
	HTTPAddr   string
	DBType     string
	DBDSN      string
	SQLitePath string
	FileSleep  string
	FileUsers  string

	AuthMode       string
	AuthServiceURL string

	// Reports anchor "today" in this zone.
	Timezone string

	MetricsEnabled bool

	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads .env and the environment once and panics on an invalid config.
func Load() *Config {
	once.Do(func() {
		c, err := Read(".env")
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// Read is Load without the singleton: it applies dotenv, reads the
// environment and validates. The CLI uses it to report errors instead of panicking.
func Read(dotenv string) (*Config, error) {
	if err := loadDotEnv(dotenv); err != nil {
		return nil, err
	}
	c := FromEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromEnv builds a config from the current environment without caching or validating it.
func FromEnv() *Config {
	return &Config{
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8088"),
		DBType:         getEnv("STORAGE_BACKEND", "file"),
		DBDSN:          getEnv("POSTGRES_DSN", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "data/sleep.db"),
		FileSleep:      getEnv("SLEEP_FILE", "data/sleep_logs.json"),
		FileUsers:      getEnv("USERS_FILE", "data/users.json"),
		AuthMode:       getEnv("AUTH_MODE", "local"),
		AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),
		Timezone:       getEnv("REPORT_TIMEZONE", "Local"),
		MetricsEnabled: getBool("METRICS_ENABLED", true),
		KafkaEnabled:   getBool("KAFKA_ENABLED", false),
		KafkaBrokers:   splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "sleep.records"),
	}
}

func (c *Config) Validate() error {
	switch c.DBType {
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "file":
		if c.FileSleep == "" || c.FileUsers == "" {
			return errors.New("File storage requires SLEEP_FILE and USERS_FILE to be set")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: file, postgres, sqlite")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.AuthMode != "local" && c.AuthMode != "remote" {
		return errors.New("AUTH_MODE must be one of: local, remote")
	}
	if c.AuthMode == "remote" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required when AUTH_MODE=remote")
	}
	if _, err := c.Location(); err != nil {
		return errors.New("REPORT_TIMEZONE is not a known time zone: " + c.Timezone)
	}
	if c.KafkaEnabled && (len(c.KafkaBrokers) == 0 || c.KafkaTopic == "") {
		return errors.New("KAFKA_BROKERS and KAFKA_TOPIC are required when KAFKA_ENABLED=true")
	}
	return nil
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadDotEnv sets KEY=VALUE pairs from path. Variables already set in the
// environment win over the file.
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, value)
		}
	}
	return sc.Err()
}
