package config

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

type APIConfig struct {
	Port int `json:"port"`
}

type DatabaseConfig struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
	Port     int64  `json:"port"`
}

// StorageConfig selects the collection backend. "file" keeps every
// collection as a JSON file under DataDir; "postgres" keeps each collection
// as a row, with identical whole-collection semantics.
type StorageConfig struct {
	Backend  string          `json:"backend"`
	DataDir  string          `json:"data_dir"`
	Postgres *DatabaseConfig `json:"postgres"`
}

// SecurityConfig drives the session cookie and password handling.
// HashPasswords is off by default: accounts are then stored with clear-text
// passwords for compatibility with legacy data files. Turn it on for any
// deployment that matters.
type SecurityConfig struct {
	Secret        string `json:"secret"`
	CookieName    string `json:"cookie_name"`
	CookieMaxAge  int    `json:"cookie_max_age"`
	HashPasswords bool   `json:"hash_passwords"`
}

type Config struct {
	API      *APIConfig      `json:"api"`
	Storage  *StorageConfig  `json:"storage"`
	Security *SecurityConfig `json:"security"`
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config

	err = json.Unmarshal(b, &config)
	if err != nil {
		return nil, err
	}

	if config.API == nil || config.Security == nil || config.Security.Secret == "" {
		return nil, ErrInvalidConfig
	}

	applyDefaults(&config)

	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Storage == nil {
		c.Storage = &StorageConfig{}
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Security.CookieName == "" {
		c.Security.CookieName = "acct_user"
	}
	if c.Security.CookieMaxAge == 0 {
		// one week, matching the original cookie lifetime
		c.Security.CookieMaxAge = 60 * 60 * 24 * 7
	}
}
