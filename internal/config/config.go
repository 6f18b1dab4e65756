package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"musicstore-sql/internal/compose"
)

const (
	defaultDatabasePath      = "musicstore.db"
	defaultMaxOpenConns      = 4
	defaultBusyTimeout       = 5 * time.Second
	defaultAddr              = ":8080"
	defaultReadHeaderTimeout = 5 * time.Second
)

type Config struct {
	Database Database `yaml:"database"`
	Server   Server   `yaml:"server"`
}

type Database struct {
	Path         string        `yaml:"path"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
}

type Server struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
}

func Default() Config {
	return Config{
		Database: Database{
			Path:         defaultDatabasePath,
			MaxOpenConns: defaultMaxOpenConns,
			BusyTimeout:  defaultBusyTimeout,
		},
		Server: Server{
			Addr:              defaultAddr,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies the
// MUSICSTORE_DB and ADDR environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if value := strings.TrimSpace(os.Getenv("MUSICSTORE_DB")); value != "" {
		cfg.Database.Path = value
	}
	if value := strings.TrimSpace(os.Getenv("ADDR")); value != "" {
		cfg.Server.Addr = value
	}

	cfg.fillDefaults()
	return cfg, cfg.Validate()
}

// fillDefaults restores defaults for fields a config file set to zero.
func (c *Config) fillDefaults() {
	defaults := Default()
	if strings.TrimSpace(c.Database.Path) == "" {
		c.Database.Path = defaults.Database.Path
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = defaults.Server.ReadHeaderTimeout
	}
}

func (c Config) Validate() error {
	if c.Database.MaxOpenConns < 0 {
		return errors.Newf("database.max_open_conns must be positive, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.BusyTimeout < 0 {
		return errors.Newf("database.busy_timeout must be positive, got %s", c.Database.BusyTimeout)
	}
	if c.Server.ReadHeaderTimeout < 0 {
		return errors.Newf("server.read_header_timeout must be positive, got %s", c.Server.ReadHeaderTimeout)
	}
	return nil
}

// EngineOptions maps the database section onto the engine's options.
func (c Config) EngineOptions() compose.Options {
	return compose.Options{
		Path:         c.Database.Path,
		MaxOpenConns: c.Database.MaxOpenConns,
		BusyTimeout:  c.Database.BusyTimeout,
	}
}
