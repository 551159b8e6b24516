package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// DefaultKey is the storage key the list lives under.
const DefaultKey = "@to-do-list:todos"

type Config struct {
	Env      string  `toml:"env" env:"TODOLIST_ENV" env-default:"prod"`
	DataDir  string  `toml:"data_dir" env:"TODOLIST_DATA_DIR"`
	LogLevel string  `toml:"log_level" env:"TODOLIST_LOG_LEVEL" env-default:"info"`
	Theme    string  `toml:"theme" env:"TODOLIST_THEME" env-default:"classic"`
	Storage  Storage `toml:"storage"`
}

type Storage struct {
	Driver string `toml:"driver" env:"TODOLIST_STORAGE_DRIVER" env-default:"file"`
	Key    string `toml:"key" env:"TODOLIST_STORAGE_KEY" env-default:"@to-do-list:todos"`
	Redis  Redis  `toml:"redis"`

	// DataDir is copied from Config by Load so backends need only this struct.
	DataDir string `toml:"-"`
}

type Redis struct {
	Addr     string `toml:"addr" env:"TODOLIST_REDIS_ADDR" env-default:"localhost:6379"`
	Password string `toml:"password" env:"TODOLIST_REDIS_PASSWORD"`
	DB       int    `toml:"db" env:"TODOLIST_REDIS_DB" env-default:"0"`
}

// Load reads the TOML file at path (if it exists) and then the environment.
// Environment variables win over file values.
func Load(path string) (*Config, error) {
	cfg := new(Config)

	var err error
	if path != "" && fileExists(path) {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	cfg.Storage.DataDir = cfg.DataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %q", c.Env)
	}
	switch c.Storage.Driver {
	case DriverFile, DriverSQLite, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}
	if c.Storage.Key == "" {
		return errors.New("storage key is empty")
	}
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	dir := DefaultDataDir()
	return &Config{
		Env:      EnvProd,
		DataDir:  dir,
		LogLevel: "info",
		Theme:    "classic",
		Storage: Storage{
			Driver:  DriverFile,
			Key:     DefaultKey,
			Redis:   Redis{Addr: "localhost:6379"},
			DataDir: dir,
		},
	}
}

// WriteFile encodes cfg as TOML at path. It refuses to overwrite.
func WriteFile(path string, cfg *Config) error {
	if fileExists(path) {
		return fmt.Errorf("config already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
