// Package config loads mediantree settings from defaults, an optional YAML
// file, MEDIANTREE_* environment variables, and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. MEDIANTREE_DB_PATH.
const EnvPrefix = "MEDIANTREE"

// Config represents the complete mediantree configuration
type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	DB       DBConfig       `mapstructure:"db"`
	Neo4j    Neo4jConfig    `mapstructure:"neo4j"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Estimate EstimateConfig `mapstructure:"estimate"`
}

// StoreConfig selects where snapshots are persisted
type StoreConfig struct {
	// Backend is "sqlite" (default) or "neo4j"
	Backend string `mapstructure:"backend"`
}

// DBConfig controls the SQLite backend
type DBConfig struct {
	// Path is the database file, or ":memory:" for a throwaway store
	Path string `mapstructure:"path"`
}

// Neo4jConfig controls the Neo4j backend
type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// ServerConfig controls `mediantree serve`
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig controls structured logging
type LogConfig struct {
	// UseCases logs one line per service use case to stderr
	UseCases bool `mapstructure:"use_cases"`
}

// EstimateConfig controls which confidence levels the estimate command prints
type EstimateConfig struct {
	Levels []float64 `mapstructure:"levels"`
}

// Backend names accepted by store.backend.
const (
	BackendSQLite = "sqlite"
	BackendNeo4j  = "neo4j"
)

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Store: StoreConfig{Backend: BackendSQLite},
		DB:    DBConfig{Path: filepath.Join(Dir(), "mediantree.db")},
		Neo4j: Neo4jConfig{
			URI:  "neo4j://localhost:7687",
			User: "neo4j",
		},
		Server:   ServerConfig{Addr: ":8080"},
		Log:      LogConfig{UseCases: false},
		Estimate: EstimateConfig{Levels: []float64{0.70, 0.95, 0.99}},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("store.backend", defaults.Store.Backend)
	v.SetDefault("db.path", defaults.DB.Path)
	v.SetDefault("neo4j.uri", defaults.Neo4j.URI)
	v.SetDefault("neo4j.user", defaults.Neo4j.User)
	v.SetDefault("neo4j.password", defaults.Neo4j.Password)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("log.use_cases", defaults.Log.UseCases)
	v.SetDefault("estimate.levels", defaults.Estimate.Levels)
}

// Flag names bound onto config keys by BindFlags.
var flagKeys = map[string]string{
	"db":      "db.path",
	"backend": "store.backend",
	"verbose": "log.use_cases",
}

// RegisterFlags adds the global configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default "+File()+")")
	fs.String("db", "", "SQLite database path (overrides db.path)")
	fs.String("backend", "", "snapshot store: sqlite or neo4j")
	fs.Bool("verbose", false, "log service use cases to stderr")
}

// New builds a viper instance with defaults, environment overrides, the
// config file (explicit path, or File() when present), and any flags from fs
// that were registered by RegisterFlags. fs may be nil.
func New(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfgFile string
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			cfgFile = f.Value.String()
		}
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
		return v, nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load reads the configuration from v into a Config struct and validates it
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// An unset flag binds as the empty string; fall back to the default path.
	if cfg.DB.Path == "" {
		cfg.DB.Path = Default().DB.Path
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Dir returns the mediantree home directory.
func Dir() string {
	if home := os.Getenv("MEDIANTREE_HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mediantree"
	}
	return filepath.Join(home, ".mediantree")
}

// File returns the path to the default config file
func File() string {
	return filepath.Join(Dir(), "config.yaml")
}
