package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "GRAPHYTE"

// newViper builds a Viper instance reading YAML with GRAPHYTE_ overrides.
// Nested keys map "." → "_", so "engine.default_limit" resolves to
// GRAPHYTE_ENGINE_DEFAULT_LIMIT.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v, reflect.TypeOf(Config{}), "")
	return v
}

// bindEnvKeys registers every mapstructure key of t with v. AutomaticEnv only
// consults keys viper already knows, so without this an env-only deployment
// would unmarshal an empty Config.
func bindEnvKeys(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type.PkgPath() != "time" {
			bindEnvKeys(v, f.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// loadDotEnv reads a .env file into the process environment without
// overriding variables that are already set. Missing files are fine.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: failed to read %q: %w", p, err)
		}
	}
	return nil
}

// Load reads the YAML file at configPath, applies .env and GRAPHYTE_*
// overrides, fills defaults and validates. A .env file next to the config
// file or in the working directory is honoured.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(dotEnvCandidates(configPath)...); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from GRAPHYTE_* variables (and ./.env) alone.
//
//	GRAPHYTE_<SECTION>_<FIELD>   e.g. GRAPHYTE_REDIS_ADDR, GRAPHYTE_ENGINE_DEFAULT_LIMIT
func LoadFromEnv() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	return unmarshalAndFinalize(newViper())
}

// LoadOrEnv loads configPath when non-empty and falls back to LoadFromEnv.
func LoadOrEnv(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

func dotEnvCandidates(configPath string) []string {
	beside := filepath.Join(filepath.Dir(configPath), ".env")
	if beside == ".env" {
		return []string{".env"}
	}
	return []string{beside, ".env"}
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch calls onChange with the re-parsed Config whenever configPath changes
// on disk. Invalid revisions are reported to onError (when non-nil) and
// skipped. Callers apply only the safe subset, such as the log level.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	if _, err := os.Stat(configPath); err != nil {
		return fmt.Errorf("config: cannot watch %q: %w", configPath, err)
	}

	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad is Load for main(); it panics on error.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
