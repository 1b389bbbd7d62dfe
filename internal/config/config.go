// Package config resolves gccpr settings from ~/.gccpr/config.toml, a .env
// file and GCCPR_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".gccpr"
	envPrefix  = "GCCPR"

	KeyCatalogPath       = "catalog.path"
	KeyOracleCommand     = "oracle.command"
	KeyOracleCacheSize   = "oracle.cache_size"
	KeyWorkRoot          = "work.root"
	KeyWorkKeep          = "work.keep"
	KeyHistoryPath       = "history.path"
	KeyToolchainCC       = "toolchain.cc"
	KeyToolchainPlugin   = "toolchain.plugin"
	KeyToolchainSize     = "toolchain.size"
	KeyToolchainEmulator = "toolchain.emulator"
	KeyLogLevel          = "log.level"
	KeyLogJSON           = "log.json"
)

var validate = validator.New()

type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Oracle    OracleConfig    `mapstructure:"oracle"`
	Work      WorkConfig      `mapstructure:"work"`
	History   HistoryConfig   `mapstructure:"history"`
	Toolchain ToolchainConfig `mapstructure:"toolchain"`
	Log       LogConfig       `mapstructure:"log"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type OracleConfig struct {
	// Command is the shuffler executable; empty means catalog only.
	Command   string `mapstructure:"command"`
	CacheSize int    `mapstructure:"cache_size" validate:"gte=0"`
}

type WorkConfig struct {
	Root string `mapstructure:"root" validate:"required"`
	Keep bool   `mapstructure:"keep"`
}

type HistoryConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type ToolchainConfig struct {
	CC       string `mapstructure:"cc" validate:"required"`
	Plugin   string `mapstructure:"plugin"`
	Size     string `mapstructure:"size"`
	Emulator string `mapstructure:"emulator"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	JSON  bool   `mapstructure:"json"`
}

type LoadOptions struct {
	// ConfigFile replaces the ~/.gccpr/config.toml lookup.
	ConfigFile string
	// EnvFile defaults to ".env" in the working directory.
	EnvFile string
}

// Load fills v with defaults, the config file and the environment, then
// decodes and validates the result. v is kept so adapters can read their
// own keys from it.
func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if v == nil {
		return Config{}, errors.New("config: viper instance is nil")
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	setDefaults(v, filepath.Join(homeDir, configDir))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(filepath.Join(homeDir, configDir))
	}

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyCatalogPath, filepath.Join(dir, "passes.toml"))
	v.SetDefault(KeyOracleCommand, "")
	v.SetDefault(KeyOracleCacheSize, 4096)
	v.SetDefault(KeyWorkRoot, filepath.Join(os.TempDir(), "gccpr"))
	v.SetDefault(KeyWorkKeep, false)
	v.SetDefault(KeyHistoryPath, filepath.Join(dir, "history.toml"))
	v.SetDefault(KeyToolchainCC, "gcc")
	v.SetDefault(KeyToolchainPlugin, "")
	v.SetDefault(KeyToolchainSize, "")
	v.SetDefault(KeyToolchainEmulator, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogJSON, false)
}
