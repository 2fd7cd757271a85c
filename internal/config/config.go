// Package config loads engine configuration by merging factory defaults,
// an optional plugify.yaml in the working directory, and PLUGIFY_* env
// vars, adapted from the viper layering idiom in the pack's one
// viper-using repo.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/plugify-dev/plugify/pkg/assembly"
)

// Defaults applied before any config file is loaded.
var Defaults = map[string]any{
	"extensions_dir":     "./extensions",
	"base_dir":           ".",
	"configs_dir":        "./configs",
	"data_dir":           "./data",
	"logs_dir":           "./logs",
	"cache_dir":          "./cache",
	"log.level":          "info",
	"log.pretty":         false,
	"load_flags":         []string{},
	"diag.enabled":       false,
	"diag.addr":          "127.0.0.1:9339",
	"housekeep.enabled":  false,
	"housekeep.cron_spec": "@every 1m",
}

// Options is the fully-decoded engine configuration.
type Options struct {
	ExtensionsDir string `mapstructure:"extensions_dir"`
	BaseDir       string `mapstructure:"base_dir"`
	ConfigsDir    string `mapstructure:"configs_dir"`
	DataDir       string `mapstructure:"data_dir"`
	LogsDir       string `mapstructure:"logs_dir"`
	CacheDir      string `mapstructure:"cache_dir"`

	Log LogOptions `mapstructure:"log"`

	LoadFlags []string `mapstructure:"load_flags"`

	Diag      DiagOptions      `mapstructure:"diag"`
	Housekeep HousekeepOptions `mapstructure:"housekeep"`
}

// LogOptions controls the default logger collaborator.
type LogOptions struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DiagOptions controls the optional read-only introspection HTTP server.
type DiagOptions struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// HousekeepOptions controls the optional cron-driven Update job.
type HousekeepOptions struct {
	Enabled  bool   `mapstructure:"enabled"`
	CronSpec string `mapstructure:"cron_spec"`
}

// Load merges Defaults, an optional explicitPath (or ./plugify.yaml if
// present), and PLUGIFY_* environment variables into an Options value.
func Load(explicitPath string) (*Options, error) {
	v := viper.New()

	for k, val := range Defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix("PLUGIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath := explicitPath
	if configPath == "" {
		if _, err := os.Stat("plugify.yaml"); err == nil {
			configPath = "plugify.yaml"
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	var opts Options
	if err := v.Unmarshal(&opts); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	for _, dir := range []*string{&opts.ExtensionsDir, &opts.BaseDir, &opts.ConfigsDir, &opts.DataDir, &opts.LogsDir, &opts.CacheDir} {
		if !filepath.IsAbs(*dir) {
			abs, err := filepath.Abs(*dir)
			if err == nil {
				*dir = abs
			}
		}
	}

	return &opts, nil
}

// ParseLoadFlags translates the configured flag-name list into an
// assembly.LoadFlag bitset.
func (o *Options) ParseLoadFlags() assembly.LoadFlag {
	var flags assembly.LoadFlag
	for _, name := range o.LoadFlags {
		switch strings.ToLower(name) {
		case "lazybinding":
			flags |= assembly.LazyBinding
		case "globalsymbols":
			flags |= assembly.GlobalSymbols
		case "noUnload", "nounload":
			flags |= assembly.NoUnload
		case "deepbind":
			flags |= assembly.DeepBind
		case "dataonly":
			flags |= assembly.DataOnly
		case "securesearch":
			flags |= assembly.SecureSearch
		}
	}
	return flags
}
