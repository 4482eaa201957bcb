package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".pingnodes.yaml"
	// EnvPrefix prefixes environment overrides, e.g. PINGNODES_JUMPHOST.
	EnvPrefix = "PINGNODES"
)

// FlagKeys maps CLI flag names to config keys where they differ.
var FlagKeys = map[string]string{
	"nodes":    "nodes",
	"jumphost": "jumphost",
	"jumpuser": "jumpuser",
	"interval": "interval",
	"timeout":  "probe_timeout",
	"log-dir":  "log_dir",
	"plain":    "plain",
}

// Load builds the effective config. Precedence, highest first: flags the
// user set, PINGNODES_* environment variables, the config file at path (if
// any), defaults. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Couldn't bind flag --"+name, "")
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'pingnodes init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file:
// 1. Explicit path (from --config flag)
// 2. .pingnodes.yaml in the current directory
//
// Returns an empty string if there is none.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	local := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	return "", nil
}

func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your flags and environment"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the values in "+where+" (durations look like 1s or 500ms)")
	}

	cfg.Nodes = ExpandTilde(cfg.Nodes)
	cfg.LogDir = ExpandTilde(cfg.LogDir)
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it on Unmarshal.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("nodes", d.Nodes)
	v.SetDefault("jumphost", d.JumpHost)
	v.SetDefault("jumpuser", d.JumpUser)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("probe_timeout", d.ProbeTimeout)
	v.SetDefault("log_dir", d.LogDir)
	v.SetDefault("history_width", d.HistoryWidth)
	v.SetDefault("strict_host_key_checking", d.StrictHostKeyChecking)
	v.SetDefault("plain", d.Plain)
}
