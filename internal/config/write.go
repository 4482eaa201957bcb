package config

import (
	"os"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"gopkg.in/yaml.v3"
)

const fileHeader = "# pingnodes configuration. Flags and PINGNODES_* variables override these.\n"

// Marshal renders cfg as YAML with durations in their short form.
func Marshal(cfg *Config) ([]byte, error) {
	// time.Duration marshals as nanoseconds; write strings viper can read back.
	out := struct {
		Nodes                 string `yaml:"nodes"`
		JumpHost              string `yaml:"jumphost,omitempty"`
		JumpUser              string `yaml:"jumpuser,omitempty"`
		Interval              string `yaml:"interval"`
		ProbeTimeout          string `yaml:"probe_timeout"`
		LogDir                string `yaml:"log_dir"`
		HistoryWidth          int    `yaml:"history_width"`
		StrictHostKeyChecking bool   `yaml:"strict_host_key_checking"`
		Plain                 bool   `yaml:"plain"`
	}{
		Nodes:                 cfg.Nodes,
		JumpHost:              cfg.JumpHost,
		JumpUser:              cfg.JumpUser,
		Interval:              cfg.Interval.String(),
		ProbeTimeout:          cfg.ProbeTimeout.String(),
		LogDir:                cfg.LogDir,
		HistoryWidth:          cfg.HistoryWidth,
		StrictHostKeyChecking: cfg.StrictHostKeyChecking,
		Plain:                 cfg.Plain,
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return nil, err
	}
	return append([]byte(fileHeader), data...), nil
}

// Write saves cfg to path. An existing file is only replaced when overwrite
// is set.
func Write(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				path+" already exists",
				"Use --force to overwrite it")
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't encode config", "")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+path,
			"Check you have write access to the directory")
	}
	return nil
}
