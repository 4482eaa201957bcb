package config

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
)

const (
	// MinInterval keeps a fleet from flooding its targets.
	MinInterval = 100 * time.Millisecond
	// MaxHistoryWidth bounds the glyph window.
	MaxHistoryWidth = 1000
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig, "No config loaded", "")
	}

	if cfg.Nodes == "" {
		return errors.New(errors.ErrConfig,
			"No node list given",
			"Pass --nodes FILE or set 'nodes' in "+ConfigFileName)
	}

	if cfg.JumpHost != "" && cfg.JumpUser == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Jump host %s has no user", cfg.JumpHost),
			"Set --jumpuser too. The relay needs both a host and a user.")
	}
	if cfg.JumpUser != "" && cfg.JumpHost == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Jump user %s has no host", cfg.JumpUser),
			"Set --jumphost too, or drop --jumpuser to ping locally.")
	}

	if cfg.Interval < MinInterval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Interval %s is too short", cfg.Interval),
			fmt.Sprintf("Use at least %s.", MinInterval))
	}

	if cfg.ProbeTimeout <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Probe timeout %s must be positive", cfg.ProbeTimeout),
			"Something like 1000ms works for most networks.")
	}

	if cfg.HistoryWidth < 1 || cfg.HistoryWidth > MaxHistoryWidth {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("history_width %d is out of range", cfg.HistoryWidth),
			fmt.Sprintf("Pick a value between 1 and %d.", MaxHistoryWidth))
	}

	if cfg.LogDir == "" {
		return errors.New(errors.ErrConfig,
			"log_dir is empty",
			"Use '.' to write logs to the current directory.")
	}

	return nil
}
