package config

import "time"

// Config represents the .pingnodes.yaml configuration file. Every key can
// also come from a flag or a PINGNODES_ environment variable.
type Config struct {
	// Nodes is the node list file, one address per line.
	Nodes string `yaml:"nodes" mapstructure:"nodes"`

	// JumpHost and JumpUser route every probe through an SSH relay.
	// Both or neither must be set. JumpHost may be a Host alias from
	// ~/.ssh/config.
	JumpHost string `yaml:"jumphost,omitempty" mapstructure:"jumphost"`
	JumpUser string `yaml:"jumpuser,omitempty" mapstructure:"jumpuser"`

	// Interval is the pause between probes of one endpoint.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// ProbeTimeout bounds one echo request.
	ProbeTimeout time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`

	// LogDir receives one log file per endpoint per run.
	LogDir string `yaml:"log_dir" mapstructure:"log_dir"`

	// HistoryWidth is the number of outcomes kept for the glyph window.
	HistoryWidth int `yaml:"history_width" mapstructure:"history_width"`

	StrictHostKeyChecking bool `yaml:"strict_host_key_checking" mapstructure:"strict_host_key_checking"`

	// Plain prints raw status lines instead of the full-screen dashboard.
	Plain bool `yaml:"plain" mapstructure:"plain"`
}

// HasRelay reports whether probes go through a jump host.
func (c *Config) HasRelay() bool {
	return c.JumpHost != "" || c.JumpUser != ""
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:              time.Second,
		ProbeTimeout:          1000 * time.Millisecond,
		LogDir:                ".",
		HistoryWidth:          60,
		StrictHostKeyChecking: true,
	}
}
