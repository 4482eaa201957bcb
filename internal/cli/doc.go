// Package cli implements the pingnodes command-line interface.
//
// The root command is the ping run itself; subcommands cover setup:
//
//	pingnodes --nodes FILE [--jumphost H --jumpuser U]  - Ping every node
//	pingnodes init                                      - Create .pingnodes.yaml
//	pingnodes version                                   - Build information
//	pingnodes completion SHELL                          - Shell completion
//
// # Configuration
//
// Root flags are bound into viper by config.Load, so every flag can also
// come from a PINGNODES_* environment variable or the config file found by
// config.Find. Flags the user sets win, then the environment, then the file.
//
// # Run
//
// Run validates the config and every node address before anything starts,
// so configuration mistakes exit with status 1 and leave no log files.
// It then runs the fleet and the display side by side; quitting the
// dashboard or an interrupt stops both.
package cli
