package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/pingnodes/internal/config"
	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/ui"
	"github.com/rileyhilliard/pingnodes/pkg/sshutil"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Nodes          string // Node list file
	JumpHost       string // Relay host or ~/.ssh/config alias
	JumpUser       string
	Overwrite      bool // Overwrite existing config without asking
	NonInteractive bool // Skip prompts, use flags and env
	SkipProbe      bool // Don't test the jump host connection
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a " + config.ConfigFileName + " configuration",
	Long: `Create a pingnodes config file in the current directory.

Asks for the node list and an optional jump host, then tests the SSH
connection to the jump host before saving.

Environment variables fill in anything not given as a flag:
  PINGNODES_NODES, PINGNODES_JUMPHOST, PINGNODES_JUMPUSER,
  PINGNODES_NON_INTERACTIVE (or CI) to skip the prompts.

Examples:
  pingnodes init
  pingnodes init --nodes nodes.txt --jumphost bastion --jumpuser ops --non-interactive
  pingnodes init --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Init(initOpts)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initOpts.Nodes, "nodes", "", "node list file")
	initCmd.Flags().StringVar(&initOpts.JumpHost, "jumphost", "", "jump host to ping from")
	initCmd.Flags().StringVar(&initOpts.JumpUser, "jumpuser", "", "user on the jump host")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite an existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt")
	initCmd.Flags().BoolVar(&initOpts.SkipProbe, "skip-probe", false, "don't test the jump host connection")
}

// getInitDefaults reads init values from the environment.
func getInitDefaults() InitOptions {
	return InitOptions{
		Nodes:          os.Getenv("PINGNODES_NODES"),
		JumpHost:       os.Getenv("PINGNODES_JUMPHOST"),
		JumpUser:       os.Getenv("PINGNODES_JUMPUSER"),
		NonInteractive: os.Getenv("PINGNODES_NON_INTERACTIVE") != "" || os.Getenv("CI") != "",
	}
}

// mergeInitOptions fills empty flag values from the environment.
func mergeInitOptions(opts InitOptions) InitOptions {
	env := getInitDefaults()
	if opts.Nodes == "" {
		opts.Nodes = env.Nodes
	}
	if opts.JumpHost == "" {
		opts.JumpHost = env.JumpHost
	}
	if opts.JumpUser == "" {
		opts.JumpUser = env.JumpUser
	}
	if env.NonInteractive {
		opts.NonInteractive = true
	}
	return opts
}

// Init creates a new .pingnodes.yaml configuration file.
func Init(opts InitOptions) error {
	opts = mergeInitOptions(opts)
	configPath := filepath.Join(".", config.ConfigFileName)

	overwrite := opts.Overwrite
	if _, err := os.Stat(configPath); err == nil && !overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Nodes = opts.Nodes
	cfg.JumpHost = opts.JumpHost
	cfg.JumpUser = opts.JumpUser

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if cfg.HasRelay() && !opts.SkipProbe {
		if err := probeJumpHost(cfg); err != nil {
			if opts.NonInteractive {
				return err
			}
			fmt.Printf("\n%s %s\n\n", ui.SymbolFail, errors.Short(err))
			var saveAnyway bool
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().
						Title("Save config anyway? (You can fix the connection later)").
						Value(&saveAnyway),
				),
			)
			if formErr := form.Run(); formErr != nil || !saveAnyway {
				return err
			}
		}
	}

	if err := config.Write(configPath, cfg, true); err != nil {
		return err
	}

	fmt.Printf("%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Println("Next steps:")
	fmt.Println("  pingnodes          - Start pinging")
	fmt.Println("  pingnodes --plain  - Print status lines instead of the dashboard")
	return nil
}

// promptConfig asks for the values init writes. Prefilled fields keep
// their values as defaults.
func promptConfig(cfg *config.Config) error {
	interval := cfg.Interval.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Node list file").
				Description("One IPv4/IPv6 address or hostname per line, # for comments").
				Placeholder("nodes.txt").
				Value(&cfg.Nodes).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("node list file is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Ping interval").
				Placeholder("1s").
				Value(&interval).
				Validate(func(s string) error {
					d, err := time.ParseDuration(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("use a duration like 1s or 500ms")
					}
					if d < config.MinInterval {
						return fmt.Errorf("use at least %s", config.MinInterval)
					}
					return nil
				}),
			huh.NewInput().
				Title("Log directory").
				Value(&cfg.LogDir),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Jump host (optional)").
				Description("Ping from this host over SSH. Hostname, host:port, or ~/.ssh/config alias").
				Placeholder("leave empty to ping locally").
				Value(&cfg.JumpHost),
			huh.NewInput().
				Title("Jump host user").
				Description("Required with a jump host").
				Value(&cfg.JumpUser).
				Validate(func(s string) error {
					if strings.TrimSpace(cfg.JumpHost) != "" && strings.TrimSpace(s) == "" {
						return fmt.Errorf("the jump host needs a user")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --non-interactive")
	}

	cfg.Nodes = strings.TrimSpace(cfg.Nodes)
	cfg.JumpHost = strings.TrimSpace(cfg.JumpHost)
	cfg.JumpUser = strings.TrimSpace(cfg.JumpUser)
	cfg.Interval, _ = time.ParseDuration(strings.TrimSpace(interval))
	return nil
}

// probeJumpHost opens and closes one SSH connection to the jump host.
func probeJumpHost(cfg *config.Config) error {
	target := cfg.JumpUser + "@" + cfg.JumpHost
	fmt.Printf("Testing connection to %s...\n", target)

	sshutil.StrictHostKeyChecking = cfg.StrictHostKeyChecking
	client, err := sshutil.Dial(target, 10*time.Second)
	if err != nil {
		return err
	}
	return client.Close()
}
