package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rileyhilliard/pingnodes/internal/config"
	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/spf13/cobra"
)

// Global flags
var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pingnodes",
	Short: "Ping many nodes at once, locally or through a jump host",
	Long: `Ping every node in a list once per interval and show live statistics.

Each node gets its own ping loop and its own log file. With --jumphost and
--jumpuser the pings run on the jump host over SSH instead of locally.

Examples:
  pingnodes --nodes nodes.txt
  pingnodes --nodes nodes.txt --jumphost bastion --jumpuser ops
  pingnodes --nodes nodes.txt --interval 5s --log-dir ~/pinglogs --plain`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Find(cfgFile)
		if err != nil {
			return err
		}
		cfg, err := config.Load(path, cmd.Flags())
		if err != nil {
			return err
		}
		return Run(cmd.Context(), cfg, RunOptions{})
	},
}

func init() {
	d := config.DefaultConfig()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.ConfigFileName+")")

	flags := rootCmd.Flags()
	flags.String("nodes", "", "file with one node address per line")
	flags.String("jumphost", "", "SSH host to ping from (host, host:port, or ~/.ssh/config alias)")
	flags.String("jumpuser", "", "user on the jump host")
	flags.Duration("interval", d.Interval, "pause between pings of one node")
	flags.Duration("timeout", d.ProbeTimeout, "how long one ping waits for a reply")
	flags.String("log-dir", d.LogDir, "directory for the per-node log files")
	flags.Bool("plain", d.Plain, "print status lines instead of the dashboard")

	_ = rootCmd.MarkFlagFilename("nodes")
	_ = rootCmd.MarkFlagDirname("log-dir")
	_ = rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Execute runs the root command. Interrupts cancel the run's context so
// monitors stop and log files are closed before exit.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}

	if isUnknownCommandError(err) {
		msg := "Unrecognized command line"
		if name := extractUnknownCommand(err); name != "" {
			msg = fmt.Sprintf("Unknown command %q", name)
		}
		err = errors.WrapWithCode(err, errors.ErrConfig, msg,
			"Run 'pingnodes --help' to see what's available.")
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls foo out of `unknown command "foo" for "pingnodes"`.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.IndexByte(msg, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(msg[start+1:], '"')
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}
