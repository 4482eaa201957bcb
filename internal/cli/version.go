package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/rileyhilliard/pingnodes/internal/probe"
	"github.com/spf13/cobra"
)

// Set via ldflags by the release build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and local ping commands",
	Long: `Print the pingnodes build, then the ping command line it runs for each
address family on this machine. Relayed pings use the relay's own flavor,
detected when the session opens.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, version)
			return
		}
		writeVersion(out, probe.LocalPlatform())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

func writeVersion(w io.Writer, platform probe.Platform) {
	fmt.Fprintf(w, "pingnodes %s (%s, built %s)\n", displayVersion(version), commit, date)
	fmt.Fprintf(w, "%s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	for _, family := range []probe.Family{probe.FamilyV4, probe.FamilyV6} {
		cmd := probe.Command{Platform: platform, Family: family, Address: "ADDRESS", Timeout: probe.DefaultTimeout}
		fmt.Fprintf(w, "ping %s: %s\n", family, cmd)
	}
}

// displayVersion adds a "v" to release versions. Dev builds stay as-is.
func displayVersion(v string) string {
	if v == "" || v == "dev" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// SetVersionInfo records the build stamp passed in from main.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}
