package probe

import (
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/util"
)

// Platform represents the operating system a probe runs on.
type Platform string

const (
	// PlatformLinux indicates a Linux host.
	PlatformLinux Platform = "linux"
	// PlatformDarwin indicates a macOS host.
	PlatformDarwin Platform = "darwin"
	// PlatformWindows indicates a Windows host.
	PlatformWindows Platform = "windows"
	// PlatformUnknown indicates an unknown platform. Commands fall back to
	// the Linux flavor.
	PlatformUnknown Platform = "unknown"
)

// Family is the address family of an endpoint.
type Family int

const (
	FamilyV4 Family = 4
	FamilyV6 Family = 6
)

func (f Family) String() string {
	if f == FamilyV6 {
		return "v6"
	}
	return "v4"
}

// DefaultTimeout is how long a single probe waits for its reply.
const DefaultTimeout = 1000 * time.Millisecond

// PlatformDetectCommand returns the command to detect the platform type.
func PlatformDetectCommand() string {
	return "uname -s"
}

// ParsePlatform converts uname output to a Platform value.
func ParsePlatform(unameOutput string) Platform {
	name := strings.TrimSpace(unameOutput)
	switch {
	case name == "Linux":
		return PlatformLinux
	case name == "Darwin":
		return PlatformDarwin
	case strings.HasPrefix(name, "MINGW"), strings.HasPrefix(name, "MSYS"),
		strings.HasPrefix(name, "CYGWIN"), strings.HasPrefix(name, "Windows"):
		return PlatformWindows
	default:
		return PlatformUnknown
	}
}

// LocalPlatform is the platform of the machine pingnodes runs on.
func LocalPlatform() Platform {
	switch runtime.GOOS {
	case "linux":
		return PlatformLinux
	case "darwin":
		return PlatformDarwin
	case "windows":
		return PlatformWindows
	default:
		return PlatformUnknown
	}
}

// Command builds a single-packet ping for one endpoint.
type Command struct {
	Platform Platform
	Family   Family
	Address  string
	Timeout  time.Duration
}

// Argv returns the command as an argument vector for local execution.
func (c Command) Argv() []string {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ms := strconv.FormatInt(timeout.Milliseconds(), 10)

	switch c.Platform {
	case PlatformDarwin:
		if c.Family == FamilyV6 {
			// ping6 has no per-reply timeout on macOS; the caller's
			// context deadline bounds it instead.
			return []string{"ping6", "-c", "1", c.Address}
		}
		return []string{"ping", "-c", "1", "-W", ms, c.Address}
	case PlatformWindows:
		argv := []string{"ping", "-n", "1", "-w", ms}
		if c.Family == FamilyV6 {
			argv = append(argv, "-6")
		}
		return append(argv, c.Address)
	default:
		secs := strconv.FormatInt(int64(math.Ceil(timeout.Seconds())), 10)
		argv := []string{"ping"}
		if c.Family == FamilyV6 {
			argv = append(argv, "-6")
		}
		return append(argv, "-c", "1", "-W", secs, c.Address)
	}
}

// String returns the command as a shell command line for remote execution.
func (c Command) String() string {
	return util.ShellJoin(c.Argv())
}
