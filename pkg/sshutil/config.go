package sshutil

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// SSHHostEntry is the subset of an ~/.ssh/config Host block a relay needs.
type SSHHostEntry struct {
	Alias        string
	Hostname     string
	User         string
	Port         string
	IdentityFile string
}

// ConfigPath is the SSH config consulted for relay aliases.
// Tests point it at a temp file.
var ConfigPath = filepath.Join(homeDir(), ".ssh", "config")

// ResolveHostname returns the address a relay string will actually dial,
// without the user and port parts. An SSH config alias resolves to its
// HostName; anything else comes back as given.
func ResolveHostname(host string) string {
	if atIdx := strings.Index(host, "@"); atIdx != -1 {
		host = host[atIdx+1:]
	}
	host, _ = splitPort(host)
	if entry, ok := lookupHost(host); ok && entry.Hostname != "" {
		return entry.Hostname
	}
	return host
}

// LookupHostFile reads the Host block for alias from the given config file.
// Wildcard blocks don't count as a match.
func LookupHostFile(configPath, alias string) (SSHHostEntry, bool) {
	content, err := preprocessSSHConfig(configPath)
	if err != nil {
		return SSHHostEntry{}, false
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return SSHHostEntry{}, false
	}

	found := false
	for _, h := range cfg.Hosts {
		for _, pattern := range h.Patterns {
			if pattern.String() == alias {
				found = true
			}
		}
	}
	if !found {
		return SSHHostEntry{}, false
	}

	entry := SSHHostEntry{Alias: alias}
	entry.Hostname, _ = cfg.Get(alias, "HostName")
	entry.User, _ = cfg.Get(alias, "User")
	entry.Port, _ = cfg.Get(alias, "Port")
	entry.IdentityFile, _ = cfg.Get(alias, "IdentityFile")
	return entry, true
}

func lookupHost(alias string) (SSHHostEntry, bool) {
	return LookupHostFile(ConfigPath, alias)
}

// preprocessSSHConfig returns the config up to the first Match directive,
// which kevinburke/ssh_config can't parse.
func preprocessSSHConfig(configPath string) ([]byte, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			break
		}
		result = append(result, line)
	}
	return []byte(strings.Join(result, "\n")), nil
}
