package sshutil

import (
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Client wraps an SSH connection to a relay host.
type Client struct {
	*ssh.Client
	Host    string // The original host/alias used to connect
	Address string // The resolved address (host:port)

	// forwardAgent is cleared the first time the relay refuses forwarding.
	forwardAgent atomic.Bool
}

// StrictHostKeyChecking controls host key verification behavior.
// When true (default), host keys are verified against ~/.ssh/known_hosts.
var StrictHostKeyChecking = true

// Dial establishes an SSH connection to the specified host.
// The host can be:
//   - An SSH config alias (e.g., "jump")
//   - A hostname or IP (e.g., "192.168.1.100")
//   - A user@hostname (e.g., "ops@192.168.1.100")
//   - A hostname:port (e.g., "192.168.1.100:2222")
//
// Connection settings are resolved from ~/.ssh/config when available.
func Dial(host string, timeout time.Duration) (*Client, error) {
	settings := resolveSSHSettings(host)

	config, err := buildSSHConfig(settings, timeout)
	if err != nil {
		var pnErr *errors.Error
		if stderrors.As(err, &pnErr) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", host),
			"Check your keys are loaded: ssh-add -l")
	}

	address := settings.address()
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach relay '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	// Bound the handshake too; the deadline is cleared once the client is up.
	_ = conn.SetDeadline(time.Now().Add(timeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return nil, errors.New(errors.ErrSSH, hostKeyErr.Error(), hostKeyErr.Suggestion())
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with relay '%s' didn't go through", host),
			suggestionForHandshakeError(err))
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// ForwardAgent makes the local SSH agent available to commands run through
// this client, so the relay can authenticate onward with the same keys.
// Each exec session requests forwarding once this has succeeded. A relay
// that refuses the request still runs the command.
func (c *Client) ForwardAgent() error {
	ag := localAgent()
	if ag == nil {
		return errors.New(errors.ErrSSH,
			"No SSH agent to forward",
			"Start one and add your keys: eval $(ssh-agent) && ssh-add")
	}
	if err := agent.ForwardToAgent(c.Client, ag); err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't set up agent forwarding",
			"The relay may have AllowAgentForwarding disabled.")
	}
	c.forwardAgent.Store(true)
	return nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the original host/alias used to connect.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}

// sshSettings holds resolved SSH connection parameters.
type sshSettings struct {
	hostname     string
	port         string
	user         string
	identityFile string
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSSHSettings parses user@host:port and fills gaps from ~/.ssh/config.
// An explicit user in the host string wins over the config file.
func resolveSSHSettings(host string) *sshSettings {
	settings := &sshSettings{
		port: "22",
		user: currentUser(),
	}

	explicitUser := false
	if atIdx := strings.Index(host, "@"); atIdx != -1 {
		settings.user = host[:atIdx]
		host = host[atIdx+1:]
		explicitUser = true
	}
	if !explicitUser {
		if testUser := os.Getenv("PINGNODES_TEST_SSH_USER"); testUser != "" {
			settings.user = testUser
		}
	}

	host, port := splitPort(host)
	if port != "" {
		settings.port = port
	}
	settings.hostname = host

	entry, ok := lookupHost(host)
	if !ok {
		return settings
	}
	if entry.Hostname != "" {
		settings.hostname = entry.Hostname
	}
	if entry.Port != "" && port == "" {
		settings.port = entry.Port
	}
	if entry.User != "" && !explicitUser {
		settings.user = entry.User
	}
	if entry.IdentityFile != "" {
		settings.identityFile = expandPath(entry.IdentityFile)
	}
	return settings
}

// splitPort separates a trailing numeric port. IPv6 literals without
// brackets are left alone.
func splitPort(host string) (string, string) {
	if h, p, err := net.SplitHostPort(host); err == nil {
		return h, p
	}
	return host, ""
}

// buildSSHConfig creates an SSH client config with agent and key file auth.
func buildSSHConfig(settings *sshSettings, timeout time.Duration) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod
	var encrypted []string

	tryKeyFile := func(keyPath string) {
		keyAuth, err := keyFileAuth(keyPath)
		if err != nil {
			var encErr *EncryptedKeyError
			if stderrors.As(err, &encErr) {
				encrypted = append(encrypted, keyPath)
			}
			return
		}
		authMethods = append(authMethods, keyAuth)
	}

	if ag := localAgent(); ag != nil {
		if signers, err := ag.Signers(); err == nil && len(signers) > 0 {
			authMethods = append(authMethods, ssh.PublicKeysCallback(ag.Signers))
		}
	}

	if testKey := os.Getenv("PINGNODES_TEST_SSH_KEY"); testKey != "" {
		tryKeyFile(testKey)
	}
	if settings.identityFile != "" {
		tryKeyFile(settings.identityFile)
	}
	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(homeDir(), ".ssh", name)
		if keyPath != settings.identityFile {
			tryKeyFile(keyPath)
		}
	}

	if len(authMethods) == 0 {
		if len(encrypted) > 0 {
			return nil, errors.New(errors.ErrSSH,
				fmt.Sprintf("Found SSH key(s) but they're encrypted: %s", strings.Join(encrypted, ", ")),
				"Add them to the agent: ssh-add "+strings.Join(encrypted, " "))
		}
		return nil, errors.New(errors.ErrSSH,
			"No SSH auth methods available",
			"Check your keys are loaded: ssh-add -l")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // only when strict checking is turned off
	if StrictHostKeyChecking {
		cb, err := createHostKeyCallback(filepath.Join(homeDir(), ".ssh", "known_hosts"))
		if err != nil {
			return nil, fmt.Errorf("failed to load known_hosts: %w", err)
		}
		hostKeyCallback = cb
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ssh.ClientConfig{
		User:            settings.user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}, nil
}

// The agent connection is shared by every relay connection in the process.
var (
	agentConn     net.Conn
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// localAgent returns a client for the agent behind SSH_AUTH_SOCK, or nil.
func localAgent() agent.ExtendedAgent {
	agentConnOnce.Do(func() {
		socket := os.Getenv("SSH_AUTH_SOCK")
		if socket == "" {
			return
		}
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})
	return agentClient
}

// CloseAgent closes the SSH agent connection if one is open.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

// keyFileAuth returns an auth method using a private key file.
// Returns EncryptedKeyError if the key requires a passphrase.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) || strings.Contains(string(key), "ENCRYPTED") {
			return nil, &EncryptedKeyError{Path: keyPath}
		}
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return "Is SSH running on the relay? Try: ssh <relay>"
	case strings.Contains(errStr, "no route to host"), strings.Contains(errStr, "network is unreachable"):
		return "Can't route to the relay. Check your network connection."
	case strings.Contains(errStr, "timeout"):
		return "Connection timed out. The relay might be offline or behind a firewall."
	}
	return "Make sure the relay is reachable: ssh <relay>"
}

func suggestionForHandshakeError(err error) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "unable to authenticate"), strings.Contains(errStr, "no supported methods"):
		return "Auth failed. Check --jumpuser and that your keys are loaded: ssh-add -l"
	case strings.Contains(errStr, "host key"):
		return "Host key issue. Connect once by hand first: ssh <relay>"
	}
	return "Something went wrong during SSH setup. Try: ssh <relay>"
}

// EncryptedKeyError is returned when an SSH key requires a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// HostKeyMismatchError provides helpful context when known_hosts verification fails.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns actionable steps to fix the host key mismatch.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return fmt.Sprintf("The relay's host key doesn't match %s.\n  Remove the old entry: ssh-keygen -R %s", e.KnownHosts, host)
}

// createHostKeyCallback wraps the knownhosts callback to provide better error messages.
func createHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(knownHostsPath), 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if err != nil && stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
			return &HostKeyMismatchError{
				Hostname:     hostname,
				ReceivedType: key.Type(),
				KnownHosts:   knownHostsPath,
			}
		}
		return err
	}, nil
}
