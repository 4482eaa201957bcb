package monitor

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/probe"
	"github.com/rileyhilliard/pingnodes/pkg/sshutil"
)

// DefaultResolveTimeout bounds each hostname lookup during validation.
const DefaultResolveTimeout = 3 * time.Second

// Resolver looks up hostnames. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Relay is the SSH host probes are run from, instead of this machine.
type Relay struct {
	Host string
	User string
}

func (r Relay) String() string {
	return r.User + "@" + r.Host
}

// Endpoint is one address to probe. Build it with NewEndpoint; the zero
// value is not valid.
type Endpoint struct {
	Address string
	Index   int
	Relay   *Relay
	family  probe.Family
}

// Family reports whether the endpoint is probed over IPv4 or IPv6. Only
// IPv6 literals are v6; hostnames are left to ping's default.
func (e Endpoint) Family() probe.Family {
	if e.family == 0 {
		return probe.FamilyV4
	}
	return e.family
}

// Validator checks endpoint addresses.
type Validator struct {
	Resolver Resolver
	Timeout  time.Duration
}

// NewEndpoint validates the address and relay and returns the endpoint.
// Errors are CONFIG errors.
func (v Validator) NewEndpoint(ctx context.Context, address string, index int, relay *Relay) (Endpoint, error) {
	address = strings.TrimSpace(address)
	family, err := v.checkAddress(ctx, address)
	if err != nil {
		return Endpoint{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Bad node address %q (entry %d)", address, index),
			"Use an IPv4 or IPv6 address, or a hostname that resolves.")
	}

	ep := Endpoint{Address: address, Index: index, family: family}
	if relay == nil {
		return ep, nil
	}

	host := strings.TrimSpace(relay.Host)
	user := strings.TrimSpace(relay.User)
	if host == "" || user == "" {
		return Endpoint{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Relay needs both a host and a user (got host %q, user %q)", host, user),
			"Pass --jumphost together with --jumpuser.")
	}
	if _, err := v.checkAddress(ctx, sshutil.ResolveHostname(host)); err != nil {
		return Endpoint{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Bad relay host %q", host),
			"Use an address, a resolvable hostname, or a Host alias from ~/.ssh/config.")
	}
	ep.Relay = &Relay{Host: host, User: user}
	return ep, nil
}

// NewEndpoint validates with the system resolver.
func NewEndpoint(ctx context.Context, address string, index int, relay *Relay) (Endpoint, error) {
	return Validator{}.NewEndpoint(ctx, address, index, relay)
}

func (v Validator) checkAddress(ctx context.Context, address string) (probe.Family, error) {
	if address == "" {
		return 0, fmt.Errorf("address is empty")
	}
	if ip, err := netip.ParseAddr(address); err == nil {
		if ip.Is4() || ip.Is4In6() {
			return probe.FamilyV4, nil
		}
		return probe.FamilyV6, nil
	}
	if !isHostname(address) {
		return 0, fmt.Errorf("not an IP address or hostname")
	}

	resolver := v.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultResolveTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := resolver.LookupHost(ctx, address)
	if err != nil {
		return 0, err
	}
	if len(addrs) == 0 {
		return 0, fmt.Errorf("%s has no addresses", address)
	}
	return probe.FamilyV4, nil
}

// isHostname checks RFC 1123 syntax.
func isHostname(s string) bool {
	s = strings.TrimSuffix(s, ".")
	if len(s) == 0 || len(s) > 253 {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if len(label) == 0 || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
				return false
			}
		}
	}
	return true
}
