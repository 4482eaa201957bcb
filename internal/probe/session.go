package probe

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/pingnodes/internal/errors"
	"github.com/rileyhilliard/pingnodes/internal/logger"
	"github.com/rileyhilliard/pingnodes/pkg/sshutil"
	"golang.org/x/time/rate"
)

// Redial backoff bounds for a broken relay session.
const (
	MinRedialBackoff = time.Second
	MaxRedialBackoff = 30 * time.Second
)

// DefaultDialTimeout bounds connecting to the relay.
const DefaultDialTimeout = 10 * time.Second

// ErrSessionDown is returned by Session.Exec while the relay connection is
// broken and no redial was due.
var ErrSessionDown = stderrors.New("relay session is down")

// DialFunc connects to a relay. target is "user@host".
type DialFunc func(target string, timeout time.Duration) (sshutil.SSHClient, error)

// DialRelay is the DialFunc used outside tests. It connects with sshutil and
// sets up agent forwarding. Without a local agent probing still works, so
// that only produces a warning; a relay that refuses forwarding is handled
// per command by the client.
func DialRelay(target string, timeout time.Duration) (sshutil.SSHClient, error) {
	client, err := sshutil.Dial(target, timeout)
	if err != nil {
		return nil, err
	}
	if err := client.ForwardAgent(); err != nil {
		logger.Default().Warn("relay %s: %s", target, errors.Short(err))
	}
	return client, nil
}

// Session is a persistent SSH connection to a relay, shared by every probe
// of one monitor. Each command runs on its own channel. When the connection
// breaks the session redials on later calls, no more often than the current
// backoff allows.
type Session struct {
	mu       sync.Mutex
	target   string
	dial     DialFunc
	timeout  time.Duration
	client   sshutil.SSHClient
	platform Platform
	opened   bool

	limiter *rate.Limiter
	backoff time.Duration
	now     func() time.Time
	log     logger.Logger
}

// NewSession prepares a session to user@host. Nothing is dialed until Open.
func NewSession(host, user string, dial DialFunc, log logger.Logger) *Session {
	if dial == nil {
		dial = DialRelay
	}
	if log == nil {
		log = logger.Default()
	}
	return &Session{
		target:  user + "@" + host,
		dial:    dial,
		timeout: DefaultDialTimeout,
		backoff: MinRedialBackoff,
		limiter: rate.NewLimiter(rate.Every(MinRedialBackoff), 1),
		now:     time.Now,
		log:     log,
	}
}

// Target returns "user@host".
func (s *Session) Target() string {
	return s.target
}

// Open connects and detects the relay's platform. It is the only place a
// connection failure is returned to the caller.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil
	}
	if err := s.connect(ctx); err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't open relay session to %s", s.target),
			"Check that `ssh "+s.target+"` works from this machine.")
	}
	s.opened = true
	return nil
}

// connect must be called with s.mu held.
func (s *Session) connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	client, err := s.dial(s.target, s.timeout)
	if err != nil {
		return err
	}

	detectCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	out, _, _, err := client.ExecContext(detectCtx, PlatformDetectCommand())
	if err != nil {
		_ = client.Close()
		return err
	}

	s.client = client
	s.platform = ParsePlatform(string(out))
	if s.platform == PlatformUnknown {
		s.log.Warn("relay %s: unrecognized platform %q, using linux ping flags", s.target, string(out))
	}
	return nil
}

// Platform reports the relay's platform as detected by the last connect.
func (s *Session) Platform() Platform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform
}

// Exec runs cmd on the relay. If the session is broken it first tries to
// redial when the backoff allows, and returns ErrSessionDown otherwise.
// Transport errors mark the session broken; ctx errors don't.
func (s *Session) Exec(ctx context.Context, cmd string) (stdout []byte, exitCode int, err error) {
	client, err := s.acquire(ctx)
	if err != nil {
		return nil, -1, err
	}

	stdout, _, exitCode, err = client.ExecContext(ctx, cmd)
	if err != nil && ctx.Err() == nil {
		s.markBroken(client, err)
	}
	return stdout, exitCode, err
}

func (s *Session) acquire(ctx context.Context) (sshutil.SSHClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	if !s.opened {
		return nil, errors.New(errors.ErrSSH, "Relay session used before Open", "")
	}
	if !s.limiter.AllowN(s.now(), 1) {
		return nil, ErrSessionDown
	}

	if err := s.connect(ctx); err != nil {
		s.backoff *= 2
		if s.backoff > MaxRedialBackoff {
			s.backoff = MaxRedialBackoff
		}
		s.limiter.SetLimitAt(s.now(), rate.Every(s.backoff))
		s.log.Debug("relay %s: redial failed, next attempt in %s: %s", s.target, s.backoff, errors.Short(err))
		return nil, err
	}

	s.backoff = MinRedialBackoff
	s.limiter.SetLimitAt(s.now(), rate.Every(s.backoff))
	s.log.Info("relay %s: session re-established", s.target)
	return s.client, nil
}

// MarkBroken drops the current connection so the next Exec redials.
func (s *Session) MarkBroken(cause error) {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client != nil {
		s.markBroken(client, cause)
	}
}

func (s *Session) markBroken(client sshutil.SSHClient, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may already have replaced it.
	if s.client != client {
		return
	}
	_ = client.Close()
	s.client = nil
	s.log.Warn("relay %s: session broken: %s", s.target, errors.Short(cause))
}

// Close closes the connection. The session can't be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.opened = false
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}
