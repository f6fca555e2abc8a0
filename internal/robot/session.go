package robot

import (
	"net"
	"time"

	"robotctl/internal/protocol"
)

// State is a coarse phase of a session's lifecycle, mirrored out to the
// admin/observability surface so it can be watched without instrumenting
// the protocol logic itself.
type State int

const (
	StateNew State = iota
	StateAuthenticating
	StateLocatingPosition
	StateLocatingHeading
	StateNavigating
	StateScanning
	StateLoggedOut
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateLocatingPosition:
		return "locating_position"
	case StateLocatingHeading:
		return "locating_heading"
	case StateNavigating:
		return "navigating"
	case StateScanning:
		return "scanning"
	case StateLoggedOut:
		return "logged_out"
	case StateFailed:
		return "failed"
	default:
		return "new"
	}
}

// Config carries the protocol constants a session needs: hash keys,
// timeouts, and the target cell. All have spec defaults but are sourced
// from the process's live configuration so the admin surface can tune them
// without a restart.
type Config struct {
	Keys            HashKeys
	Target          Position
	NormalTimeout   time.Duration
	RechargeTimeout time.Duration
}

// DefaultConfig returns the spec's default constants.
func DefaultConfig() Config {
	return Config{
		Keys:            HashKeys{Server: 54621, Client: 45328},
		Target:          Position{X: -2, Y: 2},
		NormalTimeout:   1 * time.Second,
		RechargeTimeout: 5 * time.Second,
	}
}

// Hooks lets a caller (the acceptor, the session registry) observe a
// session's progress without the protocol logic depending on them
// directly. Every field is optional.
type Hooks struct {
	OnStateChange func(State)
	OnPosition    func(Position)
	OnHeading     func(Heading)
	OnRecharge    func()
	OnStuckRetry  func()
	OnUsername    func(string)
}

// Outcome is the terminal result of a session, reported once Run returns.
type Outcome struct {
	State   State
	Secret  string
	Err     error
	ErrKind protocol.Kind
}

// Session runs the full per-connection state machine: handshake, position
// and heading discovery, navigation to the target, and the serpentine
// scan, ending in logout or a protocol/IO failure.
type Session struct {
	cfg   Config
	hooks Hooks
}

// NewSession constructs a Session with the given configuration and hooks.
func NewSession(cfg Config, hooks Hooks) *Session {
	return &Session{cfg: cfg, hooks: hooks}
}

func (s *Session) setState(state State) {
	if s.hooks.OnStateChange != nil {
		s.hooks.OnStateChange(state)
	}
}

// Run drives conn through the full protocol to completion and returns the
// terminal Outcome. It never panics on protocol or IO errors; those are
// reported in Outcome.Err.
func (s *Session) Run(conn net.Conn) Outcome {
	codec := protocol.NewCodec(conn, s.cfg.NormalTimeout)
	link := protocol.NewLink(codec, s.cfg.NormalTimeout, s.cfg.RechargeTimeout)
	link.OnRecharge = s.hooks.OnRecharge

	s.setState(StateAuthenticating)
	username, err := Authenticate(link, s.cfg.Keys)
	if err != nil {
		return s.fail(err)
	}
	if s.hooks.OnUsername != nil {
		s.hooks.OnUsername(username)
	}

	nav := NewNavigator(link)
	nav.OnPosition = s.hooks.OnPosition
	nav.OnStuckRetry = s.hooks.OnStuckRetry

	s.setState(StateLocatingPosition)
	if err := nav.LearnPosition(); err != nil {
		return s.fail(err)
	}

	if nav.Position != s.cfg.Target {
		s.setState(StateLocatingHeading)
		if err := nav.LearnHeading(); err != nil {
			return s.fail(err)
		}
		if s.hooks.OnHeading != nil {
			s.hooks.OnHeading(nav.Heading)
		}

		s.setState(StateNavigating)
		if err := nav.NavigateTo(s.cfg.Target); err != nil {
			return s.fail(err)
		}
	}

	s.setState(StateScanning)
	scanner := NewScanner(nav, s.cfg.Target)
	secret, err := scanner.Run()
	if err != nil {
		return s.fail(err)
	}

	if err := nav.Logout(); err != nil {
		return s.fail(err)
	}
	s.setState(StateLoggedOut)
	return Outcome{State: StateLoggedOut, Secret: secret}
}

func (s *Session) fail(err error) Outcome {
	s.setState(StateFailed)
	kind := protocol.KindIOError
	if pe, ok := err.(*protocol.Error); ok {
		kind = pe.Kind
	}
	return Outcome{State: StateFailed, Err: err, ErrKind: kind}
}
