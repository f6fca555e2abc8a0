package acceptor

import (
	"errors"
	"net"

	"go.uber.org/zap"

	"robotctl/internal/registry"
	"robotctl/internal/robot"
)

// DashboardSink receives a notification every time a session's Record
// changes, for the admin websocket feed to fan out. Implementations must
// not block; Acceptor calls it synchronously from the session's own
// goroutine.
type DashboardSink interface {
	Publish(eventType string, rec registry.Record)
}

// Acceptor owns the TCP listener and spawns one goroutine per accepted
// connection, each running an independent robot.Session. This is the
// goroutine-per-connection replacement for the original's fork-per-
// connection isolation.
type Acceptor struct {
	listener   net.Listener
	sessionCfg func() robot.Config
	registry   *registry.Registry
	sink       DashboardSink
	log        *zap.SugaredLogger
}

// New constructs an Acceptor bound to listener. sessionCfg is called once
// per accepted connection, so live admin config changes apply to every new
// session without restarting the listener. sink may be nil if no dashboard
// feed is wired up.
func New(listener net.Listener, sessionCfg func() robot.Config, reg *registry.Registry, sink DashboardSink, log *zap.SugaredLogger) *Acceptor {
	return &Acceptor{listener: listener, sessionCfg: sessionCfg, registry: reg, sink: sink, log: log}
}

// Serve accepts connections until the listener is closed, running each on
// its own goroutine. It returns nil on a graceful Close, or the first
// unexpected accept error otherwise.
func (a *Acceptor) Serve() error {
	for {
		conn, err := a.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go a.handle(conn)
	}
}

// Close stops accepting new connections. It does not close connections
// already handed to a session and does not wait for them; such a session
// ends on its own or when the process exits.
func (a *Acceptor) Close() error {
	return a.listener.Close()
}

func (a *Acceptor) handle(conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	id, rec := a.registry.Begin(remote)
	sessionLog := a.log.With("session", id, "remote", remote)
	sessionLog.Info("accepted connection")
	a.publish("connected", a.registry.Snapshot(rec))

	hooks := robot.Hooks{
		OnStateChange: func(state robot.State) {
			snap := a.registry.SetState(rec, state.String())
			sessionLog.Debugw("state transition", "state", state.String())
			a.publish("state", snap)
		},
		OnPosition: func(pos robot.Position) {
			snap := a.registry.SetPosition(rec, registry.Position{X: pos.X, Y: pos.Y})
			a.publish("position", snap)
		},
		OnHeading: func(heading robot.Heading) {
			a.registry.SetHeading(rec, heading.String())
		},
		OnRecharge: func() {
			a.registry.Metrics().RechargesObserved.Add(1)
			sessionLog.Debug("robot entered recharging sub-protocol")
		},
		OnStuckRetry: func() {
			sessionLog.Debug("move reported no progress, retrying")
		},
		OnUsername: func(username string) {
			a.registry.SetUsername(rec, username)
		},
	}

	session := robot.NewSession(a.sessionCfg(), hooks)
	outcome := session.Run(conn)
	a.registry.End(id, outcome)

	if outcome.Err != nil {
		sessionLog.Warnw("session terminated", "kind", outcome.ErrKind.String(), "err", outcome.Err)
	} else {
		sessionLog.Info("session completed, secret delivered")
	}
	a.publish("terminated", a.registry.Snapshot(rec))
}

func (a *Acceptor) publish(eventType string, rec registry.Record) {
	if a.sink == nil {
		return
	}
	a.sink.Publish(eventType, rec)
}
