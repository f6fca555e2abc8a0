package registry

import (
	"sync/atomic"

	"robotctl/internal/protocol"
)

// Metrics holds process-lifetime counters for the outcomes the protocol
// core can produce. Every counter except SessionsActive is monotonic
// non-decreasing and only a process restart resets it; SessionsActive is a
// gauge that Registry.End decrements when a session terminates.
type Metrics struct {
	SessionsTotal  atomic.Int64
	SessionsActive atomic.Int64

	AuthFailures atomic.Int64
	SyntaxErrors atomic.Int64
	LogicErrors  atomic.Int64
	Timeouts     atomic.Int64
	IOErrors     atomic.Int64
	NotFound     atomic.Int64

	SecretsFound      atomic.Int64
	RechargesObserved atomic.Int64
}

// Snapshot is a read-only, JSON-friendly view of Metrics at a point in
// time.
type Snapshot struct {
	SessionsTotal  int64 `json:"sessions_total"`
	SessionsActive int64 `json:"sessions_active"`

	AuthFailures int64 `json:"auth_failures"`
	SyntaxErrors int64 `json:"syntax_errors"`
	LogicErrors  int64 `json:"logic_errors"`
	Timeouts     int64 `json:"timeouts"`
	IOErrors     int64 `json:"io_errors"`
	NotFound     int64 `json:"not_found"`

	SecretsFound      int64 `json:"secrets_found"`
	RechargesObserved int64 `json:"recharges_observed"`
}

// Snapshot returns a copy of the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		SessionsTotal:     m.SessionsTotal.Load(),
		SessionsActive:    m.SessionsActive.Load(),
		AuthFailures:      m.AuthFailures.Load(),
		SyntaxErrors:      m.SyntaxErrors.Load(),
		LogicErrors:       m.LogicErrors.Load(),
		Timeouts:          m.Timeouts.Load(),
		IOErrors:          m.IOErrors.Load(),
		NotFound:          m.NotFound.Load(),
		SecretsFound:      m.SecretsFound.Load(),
		RechargesObserved: m.RechargesObserved.Load(),
	}
}

// RecordErrorKind increments the counter matching a failed session's error
// kind.
func (m *Metrics) RecordErrorKind(kind protocol.Kind) {
	switch kind {
	case protocol.KindSyntaxError:
		m.SyntaxErrors.Add(1)
	case protocol.KindLoginFailed:
		m.AuthFailures.Add(1)
	case protocol.KindLogicError:
		m.LogicErrors.Add(1)
	case protocol.KindTimeout:
		m.Timeouts.Add(1)
	case protocol.KindIOError:
		m.IOErrors.Add(1)
	case protocol.KindNotFound:
		m.NotFound.Add(1)
	}
}
