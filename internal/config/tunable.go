package config

import (
	"sync"
	"time"

	"robotctl/internal/robot"
)

// Tunable is the subset of Config the admin HTTP surface can change while
// the server is running: per-session timeouts and the target cell. Hash
// keys and listen addresses are fixed at startup.
type Tunable struct {
	NormalTimeout   time.Duration `json:"normal_timeout"`
	RechargeTimeout time.Duration `json:"recharge_timeout"`
	TargetX         int           `json:"target_x"`
	TargetY         int           `json:"target_y"`
}

// TunablePatch mirrors Tunable with optional fields, for partial updates
// via POST /admin/config, the same pattern the dashboard's config endpoint
// uses for its own partial-update payload.
type TunablePatch struct {
	NormalTimeout   *time.Duration `json:"normal_timeout,omitempty"`
	RechargeTimeout *time.Duration `json:"recharge_timeout,omitempty"`
	TargetX         *int           `json:"target_x,omitempty"`
	TargetY         *int           `json:"target_y,omitempty"`
}

// Store guards the live-tunable config behind a mutex so the acceptor can
// read a fresh robot.Config for every new connection while the admin
// surface updates it concurrently. Sessions already in flight keep the
// config snapshot they started with.
type Store struct {
	mu   sync.RWMutex
	base Config
	cur  Tunable
}

// NewStore seeds a Store from base's startup values.
func NewStore(base Config) *Store {
	return &Store{
		base: base,
		cur: Tunable{
			NormalTimeout:   base.NormalTimeout,
			RechargeTimeout: base.RechargeTimeout,
			TargetX:         base.TargetX,
			TargetY:         base.TargetY,
		},
	}
}

// Current returns the live tunable values.
func (s *Store) Current() Tunable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Apply merges patch into the live values, leaving unset fields untouched.
func (s *Store) Apply(patch TunablePatch) Tunable {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.NormalTimeout != nil {
		s.cur.NormalTimeout = *patch.NormalTimeout
	}
	if patch.RechargeTimeout != nil {
		s.cur.RechargeTimeout = *patch.RechargeTimeout
	}
	if patch.TargetX != nil {
		s.cur.TargetX = *patch.TargetX
	}
	if patch.TargetY != nil {
		s.cur.TargetY = *patch.TargetY
	}
	return s.cur
}

// SessionConfig builds a robot.Config for a new connection from the
// current live values and the fixed startup hash keys.
func (s *Store) SessionConfig() robot.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return robot.Config{
		Keys:            robot.HashKeys{Server: s.base.ServerKey, Client: s.base.ClientKey},
		Target:          robot.Position{X: s.cur.TargetX, Y: s.cur.TargetY},
		NormalTimeout:   s.cur.NormalTimeout,
		RechargeTimeout: s.cur.RechargeTimeout,
	}
}
