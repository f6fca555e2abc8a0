package protocol

import "time"

// Link is the front door every session-level read goes through: it wraps a
// Codec with the session's normal/recharge timeouts so the recharging
// sub-protocol is applied transparently to every read, not just move
// confirmations, mirroring the original's single readMsg entry point. The
// RECHARGING frame is read under the caller's own cap, so a read capped
// below its 10 bytes (the 5-byte hash confirmation) rejects it as oversize
// with 301 SYNTAX ERROR instead.
type Link struct {
	Codec *Codec

	NormalTimeout   time.Duration
	RechargeTimeout time.Duration

	// OnRecharge, if set, fires once per observed RECHARGING/FULL POWER
	// cycle.
	OnRecharge func()
}

// NewLink wraps codec with the given timeouts.
func NewLink(codec *Codec, normalTimeout, rechargeTimeout time.Duration) *Link {
	return &Link{Codec: codec, NormalTimeout: normalTimeout, RechargeTimeout: rechargeTimeout}
}

// Read reads a frame capped at maxPayload, transparently handling any
// RECHARGING/FULL POWER exchange in between.
func (l *Link) Read(maxPayload int) ([]byte, error) {
	return l.Codec.ReadFrameRecharging(maxPayload, l.NormalTimeout, l.RechargeTimeout, l.OnRecharge)
}

// Send writes text plus the frame terminator.
func (l *Link) Send(text string) error {
	return l.Codec.Send(text)
}
