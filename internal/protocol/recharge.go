package protocol

import "time"

// ReadFrameRecharging wraps Codec.ReadFrame with the recharging sub-protocol:
// if the payload read under maxPayload equals the literal RECHARGING, the
// codec switches to rechargeTimeout and waits for FULL POWER before retrying
// the original read under the original timeout and cap. The substitution is
// transparent to the caller; onRecharge, if non-nil, is invoked once per
// observed recharge (used by sessions to log and count it).
func (c *Codec) ReadFrameRecharging(maxPayload int, normalTimeout, rechargeTimeout time.Duration, onRecharge func()) ([]byte, error) {
	for {
		c.SetTimeout(normalTimeout)
		payload, err := c.ReadFrame(maxPayload)
		if err != nil {
			return nil, err
		}
		if string(payload) != ClientRecharging {
			return payload, nil
		}

		if onRecharge != nil {
			onRecharge()
		}

		c.SetTimeout(rechargeTimeout)
		fullPower, err := c.ReadFrame(MaxFullPower)
		if err != nil {
			return nil, err
		}
		if string(fullPower) != ClientFullPower {
			_ = c.Send(ServerLogicError)
			return nil, newErr(KindLogicError, "expected FULL POWER after RECHARGING")
		}
		// retry the original read; a robot may send RECHARGING again
		// immediately, so loop rather than assume one retry suffices.
	}
}
