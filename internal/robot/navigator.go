package robot

import (
	"strconv"
	"strings"

	"robotctl/internal/protocol"
)

// Navigator drives a single robot's moves and turns and tracks its
// position/heading as inferred from the server's own commands and the
// robot's OK confirmations. It holds no network timeouts of its own; those
// live on the Link it wraps.
type Navigator struct {
	link *protocol.Link

	Position Position
	Heading  Heading

	// OnPosition, if set, is invoked after every accepted position update.
	OnPosition func(Position)
	// OnStuckRetry, if set, is invoked every time a move is re-issued
	// because the robot reported the same cell it started from.
	OnStuckRetry func()
}

// NewNavigator constructs a Navigator with unknown position/heading.
func NewNavigator(link *protocol.Link) *Navigator {
	return &Navigator{link: link}
}

func syntaxError(msg string) error {
	return &protocol.Error{Kind: protocol.KindSyntaxError, Msg: msg}
}

// parseOKConfirm tokenizes a move/turn confirmation payload. It must be
// exactly three whitespace-separated tokens: the literal OK, a signed
// decimal x, and a signed decimal y, with no trailing content.
func parseOKConfirm(payload string) (Position, error) {
	fields := strings.Fields(payload)
	if len(fields) != 3 || fields[0] != "OK" {
		return Position{}, syntaxError("malformed OK confirmation")
	}
	x, err := strconv.Atoi(fields[1])
	if err != nil {
		return Position{}, syntaxError("non-numeric x in OK confirmation")
	}
	y, err := strconv.Atoi(fields[2])
	if err != nil {
		return Position{}, syntaxError("non-numeric y in OK confirmation")
	}
	return Position{X: x, Y: y}, nil
}

// readConfirm reads and parses an OK confirmation, sending 301 SYNTAX ERROR
// on any malformed payload.
func (n *Navigator) readConfirm() (Position, error) {
	payload, err := n.link.Read(protocol.MaxOKConfirm)
	if err != nil {
		return Position{}, err
	}
	pos, err := parseOKConfirm(string(payload))
	if err != nil {
		_ = n.link.Send(protocol.ServerSyntaxError)
		return Position{}, err
	}
	return pos, nil
}

func (n *Navigator) accept(pos Position) {
	n.Position = pos
	if n.OnPosition != nil {
		n.OnPosition(pos)
	}
}

// Move issues 102 MOVE and re-issues it for as long as the robot reports
// being stuck (same cell as before the move). There is no retry cap; the
// link's read timeout bounds real time.
func (n *Navigator) Move() error {
	for {
		before := n.Position
		if err := n.link.Send(protocol.ServerMove); err != nil {
			return err
		}
		pos, err := n.readConfirm()
		if err != nil {
			return err
		}
		n.accept(pos)
		if pos != before {
			return nil
		}
		if n.OnStuckRetry != nil {
			n.OnStuckRetry()
		}
	}
}

// TurnLeft issues 103 TURN LEFT and rotates the tracked heading 90 degrees
// left.
func (n *Navigator) TurnLeft() error {
	if err := n.link.Send(protocol.ServerTurnLeft); err != nil {
		return err
	}
	pos, err := n.readConfirm()
	if err != nil {
		return err
	}
	n.accept(pos)
	n.Heading = n.Heading.RotatedLeft()
	return nil
}

// TurnRight issues 104 TURN RIGHT and rotates the tracked heading 90
// degrees right.
func (n *Navigator) TurnRight() error {
	if err := n.link.Send(protocol.ServerTurnRight); err != nil {
		return err
	}
	pos, err := n.readConfirm()
	if err != nil {
		return err
	}
	n.accept(pos)
	n.Heading = n.Heading.RotatedRight()
	return nil
}

// PickUp issues 105 GET MESSAGE and returns the payload. An empty payload
// means there is no secret at the current cell.
func (n *Navigator) PickUp() (string, error) {
	if err := n.link.Send(protocol.ServerPickUp); err != nil {
		return "", err
	}
	payload, err := n.link.Read(protocol.MaxSecretMsg)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// Logout issues 106 LOGOUT. No response is read.
func (n *Navigator) Logout() error {
	return n.link.Send(protocol.ServerLogout)
}

// LearnPosition issues the first move of the session purely to discover
// the robot's starting coordinates.
func (n *Navigator) LearnPosition() error {
	return n.Move()
}

// LearnHeading issues a second move and infers heading from the delta
// against the position recorded before it. Both axes changing is a logic
// error: the robot is expected to move exactly one cell per step.
func (n *Navigator) LearnHeading() error {
	before := n.Position
	if err := n.Move(); err != nil {
		return err
	}
	heading, ok := headingFromDelta(before, n.Position)
	if !ok {
		_ = n.link.Send(protocol.ServerLogicError)
		return &protocol.Error{Kind: protocol.KindLogicError, Msg: "both axes changed between two moves"}
	}
	n.Heading = heading
	return nil
}

// RotateTo turns the robot to face target, issuing at most three turns, one
// at a time, choosing left or right by the sign of target minus the current
// heading exactly as the original does. This is not the shortest rotation:
// Up to Left takes three right turns here rather than one left turn, which
// is intentional fidelity to the original's turn choice, not an oversight.
// The original recurses; this loops a bounded number of times instead, per
// guidance to avoid recursion for a tiny, statically-bounded retry.
func (n *Navigator) RotateTo(target Heading) error {
	for i := 0; i < 3 && n.Heading != target; i++ {
		delta := int(target) - int(n.Heading)
		var err error
		if delta > 0 {
			err = n.TurnRight()
		} else {
			err = n.TurnLeft()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Step advances one cell toward target: face the correct axis (y before x,
// matching the original's centering order) and move. It is a no-op if the
// position already equals target.
func (n *Navigator) Step(target Position) error {
	if n.Position == target {
		return nil
	}
	if n.Heading == HeadingUnknown {
		// The first move landed exactly on the initial target, so heading
		// learning was skipped; a later scan step still needs it before it
		// can rotate anywhere.
		if err := n.LearnHeading(); err != nil {
			return err
		}
		if n.Position == target {
			return nil
		}
	}
	switch {
	case n.Position.Y < target.Y:
		if err := n.RotateTo(HeadingUp); err != nil {
			return err
		}
	case n.Position.Y > target.Y:
		if err := n.RotateTo(HeadingDown); err != nil {
			return err
		}
	case n.Position.X < target.X:
		if err := n.RotateTo(HeadingRight); err != nil {
			return err
		}
	default:
		if err := n.RotateTo(HeadingLeft); err != nil {
			return err
		}
	}
	return n.Move()
}

// NavigateTo drives the robot to target one Step at a time until reached.
func (n *Navigator) NavigateTo(target Position) error {
	for n.Position != target {
		if err := n.Step(target); err != nil {
			return err
		}
	}
	return nil
}
