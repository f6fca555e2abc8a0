package protocol

import (
	"bufio"
	"net"
	"time"
)

const (
	termFirst  = 0x07 // '\a'
	termSecond = 0x08 // '\b'
)

type recognizerState int

const (
	stateOpen recognizerState = iota
	stateClose
)

// deadlineReader refreshes the connection's read deadline before every
// underlying Read call, giving each byte (or buffered chunk) its own idle
// timeout rather than one deadline for the whole frame.
type deadlineReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (d *deadlineReader) Read(p []byte) (int, error) {
	if err := d.conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	return d.conn.Read(p)
}

// Codec implements the length-bounded, terminator-delimited frame protocol
// described by the wire spec: payloads are read and written verbatim except
// for the trailing two-byte terminator \a\b, and either terminator byte may
// appear alone inside a payload without being mistaken for the sequence.
type Codec struct {
	conn net.Conn
	dr   *deadlineReader
	r    *bufio.Reader
}

// NewCodec wraps conn with the framed codec, using timeout as the initial
// per-read idle timeout.
func NewCodec(conn net.Conn, timeout time.Duration) *Codec {
	dr := &deadlineReader{conn: conn, timeout: timeout}
	return &Codec{conn: conn, dr: dr, r: bufio.NewReader(dr)}
}

// SetTimeout changes the idle timeout applied to subsequent reads. It takes
// effect on the next underlying Read call, not retroactively.
func (c *Codec) SetTimeout(d time.Duration) {
	c.dr.timeout = d
}

// Send appends the terminator to text and writes the frame. text must not
// itself contain the terminator pair; callers only pass known literals and
// short numerics.
func (c *Codec) Send(text string) error {
	buf := make([]byte, 0, len(text)+2)
	buf = append(buf, text...)
	buf = append(buf, termFirst, termSecond)
	if _, err := c.conn.Write(buf); err != nil {
		return wrapErr(KindIOError, "write frame", err)
	}
	return nil
}

// ReadFrame reads bytes until the terminator pair is detected and returns
// the payload with the terminator stripped. maxPayload bounds the payload
// length; exceeding it sends 301 SYNTAX ERROR and returns a *Error of kind
// KindSyntaxError. A read that produces no byte within the configured
// timeout returns KindTimeout.
func (c *Codec) ReadFrame(maxPayload int) ([]byte, error) {
	state := stateOpen
	msg := make([]byte, 0, maxPayload)
	length := 0

	for {
		b, err := c.r.ReadByte()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil, newErr(KindTimeout, "no byte within read timeout")
			}
			return nil, wrapErr(KindIOError, "read frame", err)
		}
		length++

		switch b {
		case termFirst:
			if state == stateOpen {
				state = stateClose
			} else {
				msg = append(msg, termFirst)
			}
		case termSecond:
			if state == stateOpen {
				msg = append(msg, termSecond)
			} else {
				return msg, nil
			}
		default:
			if state == stateClose {
				state = stateOpen
				msg = append(msg, termFirst)
			}
			msg = append(msg, b)
		}

		if (length == maxPayload+1 && state == stateOpen) || length == maxPayload+2 {
			_ = c.Send(ServerSyntaxError)
			return nil, newErr(KindSyntaxError, "frame exceeds payload cap")
		}
	}
}
