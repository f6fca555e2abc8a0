package robot

import (
	"strconv"

	"robotctl/internal/protocol"
)

// HashKeys holds the server/client additive-sum hash keys used during
// authentication. Defaults are 54621/45328; both are configuration values
// so a deployment can run an isolated set of keys without a rebuild.
type HashKeys struct {
	Server uint16
	Client uint16
}

// computeHash implements the truncating 16-bit additive-sum hash:
// sum_of_bytes(value) * 1000 + key, all arithmetic modulo 65536. Go's
// uint16 arithmetic wraps on overflow, which is exactly that modulus.
func computeHash(key uint16, value []byte) uint16 {
	var sum uint16
	for _, b := range value {
		sum += uint16(b)
	}
	return sum*1000 + key
}

// Authenticate runs the two-message challenge: read the username, send the
// server hash, read and validate the client confirmation. It returns the
// username on success for logging/telemetry purposes.
func Authenticate(link *protocol.Link, keys HashKeys) (string, error) {
	usernameBytes, err := link.Read(protocol.MaxUsername)
	if err != nil {
		return "", err
	}

	serverHash := computeHash(keys.Server, usernameBytes)
	if err := link.Send(strconv.Itoa(int(serverHash))); err != nil {
		return "", err
	}

	confirmBytes, err := link.Read(protocol.MaxConfirmation)
	if err != nil {
		return "", err
	}
	confirm := string(confirmBytes)

	if !isAllDigits(confirm) {
		_ = link.Send(protocol.ServerSyntaxError)
		return "", &protocol.Error{Kind: protocol.KindSyntaxError, Msg: "confirmation is not all-digit"}
	}

	confirmValue, err := strconv.Atoi(confirm)
	if err != nil {
		_ = link.Send(protocol.ServerSyntaxError)
		return "", &protocol.Error{Kind: protocol.KindSyntaxError, Msg: "confirmation not numeric", Err: err}
	}

	expected := computeHash(keys.Client, usernameBytes)
	if uint16(confirmValue) != expected {
		_ = link.Send(protocol.ServerLoginFailed)
		return "", &protocol.Error{Kind: protocol.KindLoginFailed, Msg: "client hash mismatch"}
	}

	if err := link.Send(protocol.ServerOK); err != nil {
		return "", err
	}
	return string(usernameBytes), nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
