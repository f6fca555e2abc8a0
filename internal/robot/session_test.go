package robot

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotctl/internal/protocol"
)

func TestSessionHappyPathFastPathsToScanWhenAlreadyOnTarget(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() {
		_ = serverConn.Close()
		_ = clientConn.Close()
	})
	client := protocol.NewCodec(clientConn, time.Second)

	cfg := DefaultConfig()
	clientDone := make(chan error, 1)
	go func() {
		clientDone <- func() error {
			if err := client.Send("Ab"); err != nil {
				return err
			}
			if _, err := client.ReadFrame(64); err != nil { // server hash, not validated here
				return err
			}
			confirm := strconv.Itoa(int(sumBytes("Ab")*1000 + cfg.Keys.Client))
			if err := client.Send(confirm); err != nil {
				return err
			}
			if _, err := client.ReadFrame(64); err != nil { // 200 OK
				return err
			}

			if _, err := client.ReadFrame(64); err != nil { // 102 MOVE
				return err
			}
			if err := client.Send("OK -2 2"); err != nil { // lands exactly on target
				return err
			}

			if _, err := client.ReadFrame(64); err != nil { // 105 GET MESSAGE
				return err
			}
			if err := client.Send("the secret"); err != nil {
				return err
			}

			if _, err := client.ReadFrame(64); err != nil { // 106 LOGOUT
				return err
			}
			return nil
		}()
	}()

	var states []State
	session := NewSession(cfg, Hooks{OnStateChange: func(s State) { states = append(states, s) }})
	outcome := session.Run(serverConn)

	require.NoError(t, outcome.Err)
	assert.Equal(t, "the secret", outcome.Secret)
	assert.Equal(t, StateLoggedOut, outcome.State)
	assert.Contains(t, states, StateScanning)
	assert.NotContains(t, states, StateNavigating)
	require.NoError(t, <-clientDone)
}

func TestSessionLoginFailureStopsBeforeNavigation(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	t.Cleanup(func() {
		_ = serverConn.Close()
		_ = clientConn.Close()
	})
	client := protocol.NewCodec(clientConn, time.Second)

	type clientResult struct {
		resp []byte
		err  error
	}
	resultCh := make(chan clientResult, 1)
	clientDone := make(chan error, 1)
	go func() {
		clientDone <- func() error {
			if err := client.Send("Ab"); err != nil {
				return err
			}
			if _, err := client.ReadFrame(64); err != nil {
				return err
			}
			if err := client.Send("99999"); err != nil {
				return err
			}
			// net.Pipe writes block until read, so the 300 reply is read
			// here while Run is still sending it.
			resp, err := client.ReadFrame(64)
			resultCh <- clientResult{resp: resp, err: err}
			return nil
		}()
	}()

	session := NewSession(DefaultConfig(), Hooks{})
	outcome := session.Run(serverConn)

	require.Error(t, outcome.Err)
	assert.Equal(t, protocol.KindLoginFailed, outcome.ErrKind)
	assert.Equal(t, StateFailed, outcome.State)

	require.NoError(t, <-clientDone)
	result := <-resultCh
	require.NoError(t, result.err)
	assert.Equal(t, protocol.ServerLoginFailed, string(result.resp))
}
