package robot

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotctl/internal/protocol"
)

func sumBytes(s string) uint16 {
	var sum uint16
	for _, b := range []byte(s) {
		sum += uint16(b)
	}
	return sum
}

func TestAuthenticateSuccess(t *testing.T) {
	server, client := newPipe(t)
	keys := HashKeys{Server: 54621, Client: 45328}

	go func() {
		_ = client.Send("Ab")
		hash, _ := client.ReadFrame(64)
		expectedServer := strconv.Itoa(int(sumBytes("Ab")*1000 + keys.Server))
		assert.Equal(t, expectedServer, string(hash))
		_ = client.Send(strconv.Itoa(int(sumBytes("Ab")*1000 + keys.Client)))
		_, _ = client.ReadFrame(64) // drain the server's 200 OK reply
	}()

	username, err := Authenticate(server, keys)
	require.NoError(t, err)
	assert.Equal(t, "Ab", username)
}

func TestAuthenticateWrongHashIsLoginFailed(t *testing.T) {
	server, client := newPipe(t)
	keys := HashKeys{Server: 54621, Client: 45328}

	type clientResult struct {
		resp []byte
		err  error
	}
	resultCh := make(chan clientResult, 1)
	go func() {
		_ = client.Send("Ab")
		_, _ = client.ReadFrame(64)
		_ = client.Send("12345")
		resp, err := client.ReadFrame(64)
		resultCh <- clientResult{resp: resp, err: err}
	}()

	_, err := Authenticate(server, keys)
	require.Error(t, err)
	assert.True(t, protocol.IsKind(err, protocol.KindLoginFailed))

	result := <-resultCh
	require.NoError(t, result.err)
	assert.Equal(t, protocol.ServerLoginFailed, string(result.resp))
}

func TestAuthenticateNonDigitConfirmationIsSyntaxError(t *testing.T) {
	server, client := newPipe(t)
	keys := HashKeys{Server: 54621, Client: 45328}

	go func() {
		_ = client.Send("Ab")
		_, _ = client.ReadFrame(64)
		_ = client.Send("abc")
		_, _ = client.ReadFrame(64) // drain the server's 301 SYNTAX ERROR reply
	}()

	_, err := Authenticate(server, keys)
	require.Error(t, err)
	assert.True(t, protocol.IsKind(err, protocol.KindSyntaxError))
}

func TestAuthenticateOversizeUsernameIsSyntaxError(t *testing.T) {
	server, client := newPipe(t)
	keys := HashKeys{Server: 54621, Client: 45328}

	go func() {
		_ = client.Send("this-username-is-nineteen!") // well over the 18 byte cap
		_, _ = client.ReadFrame(64)                    // drain the server's 301 SYNTAX ERROR reply
	}()

	_, err := Authenticate(server, keys)
	require.Error(t, err)
	assert.True(t, protocol.IsKind(err, protocol.KindSyntaxError))
}
