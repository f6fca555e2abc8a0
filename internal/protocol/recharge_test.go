package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFrameRechargingTransparentOnNormalFrame(t *testing.T) {
	server, client := pipeCodecs(t)

	go func() {
		_ = client.Send("OK 0 0")
	}()

	payload, err := server.ReadFrameRecharging(MaxOKConfirm, time.Second, 5*time.Second, nil)
	require.NoError(t, err)
	assert.Equal(t, "OK 0 0", string(payload))
}

func TestReadFrameRechargingWaitsForFullPower(t *testing.T) {
	server, client := pipeCodecs(t)

	recharges := 0
	go func() {
		_ = client.Send(ClientRecharging)
		_ = client.Send(ClientFullPower)
		_ = client.Send("OK 0 0")
	}()

	payload, err := server.ReadFrameRecharging(MaxOKConfirm, time.Second, 5*time.Second, func() { recharges++ })
	require.NoError(t, err)
	assert.Equal(t, "OK 0 0", string(payload))
	assert.Equal(t, 1, recharges)
}

func TestReadFrameRechargingRejectsWrongResumeMessage(t *testing.T) {
	server, client := pipeCodecs(t)

	type clientResult struct {
		resp []byte
		err  error
	}
	resultCh := make(chan clientResult, 1)
	go func() {
		_ = client.Send(ClientRecharging)
		_ = client.Send("NOPE")
		resp, err := client.ReadFrame(64)
		resultCh <- clientResult{resp: resp, err: err}
	}()

	_, err := server.ReadFrameRecharging(MaxOKConfirm, time.Second, 5*time.Second, nil)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindLogicError))

	result := <-resultCh
	require.NoError(t, result.err)
	assert.Equal(t, ServerLogicError, string(result.resp))
}
