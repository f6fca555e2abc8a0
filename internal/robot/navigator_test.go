package robot

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotctl/internal/protocol"
)

// fakeRobotStep is one exchange the scripted robot expects to see from the
// server and how it replies.
type fakeRobotStep struct {
	expectCommand string
	reply         string // empty means "send nothing" (used for LOGOUT)
}

// runFakeRobot drives the client side of a pipe through a fixed script,
// asserting the server sends exactly the expected commands in order.
func runFakeRobot(t *testing.T, client *protocol.Codec, script []fakeRobotStep) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		for _, step := range script {
			got, err := client.ReadFrame(64)
			if err != nil {
				done <- err
				return
			}
			if string(got) != step.expectCommand {
				done <- fmt.Errorf("expected command %q, got %q", step.expectCommand, string(got))
				return
			}
			if step.reply != "" {
				if err := client.Send(step.reply); err != nil {
					done <- err
					return
				}
			}
		}
		done <- nil
	}()
	return done
}

func newPipe(t *testing.T) (*protocol.Link, *protocol.Codec) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	serverCodec := protocol.NewCodec(a, time.Second)
	link := protocol.NewLink(serverCodec, time.Second, 5*time.Second)
	return link, protocol.NewCodec(b, time.Second)
}

func TestNavigatorMoveUpdatesPosition(t *testing.T) {
	server, client := newPipe(t)
	done := runFakeRobot(t, client, []fakeRobotStep{
		{expectCommand: protocol.ServerMove, reply: "OK 1 0"},
	})

	nav := NewNavigator(server)
	require.NoError(t, nav.Move())
	assert.Equal(t, Position{X: 1, Y: 0}, nav.Position)
	require.NoError(t, <-done)
}

func TestNavigatorMoveRetriesWhenStuck(t *testing.T) {
	server, client := newPipe(t)
	stuckRetries := 0
	done := runFakeRobot(t, client, []fakeRobotStep{
		{expectCommand: protocol.ServerMove, reply: "OK 0 0"}, // stuck: same as start
		{expectCommand: protocol.ServerMove, reply: "OK 1 0"}, // progress
	})

	nav := NewNavigator(server)
	nav.OnStuckRetry = func() { stuckRetries++ }
	require.NoError(t, nav.Move())
	assert.Equal(t, Position{X: 1, Y: 0}, nav.Position)
	assert.Equal(t, 1, stuckRetries)
	require.NoError(t, <-done)
}

func TestNavigatorLearnHeadingInfersUp(t *testing.T) {
	server, client := newPipe(t)
	done := runFakeRobot(t, client, []fakeRobotStep{
		{expectCommand: protocol.ServerMove, reply: "OK 0 1"},
	})

	nav := NewNavigator(server)
	require.NoError(t, nav.LearnHeading())
	assert.Equal(t, HeadingUp, nav.Heading)
	require.NoError(t, <-done)
}

func TestNavigatorLearnHeadingBothAxesIsLogicError(t *testing.T) {
	server, client := newPipe(t)
	done := runFakeRobot(t, client, []fakeRobotStep{
		{expectCommand: protocol.ServerMove, reply: "OK 1 1"},
	})

	// net.Pipe writes block until the other end reads, so the 302 reply
	// must be read concurrently with LearnHeading, not after it returns.
	type clientResult struct {
		resp []byte
		err  error
	}
	resultCh := make(chan clientResult, 1)
	go func() {
		if err := <-done; err != nil {
			resultCh <- clientResult{err: err}
			return
		}
		resp, err := client.ReadFrame(64)
		resultCh <- clientResult{resp: resp, err: err}
	}()

	nav := NewNavigator(server)
	err := nav.LearnHeading()
	require.Error(t, err)
	assert.True(t, protocol.IsKind(err, protocol.KindLogicError))

	result := <-resultCh
	require.NoError(t, result.err)
	assert.Equal(t, protocol.ServerLogicError, string(result.resp))
}

func TestNavigatorRotateToTurnsAtMostThreeTimes(t *testing.T) {
	server, client := newPipe(t)
	done := runFakeRobot(t, client, []fakeRobotStep{
		{expectCommand: protocol.ServerTurnRight, reply: "OK 0 0"},
		{expectCommand: protocol.ServerTurnRight, reply: "OK 0 0"},
	})

	nav := NewNavigator(server)
	nav.Heading = HeadingUp
	require.NoError(t, nav.RotateTo(HeadingDown))
	assert.Equal(t, HeadingDown, nav.Heading)
	require.NoError(t, <-done)
}

func TestNavigatorNavigateToReachesTarget(t *testing.T) {
	server, client := newPipe(t)
	done := runFakeRobot(t, client, []fakeRobotStep{
		{expectCommand: protocol.ServerTurnRight, reply: "OK 0 0"},
		{expectCommand: protocol.ServerMove, reply: "OK 1 0"},
	})

	nav := NewNavigator(server)
	nav.Heading = HeadingUp
	require.NoError(t, nav.NavigateTo(Position{X: 1, Y: 0}))
	assert.Equal(t, Position{X: 1, Y: 0}, nav.Position)
	require.NoError(t, <-done)
}
