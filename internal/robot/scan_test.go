package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanPositionForStepCorners(t *testing.T) {
	anchor := Position{X: -2, Y: 2}
	assert.Equal(t, Position{X: -2, Y: 2}, scanPositionForStep(anchor, 0))
	assert.Equal(t, Position{X: 2, Y: -2}, scanPositionForStep(anchor, 24))
}

func TestScanPositionForStepSerpentineAdjacency(t *testing.T) {
	anchor := Position{X: -2, Y: 2}
	for step := 0; step < LastStep; step++ {
		cur := scanPositionForStep(anchor, step)
		next := scanPositionForStep(anchor, step+1)
		dx := next.X - cur.X
		dy := next.Y - cur.Y
		manhattan := abs(dx) + abs(dy)
		assert.Equal(t, 1, manhattan, "step %d -> %d must be grid-adjacent", step, step+1)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
