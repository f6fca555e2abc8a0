package robot

import "robotctl/internal/protocol"

// PatchSize is the width/height of the serpentine sweep patch.
const PatchSize = 5

// LastStep is the final cell index in the sweep (PatchSize*PatchSize - 1).
const LastStep = PatchSize*PatchSize - 1

// scanPositionForStep converts a 0..24 serpentine step index back to a grid
// cell, anchored at anchor (step 0, top-left). Row 0 runs left to right;
// odd rows run right to left, so consecutive steps are always adjacent.
func scanPositionForStep(anchor Position, step int) Position {
	row := step / PatchSize
	col := step % PatchSize
	if row%2 != 0 {
		col = (PatchSize - 1) - col
	}
	return Position{X: anchor.X + col, Y: anchor.Y - row}
}

// Scanner sweeps the 5x5 patch anchored at target, issuing a pick-up at
// every cell until the secret is returned or the patch is exhausted.
type Scanner struct {
	nav    *Navigator
	anchor Position

	// OnCell, if set, is invoked before each pick-up with the step index
	// and the cell being scanned.
	OnCell func(step int, pos Position)
}

// NewScanner constructs a Scanner anchored at anchor. The navigator is
// expected to already be positioned at anchor (or to be able to reach it).
func NewScanner(nav *Navigator, anchor Position) *Scanner {
	return &Scanner{nav: nav, anchor: anchor}
}

// Run drives the sweep to completion. It returns the secret message on
// success, or a *protocol.Error of kind KindNotFound if all 25 cells came
// back empty.
func (s *Scanner) Run() (string, error) {
	for step := 0; step <= LastStep; step++ {
		pos := scanPositionForStep(s.anchor, step)
		if err := s.nav.NavigateTo(pos); err != nil {
			return "", err
		}
		if s.OnCell != nil {
			s.OnCell(step, pos)
		}
		secret, err := s.nav.PickUp()
		if err != nil {
			return "", err
		}
		if secret != "" {
			return secret, nil
		}
	}
	return "", &protocol.Error{Kind: protocol.KindNotFound, Msg: "scan exhausted the 25-cell patch"}
}
