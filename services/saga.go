package services

import (
	"github.com/plumstudio/atelier/utils"
)

// Saga collects compensating actions for a multi-step mutation spanning the
// database and object storage. Each successful step pushes an undo closure;
// on failure Rollback runs them in reverse order. Compensation is best
// effort: an undo error is logged, never propagated, so the caller always
// sees the original failure.
type Saga struct {
	undos []undoStep
}

type undoStep struct {
	name string
	fn   func() error
}

// NewSaga returns an empty compensation stack.
func NewSaga() *Saga {
	return &Saga{}
}

// Defer registers a compensating action for a step that just succeeded.
func (s *Saga) Defer(name string, fn func() error) {
	s.undos = append(s.undos, undoStep{name: name, fn: fn})
}

// Rollback runs registered compensations in reverse registration order.
func (s *Saga) Rollback() {
	for i := len(s.undos) - 1; i >= 0; i-- {
		step := s.undos[i]
		if err := step.fn(); err != nil && utils.Sugar != nil {
			utils.Sugar.Errorf("saga rollback step %q failed: %v", step.name, err)
		}
	}
	s.undos = nil
}

// Steps returns the number of pending compensations.
func (s *Saga) Steps() int {
	return len(s.undos)
}
