package services

import (
	"errors"
	"testing"
)

func TestSagaRollbackRunsInReverseOrder(t *testing.T) {
	saga := NewSaga()
	var order []string
	saga.Defer("first", func() error {
		order = append(order, "first")
		return nil
	})
	saga.Defer("second", func() error {
		order = append(order, "second")
		return nil
	})

	saga.Rollback()

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("rollback order = %v, want [second first]", order)
	}
	if saga.Steps() != 0 {
		t.Errorf("steps after rollback = %d, want 0", saga.Steps())
	}
}

func TestSagaRollbackContinuesPastFailures(t *testing.T) {
	saga := NewSaga()
	var ran []string
	saga.Defer("keep-going", func() error {
		ran = append(ran, "keep-going")
		return nil
	})
	saga.Defer("boom", func() error {
		ran = append(ran, "boom")
		return errors.New("undo failed")
	})

	saga.Rollback()

	if len(ran) != 2 {
		t.Fatalf("ran %v, want both compensations", ran)
	}
}

func TestSagaSteps(t *testing.T) {
	saga := NewSaga()
	if saga.Steps() != 0 {
		t.Errorf("steps = %d, want 0", saga.Steps())
	}
	saga.Defer("a", func() error { return nil })
	if saga.Steps() != 1 {
		t.Errorf("steps = %d, want 1", saga.Steps())
	}
}
