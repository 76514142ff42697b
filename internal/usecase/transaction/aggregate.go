package transaction

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"cloud-commerce-portal/internal/domain"
)

// State of a sequential aggregate transaction.
type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// SequentialAggregate executes an ordered list of business transactions as
// one all-or-nothing unit. On the first step failure it stops, rolls back
// every previously completed step in reverse order, and re-raises the
// original failure. Fatal failures are never rolled back: if the process is
// suspect, rollback cannot be trusted to run correctly either.
type SequentialAggregate struct {
	steps    []BusinessTransaction
	state    State
	failedAt int
	log      *zerolog.Logger
}

// NewSequentialAggregate builds an aggregate over steps in the exact order
// given. The order is a correctness property; Steps exposes it so callers
// can assert on the built sequence before executing it.
func NewSequentialAggregate(logger *zerolog.Logger, steps ...BusinessTransaction) *SequentialAggregate {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SequentialAggregate{steps: steps, failedAt: -1, log: logger}
}

// Steps returns the ordered step list.
func (a *SequentialAggregate) Steps() []BusinessTransaction {
	out := make([]BusinessTransaction, len(a.steps))
	copy(out, a.steps)
	return out
}

// State returns the aggregate's current state.
func (a *SequentialAggregate) State() State { return a.state }

// FailedAt returns the index of the first failed step, or -1.
func (a *SequentialAggregate) FailedAt() int { return a.failedAt }

// Execute runs the steps strictly in order. An aggregate is single-use.
func (a *SequentialAggregate) Execute(ctx context.Context) error {
	if a.state != StateNotStarted {
		return fmt.Errorf("aggregate transaction already %s", a.state)
	}
	a.state = StateRunning

	for i, step := range a.steps {
		if err := step.Execute(ctx); err != nil {
			a.state = StateFailed
			a.failedAt = i

			if domain.IsFatal(err) {
				a.log.Error().Err(err).Str("step", step.Name()).Int("index", i).
					Msg("fatal failure, skipping rollback")
				return err
			}

			a.log.Warn().Err(err).Str("step", step.Name()).Int("index", i).
				Msg("step failed, rolling back completed steps")
			if failures := a.rollbackFrom(ctx, i-1); len(failures) > 0 {
				return &domain.IncompleteRollbackError{Cause: err, Failures: failures}
			}
			return err
		}
	}

	a.state = StateCompleted
	return nil
}

// rollbackFrom unwinds steps[0..from] last-completed-first, continuing past
// individual rollback failures so every completed step gets its chance to
// undo. The failures are returned for reconciliation reporting.
func (a *SequentialAggregate) rollbackFrom(ctx context.Context, from int) []error {
	var failures []error
	for i := from; i >= 0; i-- {
		step := a.steps[i]
		if err := step.Rollback(ctx); err != nil {
			a.log.Error().Err(err).Str("step", step.Name()).Int("index", i).
				Msg("rollback failed")
			failures = append(failures, fmt.Errorf("%s: %w", step.Name(), err))
		}
	}
	return failures
}
