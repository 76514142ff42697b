package transaction

import "context"

// BusinessTransaction is one unit of work inside an aggregate commerce
// transaction. Execute performs the side effect and stores a typed result on
// the concrete step; Rollback is the best-effort undo of a previously
// successful Execute. Rollback must be safe to call even if the step never
// ran, and must not mask the original failure: the aggregate logs and
// swallows rollback errors while unwinding.
//
// Steps that need another step's result read it through a closure evaluated
// at execution time, so construction order never imposes a data-availability
// constraint; only execution order does.
type BusinessTransaction interface {
	Name() string
	Execute(ctx context.Context) error
	Rollback(ctx context.Context) error
}
