// executor/executor.go
package executor

import (
	"context"
	"fmt"

	"github.com/tasklight/tasklight-core/pkg/binder"
)

// AffectedColumn names the synthesized column exposed when a write-only
// operation returns no rows but reports a positive affected count.
const AffectedColumn = "Affected"

// Invoker is the backend operation collaborator: invoke a named operation
// with bound parameters, get back rows and an affected count. Each call must
// acquire and fully release its own backend resource and honor ctx
// cancellation.
type Invoker interface {
	Invoke(ctx context.Context, operation string, params binder.BoundParams) (Result, error)
}

// Executor runs operations through an Invoker and post-processes the result
// so callers always have a non-empty signal to branch on after a write.
type Executor struct {
	inv Invoker
}

func New(inv Invoker) *Executor {
	return &Executor{inv: inv}
}

// Execute invokes the operation and synthesizes exactly one affected-count
// record when the result set is empty but rows were touched.
func (e *Executor) Execute(ctx context.Context, operation string, params binder.BoundParams) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res, err := e.inv.Invoke(ctx, operation, params)
	if err != nil {
		return Result{}, fmt.Errorf("operation %s: %w", operation, err)
	}
	if len(res.Records) == 0 && res.Affected > 0 {
		res.Columns = []string{AffectedColumn}
		res.Records = []Record{{AffectedColumn: res.Affected}}
	}
	return res, nil
}
