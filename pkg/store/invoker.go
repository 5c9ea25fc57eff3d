// store/invoker.go
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/tasklight/tasklight-core/pkg/binder"
	"github.com/tasklight/tasklight-core/pkg/executor"
	"github.com/tasklight/tasklight-core/pkg/schema"
)

// Invoker executes named operations as SQL functions, passing bound values
// positionally in contract order. Write-only operations return a bigint
// affected count instead of rows; everything else is set-returning.
type Invoker struct {
	store *Store
	reg   *schema.Registry
}

func NewInvoker(s *Store, reg *schema.Registry) *Invoker {
	return &Invoker{store: s, reg: reg}
}

// Invoke checks out one connection, runs the operation, and releases the
// connection on every path. Cancellation flows through QueryContext.
func (i *Invoker) Invoke(ctx context.Context, operation string, params binder.BoundParams) (executor.Result, error) {
	args := sqlArgs(params.Ordered())

	conn, err := i.store.db.Conn(ctx)
	if err != nil {
		return executor.Result{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if i.reg.WriteOnly(operation) {
		var affected int64
		stmt := "SELECT " + operation + "(" + placeholders(len(args)) + ")"
		if err := conn.QueryRowContext(ctx, stmt, args...).Scan(&affected); err != nil {
			return executor.Result{}, fmt.Errorf("exec %s: %w", operation, err)
		}
		return executor.Result{Affected: affected}, nil
	}

	stmt := "SELECT * FROM " + operation + "(" + placeholders(len(args)) + ")"
	rows, err := conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return executor.Result{}, fmt.Errorf("query %s: %w", operation, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return executor.Result{}, fmt.Errorf("query %s: %w", operation, err)
	}

	res := executor.Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for n := range vals {
			ptrs[n] = &vals[n]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return executor.Result{}, fmt.Errorf("scan %s: %w", operation, err)
		}
		rec := make(executor.Record, len(cols))
		for n, c := range cols {
			rec[c] = normalizeValue(vals[n])
		}
		res.Records = append(res.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return executor.Result{}, fmt.Errorf("query %s: %w", operation, err)
	}
	res.Affected = int64(len(res.Records))
	return res, nil
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// sqlArgs adapts bound values to driver arguments. Passthrough lists become
// array parameters; absent markers become NULL.
func sqlArgs(vals []any) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		switch list := v.(type) {
		case []any:
			strs := make([]string, 0, len(list))
			for _, item := range list {
				strs = append(strs, fmt.Sprint(item))
			}
			out[i] = pq.Array(strs)
		default:
			out[i] = v
		}
	}
	return out
}

// normalizeValue keeps records JSON-friendly: byte slices from the driver
// are really text.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
