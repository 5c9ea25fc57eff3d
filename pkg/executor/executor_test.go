package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tasklight/tasklight-core/pkg/binder"
	"github.com/tasklight/tasklight-core/pkg/executor"
)

type stubInvoker struct {
	res executor.Result
	err error

	gotOp string
}

func (s *stubInvoker) Invoke(_ context.Context, op string, _ binder.BoundParams) (executor.Result, error) {
	s.gotOp = op
	return s.res, s.err
}

func TestExecutePassesThroughRows(t *testing.T) {
	inv := &stubInvoker{res: executor.Result{
		Columns: []string{"task_id"},
		Records: []executor.Record{{"task_id": int64(1)}, {"task_id": int64(2)}},
	}}
	ex := executor.New(inv)

	res, err := ex.Execute(context.Background(), "task_list_for_user", binder.BoundParams{})
	require.NoError(t, err)
	require.Equal(t, "task_list_for_user", inv.gotOp)
	require.Len(t, res.Records, 2)
}

func TestExecuteSynthesizesAffectedRecord(t *testing.T) {
	inv := &stubInvoker{res: executor.Result{Affected: 3}}
	ex := executor.New(inv)

	res, err := ex.Execute(context.Background(), "task_complete", binder.BoundParams{})
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Equal(t, []string{executor.AffectedColumn}, res.Columns)

	n, ok := res.Records[0].Int(executor.AffectedColumn)
	require.True(t, ok)
	require.Equal(t, int64(3), n)
}

func TestExecuteNoSynthesisWhenNothingAffected(t *testing.T) {
	inv := &stubInvoker{res: executor.Result{}}
	ex := executor.New(inv)

	res, err := ex.Execute(context.Background(), "task_complete", binder.BoundParams{})
	require.NoError(t, err)
	require.Empty(t, res.Records)
}

func TestExecuteWrapsInvokerError(t *testing.T) {
	boom := errors.New("connection refused")
	ex := executor.New(&stubInvoker{err: boom})

	_, err := ex.Execute(context.Background(), "task_get", binder.BoundParams{})
	require.Error(t, err)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "task_get")
}

func TestExecuteHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := executor.New(&stubInvoker{})
	_, err := ex.Execute(ctx, "task_get", binder.BoundParams{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRecordLookupIsCaseInsensitive(t *testing.T) {
	rec := executor.Record{"Task_ID": int64(9), "Title": "x"}

	v, ok := rec.Get("task_id")
	require.True(t, ok)
	require.Equal(t, int64(9), v)

	require.Equal(t, "x", rec.Text("title"))

	n, ok := rec.Int("TASK_ID")
	require.True(t, ok)
	require.Equal(t, int64(9), n)
}
