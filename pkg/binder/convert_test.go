package binder_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tasklight/tasklight-core/pkg/binder"
	"github.com/tasklight/tasklight-core/pkg/schema"
)

func bindOne(t *testing.T, typ schema.ParamType, raw string) any {
	t.Helper()
	c := contract(schema.Param{Name: "@v", Type: typ})
	got := binder.Bind(binder.Source{Query: url.Values{"v": {raw}}}, c)
	v, ok := got.Get("v")
	require.True(t, ok)
	return v
}

func TestIntConversionNeverRaises(t *testing.T) {
	require.Equal(t, int64(42), bindOne(t, schema.ParamInt, "42"))
	require.Equal(t, int64(0), bindOne(t, schema.ParamInt, "abc"))
	require.Equal(t, int64(-7), bindOne(t, schema.ParamInt, "-7"))
	require.Equal(t, int64(3), bindOne(t, schema.ParamInt, "3.9"))
	require.Equal(t, int64(0), bindOne(t, schema.ParamInt, ""))
}

func TestIntConversionFromJSONNumber(t *testing.T) {
	c := contract(schema.Param{Name: "@v", Type: schema.ParamInt})
	got := binder.Bind(binder.Source{
		Body:        []byte(`{"v": 42}`),
		ContentType: "application/json",
	}, c)
	v, _ := got.Get("v")
	require.Equal(t, int64(42), v)
}

func TestBoolGrammar(t *testing.T) {
	for _, s := range []string{"1", "t", "true", "y", "yes", "on", "TRUE", "Yes"} {
		require.Equal(t, true, bindOne(t, schema.ParamBool, s), s)
	}
	for _, s := range []string{"0", "false", "no", "off", "banana", ""} {
		require.Equal(t, false, bindOne(t, schema.ParamBool, s), s)
	}
}

func TestTimestampLayouts(t *testing.T) {
	v := bindOne(t, schema.ParamTimestamp, "2026-08-26T10:30:00Z")
	require.Equal(t, time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC), v)

	v = bindOne(t, schema.ParamTimestamp, "2026-08-26 10:30:00")
	require.Equal(t, time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC), v)

	v = bindOne(t, schema.ParamTimestamp, "2026-08-26")
	require.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), v)
}

func TestTimestampParseFailureYieldsNow(t *testing.T) {
	v := bindOne(t, schema.ParamTimestamp, "not a date")
	ts, ok := v.(time.Time)
	require.True(t, ok)
	require.WithinDuration(t, time.Now().UTC(), ts, 5*time.Second)
}

func TestUUIDConversion(t *testing.T) {
	id := uuid.New()
	require.Equal(t, id, bindOne(t, schema.ParamUUID, id.String()))

	// parse failure is the zero identifier, distinct from the absent marker
	require.Equal(t, uuid.Nil, bindOne(t, schema.ParamUUID, "not-a-uuid"))
}

func TestTextPassesThrough(t *testing.T) {
	require.Equal(t, "hello", bindOne(t, schema.ParamText, "hello"))
	require.Equal(t, "", bindOne(t, schema.ParamText, ""))
}
