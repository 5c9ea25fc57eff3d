package binder_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tasklight/tasklight-core/pkg/binder"
	"github.com/tasklight/tasklight-core/pkg/schema"
)

func contract(params ...schema.Param) schema.Contract {
	return schema.Contract{Operation: "test_op", Params: params}
}

func TestBindPrecedenceBodyWins(t *testing.T) {
	c := contract(schema.Param{Name: "@userId", Type: schema.ParamInt})

	src := binder.Source{
		Path:        map[string]string{"userId": "1"},
		Query:       url.Values{"userId": {"2"}},
		Body:        []byte(`{"userId": 3}`),
		ContentType: "application/json",
	}

	got := binder.Bind(src, c)
	v, ok := got.Get("userId")
	require.True(t, ok)
	require.Equal(t, int64(3), v)
}

func TestBindQueryOverridesPath(t *testing.T) {
	c := contract(schema.Param{Name: "@userId", Type: schema.ParamInt})

	src := binder.Source{
		Path:  map[string]string{"userId": "1"},
		Query: url.Values{"userID": {"2"}},
	}

	got := binder.Bind(src, c)
	v, _ := got.Get("userId")
	require.Equal(t, int64(2), v)
}

func TestBindIsDeterministic(t *testing.T) {
	c := contract(
		schema.Param{Name: "@userId", Type: schema.ParamInt},
		schema.Param{Name: "@title", Type: schema.ParamText},
		schema.Param{Name: "@done", Type: schema.ParamBool},
	)
	src := binder.Source{
		Path:        map[string]string{"userId": "7"},
		Query:       url.Values{"done": {"true"}},
		Body:        []byte(`{"title": "write tests"}`),
		ContentType: "application/json",
	}

	first := binder.Bind(src, c)
	for i := 0; i < 10; i++ {
		require.Equal(t, first.Values, binder.Bind(src, c).Values)
	}
}

func TestBindMalformedBodyIsEmptyBody(t *testing.T) {
	c := contract(schema.Param{Name: "@title", Type: schema.ParamText})

	src := binder.Source{
		Body:        []byte(`{"title": "broken`),
		ContentType: "application/json",
	}
	got := binder.Bind(src, c)
	v, _ := got.Get("title")
	require.Equal(t, "", v)
}

func TestBindNonJSONBodyIgnored(t *testing.T) {
	c := contract(schema.Param{Name: "@title", Type: schema.ParamText})

	src := binder.Source{
		Body:        []byte(`title=sneaky`),
		ContentType: "application/x-www-form-urlencoded",
	}
	got := binder.Bind(src, c)
	v, _ := got.Get("title")
	require.Equal(t, "", v)
}

func TestBindDefaultsWhenAbsent(t *testing.T) {
	c := contract(
		schema.Param{Name: "@count", Type: schema.ParamInt},
		schema.Param{Name: "@name", Type: schema.ParamText},
		schema.Param{Name: "@flag", Type: schema.ParamBool},
		schema.Param{Name: "@when", Type: schema.ParamTimestamp},
		schema.Param{Name: "@ref", Type: schema.ParamUUID},
		schema.Param{Name: "@blob", Type: schema.ParamPassthrough},
	)

	got := binder.Bind(binder.Source{}, c)

	v, _ := got.Get("count")
	require.Equal(t, int64(0), v)
	v, _ = got.Get("name")
	require.Equal(t, "", v)
	v, _ = got.Get("flag")
	require.Equal(t, false, v)

	v, _ = got.Get("when")
	ts, ok := v.(time.Time)
	require.True(t, ok)
	require.WithinDuration(t, time.Now().UTC(), ts, 5*time.Second)

	// nullable-capable types default to the absent marker
	v, _ = got.Get("ref")
	require.Nil(t, v)
	v, _ = got.Get("blob")
	require.Nil(t, v)
}

func TestBindNeverProducesExtraKeys(t *testing.T) {
	c := contract(schema.Param{Name: "@userId", Type: schema.ParamInt})

	src := binder.Source{
		Query:       url.Values{"userId": {"7"}, "debug": {"1"}},
		Body:        []byte(`{"admin": true}`),
		ContentType: "application/json",
	}
	got := binder.Bind(src, c)
	require.Len(t, got.Values, 1)
}

func TestBindMultiValuedQueryCollapsesToFirst(t *testing.T) {
	c := contract(schema.Param{Name: "@userId", Type: schema.ParamInt})

	src := binder.Source{Query: url.Values{"userId": {"5", "9"}}}
	got := binder.Bind(src, c)
	v, _ := got.Get("userId")
	require.Equal(t, int64(5), v)
}

func TestBindPassthroughKeepsList(t *testing.T) {
	c := contract(schema.Param{Name: "@tags", Type: schema.ParamPassthrough})

	src := binder.Source{Query: url.Values{"tags": {"a", "b"}}}
	got := binder.Bind(src, c)
	v, _ := got.Get("tags")
	require.Equal(t, []any{"a", "b"}, v)
}

func TestOrderedFollowsContractOrder(t *testing.T) {
	c := contract(
		schema.Param{Name: "@b", Type: schema.ParamText},
		schema.Param{Name: "@a", Type: schema.ParamText},
	)
	src := binder.Source{
		Body:        []byte(`{"a": "first", "b": "second"}`),
		ContentType: "application/json",
	}
	got := binder.Bind(src, c)
	require.Equal(t, []any{"second", "first"}, got.Ordered())
}
