package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasklight/tasklight-core/pkg/binder"
	"github.com/tasklight/tasklight-core/pkg/executor"
	"github.com/tasklight/tasklight-core/pkg/identity"
	"github.com/tasklight/tasklight-core/pkg/schema"
)

type stubInvoker struct {
	res executor.Result
	err error
}

func (s *stubInvoker) Invoke(context.Context, string, binder.BoundParams) (executor.Result, error) {
	return s.res, s.err
}

type stubIssuer struct {
	token string
	err   error

	gotKey  string
	gotName string
}

func (s *stubIssuer) Issue(key, name, _ string, _ map[string]any) (string, error) {
	s.gotKey, s.gotName = key, name
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

var verifyContract = schema.Contract{
	Operation: "account_verify",
	Params: []schema.Param{
		{Name: "@username", Type: schema.ParamText},
		{Name: "@password", Type: schema.ParamText},
	},
}

var createContract = schema.Contract{
	Operation: "account_create",
	Params: []schema.Param{
		{Name: "@username", Type: schema.ParamText},
		{Name: "@password", Type: schema.ParamText},
		{Name: "@displayName", Type: schema.ParamText},
		{Name: "@email", Type: schema.ParamText},
	},
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func verifyHandler(inv *stubInvoker, iss identity.TokenIssuer) http.HandlerFunc {
	h := identity.NewHandlers(executor.New(inv), iss, zap.NewNop())
	return h.Verify(schema.Endpoint{ID: "auth-verify", Operation: "account_verify"}, verifyContract)
}

func createHandler(inv *stubInvoker, iss identity.TokenIssuer) http.HandlerFunc {
	h := identity.NewHandlers(executor.New(inv), iss, zap.NewNop())
	return h.Create(schema.Endpoint{ID: "auth-register", Operation: "account_create"}, createContract)
}

func TestVerifyZeroRecordsIsUnauthorized(t *testing.T) {
	w := post(verifyHandler(&stubInvoker{}, &stubIssuer{token: "tok"}),
		`{"username": "kim", "password": "pw"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyRecordWithoutKeyOrNameIsUnauthorized(t *testing.T) {
	inv := &stubInvoker{res: executor.Result{Records: []executor.Record{{"other": "x"}}}}
	w := post(verifyHandler(inv, &stubIssuer{token: "tok"}), `{}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifySuccessIssuesToken(t *testing.T) {
	inv := &stubInvoker{res: executor.Result{Records: []executor.Record{
		{"account_key": "abc-123", "display_name": "Kim", "email": "kim@example.com"},
	}}}
	iss := &stubIssuer{token: "signed-token"}

	w := post(verifyHandler(inv, iss), `{"username": "kim", "password": "pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "abc-123", iss.gotKey)
	require.Equal(t, "Kim", iss.gotName)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "signed-token", body["token"])
	require.Equal(t, "Kim", body["displayName"])
}

func TestVerifyFallsBackToSuppliedDisplayName(t *testing.T) {
	inv := &stubInvoker{res: executor.Result{Records: []executor.Record{
		{"account_key": "abc-123"},
	}}}
	iss := &stubIssuer{token: "tok"}

	w := post(verifyHandler(inv, iss), `{"username": "kim", "password": "pw"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "kim", iss.gotName)
}

func TestVerifyBackendFailure(t *testing.T) {
	inv := &stubInvoker{err: errors.New("db down")}
	w := post(verifyHandler(inv, &stubIssuer{token: "tok"}), `{}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreateConflictOnNonPositiveCode(t *testing.T) {
	// conflict wins even when the backend echoes a key
	for _, code := range []int64{0, -1} {
		inv := &stubInvoker{res: executor.Result{Records: []executor.Record{
			{"result": code, "account_key": "abc-123"},
		}}}
		w := post(createHandler(inv, &stubIssuer{token: "tok"}),
			`{"username": "kim", "password": "pw", "displayName": "Kim"}`)
		require.Equal(t, http.StatusConflict, w.Code)
	}
}

func TestCreateMissingKeyIsRejected(t *testing.T) {
	inv := &stubInvoker{res: executor.Result{Records: []executor.Record{
		{"result": int64(1)},
	}}}
	w := post(createHandler(inv, &stubIssuer{token: "tok"}), `{"username": "kim"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateZeroRecordsIsRejected(t *testing.T) {
	w := post(createHandler(&stubInvoker{}, &stubIssuer{token: "tok"}), `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSuccessReturnsProfile(t *testing.T) {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	inv := &stubInvoker{res: executor.Result{Records: []executor.Record{{
		"result":       int64(1),
		"account_key":  "abc-123",
		"display_name": "Kim",
		"email":        "kim@example.com",
		"created_at":   created,
	}}}}

	w := post(createHandler(inv, &stubIssuer{token: "tok"}),
		`{"username": "kim", "password": "pw", "displayName": "Kim", "email": "kim@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var p identity.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, "abc-123", p.AccountKey)
	require.Equal(t, "Kim", p.DisplayName)
	require.Equal(t, "tok", p.Token)
	require.True(t, created.Equal(p.CreatedAt))
}

func TestCreateDefaultsCreatedAtToNow(t *testing.T) {
	inv := &stubInvoker{res: executor.Result{Records: []executor.Record{{
		"result": int64(1), "account_key": "abc-123", "display_name": "Kim",
	}}}}

	w := post(createHandler(inv, &stubIssuer{token: "tok"}), `{"username": "kim"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var p identity.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.WithinDuration(t, time.Now().UTC(), p.CreatedAt, 5*time.Second)
}
