package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dukex/operion-kerio/pkg/credentials"
	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/dukex/operion-kerio/pkg/registry"
	"github.com/dukex/operion-kerio/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type upstreamCall struct {
	header http.Header
	body   map[string]any
}

type upstream struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []upstreamCall
	responses map[string]string
}

func newUpstream(t *testing.T, responses map[string]string) *upstream {
	t.Helper()

	u := &upstream{responses: responses}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		u.mu.Lock()
		u.calls = append(u.calls, upstreamCall{header: r.Header.Clone(), body: body})
		u.mu.Unlock()

		method, _ := body["method"].(string)
		if method == kerio.LoginMethod {
			w.Header().Add("Set-Cookie", "SID=web; HttpOnly")
		}

		response, ok := u.responses[method]
		if !ok {
			response = `{"jsonrpc":"2.0","result":{}}`
		}

		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(u.Close)

	return u
}

func (u *upstream) recorded() []upstreamCall {
	u.mu.Lock()
	defer u.mu.Unlock()

	return append([]upstreamCall(nil), u.calls...)
}

func setupTestApp(t *testing.T, defaults credentials.Credentials) *fiber.App {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultNodes()

	handlers := web.NewAPIHandlers(slog.Default(), validator.New(validator.WithRequiredStructEnabled()), reg, defaults)

	app := fiber.New()
	handlers.Register(app)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}

	return resp.StatusCode, decoded
}

func accountFor(u *upstream) credentials.Credentials {
	return credentials.Credentials{ServerURL: u.URL, Username: "jdoe", Password: "s3cret"}
}

func TestGetOperations(t *testing.T) {
	app := setupTestApp(t, credentials.Credentials{})

	status, body := doJSON(t, app, http.MethodGet, "/operations", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["operations"], 51)
	assert.Contains(t, body["resources"], "delegation")

	status, body = doJSON(t, app, http.MethodGet, "/operations?resource=notes", nil)
	assert.Equal(t, http.StatusOK, status)

	for _, op := range body["operations"].([]any) {
		assert.Equal(t, "notes", op.(map[string]any)["resource"])
	}

	status, body = doJSON(t, app, http.MethodGet, "/operations?resource=bogus", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "unsupported_operation", body["type"])
}

func TestGetNodeTypes(t *testing.T) {
	app := setupTestApp(t, credentials.Credentials{})

	req := httptest.NewRequest(http.MethodGet, "/nodes", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	var nodes []web.NodeTypeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&nodes))
	require.Len(t, nodes, 4)
	assert.Equal(t, "kerio:auth", nodes[0].ID)
	assert.NotEmpty(t, nodes[0].Schema)
}

func TestCreateSession(t *testing.T) {
	u := newUpstream(t, map[string]string{
		kerio.LoginMethod: `{"jsonrpc":"2.0","id":1,"result":{"token":"web-token"}}`,
	})
	app := setupTestApp(t, accountFor(u))

	status, body := doJSON(t, app, http.MethodPost, "/sessions", nil)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "web-token", body["token"])
	assert.Equal(t, "SID=web", body["cookie"])

	status, _ = doJSON(t, app, http.MethodPost, "/sessions", web.LoginRequest{Username: "other", Password: "pw"})
	assert.Equal(t, http.StatusCreated, status)

	calls := u.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "jdoe", calls[0].body["params"].(map[string]any)["userName"])
	assert.Equal(t, "other", calls[1].body["params"].(map[string]any)["userName"])
}

func TestCreateSession_InvalidCredentials(t *testing.T) {
	u := newUpstream(t, map[string]string{
		kerio.LoginMethod: `{"jsonrpc":"2.0","id":1,"error":{"code":1000,"message":"Invalid user name or password"}}`,
	})
	app := setupTestApp(t, accountFor(u))

	status, body := doJSON(t, app, http.MethodPost, "/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid_credentials", body["type"])
	assert.InDelta(t, 1000, body["code"], 0)
}

func TestCreateSession_MissingAccount(t *testing.T) {
	app := setupTestApp(t, credentials.Credentials{})

	status, body := doJSON(t, app, http.MethodPost, "/sessions", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["type"])

	status, _ = doJSON(t, app, http.MethodPost, "/sessions", map[string]any{"serverUrl": "not a url", "username": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDeleteSession(t *testing.T) {
	u := newUpstream(t, nil)
	app := setupTestApp(t, accountFor(u))

	status, _ := doJSON(t, app, http.MethodDelete, "/sessions", web.SessionRequest{Token: "T", Cookie: "SID=abc"})
	assert.Equal(t, http.StatusNoContent, status)

	calls := u.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, kerio.LogoutMethod, calls[0].body["method"])
	assert.Equal(t, map[string]any{"token": "T"}, calls[0].body["params"])
	assert.Empty(t, calls[0].header.Get(kerio.HeaderToken))
	assert.Equal(t, "SID=abc", calls[0].header.Get(kerio.HeaderCookie))

	status, _ = doJSON(t, app, http.MethodDelete, "/sessions", web.SessionRequest{})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestTestCredentials(t *testing.T) {
	u := newUpstream(t, map[string]string{
		kerio.LoginMethod: `{"jsonrpc":"2.0","id":1,"result":{"token":"t"}}`,
	})
	app := setupTestApp(t, accountFor(u))

	status, body := doJSON(t, app, http.MethodPost, "/credentials/test", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, kerio.CredentialTestSuccess, body["message"])
}

func TestExecute(t *testing.T) {
	u := newUpstream(t, map[string]string{
		"Folders.get": `{"jsonrpc":"2.0","id":5,"result":{"list":[{"id":"f1"}]}}`,
		"Notes.get":   `{"jsonrpc":"2.0","error":{"code":-32001,"message":"Session expired."}}`,
	})
	app := setupTestApp(t, accountFor(u))

	status, body := doJSON(t, app, http.MethodPost, "/execute", web.ExecuteRequest{
		Resource:  "folder",
		Operation: "getFolders",
		Token:     "T",
		Cookie:    "SID=abc",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "getFolders", body["operation"])
	assert.Equal(t, map[string]any{"list": []any{map[string]any{"id": "f1"}}}, body["result"])
	assert.Equal(t, "T", u.recorded()[0].header.Get(kerio.HeaderToken))

	status, body = doJSON(t, app, http.MethodPost, "/execute", web.ExecuteRequest{Resource: "notes", Operation: "getNotes", Token: "T"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "api_error", body["type"])
	assert.InDelta(t, -32001, body["code"], 0)

	status, body = doJSON(t, app, http.MethodPost, "/execute", web.ExecuteRequest{Resource: "folder", Operation: "explode"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "unsupported_operation", body["type"])

	status, body = doJSON(t, app, http.MethodPost, "/execute", web.ExecuteRequest{Resource: "mails", Operation: "sendMail"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation_error", body["type"])

	status, _ = doJSON(t, app, http.MethodPost, "/execute", map[string]any{"operation": "getFolders"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestExecute_TransportError(t *testing.T) {
	u := newUpstream(t, nil)
	account := accountFor(u)
	u.Close()

	app := setupTestApp(t, account)

	status, body := doJSON(t, app, http.MethodPost, "/execute", web.ExecuteRequest{Resource: "misc", Operation: "getQuota"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "transport_error", body["type"])
}

func TestServerOverride_DoesNotReuseConfiguredAccount(t *testing.T) {
	configured := newUpstream(t, nil)
	other := newUpstream(t, map[string]string{
		kerio.LoginMethod: `{"jsonrpc":"2.0","id":1,"result":{"token":"other-token"}}`,
	})
	app := setupTestApp(t, accountFor(configured))

	status, _ := doJSON(t, app, http.MethodPost, "/sessions", web.LoginRequest{ServerURL: other.URL})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doJSON(t, app, http.MethodPost, "/credentials/test", web.LoginRequest{ServerURL: other.URL})
	assert.Equal(t, http.StatusBadRequest, status)

	doJSON(t, app, http.MethodPost, "/execute", web.ExecuteRequest{
		ServerURL: other.URL,
		Resource:  "authentication",
		Operation: "login",
	})

	status, _ = doJSON(t, app, http.MethodPost, "/sessions", web.LoginRequest{ServerURL: other.URL, Username: "eve", Password: "pw"})
	assert.Equal(t, http.StatusCreated, status)

	calls := other.recorded()
	require.Len(t, calls, 2)

	for _, call := range calls {
		params := call.body["params"].(map[string]any)
		assert.NotEqual(t, "s3cret", params["password"])
		assert.NotEqual(t, "jdoe", params["userName"])
	}

	assert.Equal(t, "eve", calls[1].body["params"].(map[string]any)["userName"])
	assert.Empty(t, configured.recorded())
}

func TestServerOverride_SameServerKeepsAccount(t *testing.T) {
	u := newUpstream(t, map[string]string{
		kerio.LoginMethod: `{"jsonrpc":"2.0","id":1,"result":{"token":"t"}}`,
	})
	app := setupTestApp(t, accountFor(u))

	status, _ := doJSON(t, app, http.MethodPost, "/sessions", web.LoginRequest{ServerURL: u.URL + "/"})
	assert.Equal(t, http.StatusCreated, status)

	calls := u.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, "s3cret", calls[0].body["params"].(map[string]any)["password"])
}
