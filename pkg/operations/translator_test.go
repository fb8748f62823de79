package operations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dukex/operion-kerio/pkg/kerio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcCall struct {
	Path   string
	Header http.Header
	Body   map[string]any
	Raw    []byte
}

// groupwareServer stands in for the webmail JSON-RPC endpoint.
type groupwareServer struct {
	*httptest.Server

	mu        sync.Mutex
	calls     []rpcCall
	responses map[string]string
	setCookie string
}

func newGroupwareServer(t *testing.T) *groupwareServer {
	t.Helper()

	s := &groupwareServer{responses: map[string]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)

		call := rpcCall{Path: r.URL.Path, Header: r.Header.Clone(), Raw: raw}
		_ = json.Unmarshal(raw, &call.Body)

		s.mu.Lock()
		s.calls = append(s.calls, call)
		method, _ := call.Body["method"].(string)
		if r.URL.Path == kerio.UploadPath {
			method = kerio.UploadMethod
		}
		response, ok := s.responses[method]
		cookie := s.setCookie
		s.mu.Unlock()

		if cookie != "" && method == kerio.LoginMethod {
			w.Header().Add("Set-Cookie", cookie)
		}

		if !ok {
			response = `{"jsonrpc":"2.0","result":{}}`
		}

		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *groupwareServer) respond(method, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.responses[method] = body
}

func (s *groupwareServer) recorded() []rpcCall {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]rpcCall(nil), s.calls...)
}

func (s *groupwareServer) session() kerio.Session {
	return kerio.Session{BaseURL: s.URL, Token: "T", Cookie: "SID=abc"}
}

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestTranslator(opts ...Option) *Translator {
	defaults := []Option{
		WithLocation(time.FixedZone("CET", 60*60)),
		WithClock(func() time.Time { return fixedNow }),
	}

	return NewTranslator(kerio.NewClient(), append(defaults, opts...)...)
}

func params(t *testing.T, call rpcCall) map[string]any {
	t.Helper()

	p, ok := call.Body["params"].(map[string]any)
	require.True(t, ok, "params missing in %s", string(call.Raw))

	return p
}

func TestExecute_EveryDescriptorCallsItsMethod(t *testing.T) {
	sampleFields := Fields{
		"fromEmail":    "me@example.com",
		"to":           map[string]any{"recipients": []any{map[string]any{"email": "you@example.com"}}},
		"subject":      "hi",
		"eventStart":   "2025-06-01T10:00:00Z",
		"eventEnd":     "2025-06-01T11:00:00Z",
		"mailIdForGet": "m1",
	}

	for _, d := range Descriptors() {
		if !d.SingleRequest() {
			continue
		}

		t.Run(d.Resource+"/"+d.Operation, func(t *testing.T) {
			server := newGroupwareServer(t)

			_, err := newTestTranslator().Execute(context.Background(), server.session(), d.Resource, d.Operation, sampleFields)
			require.NoError(t, err)

			calls := server.recorded()
			require.Len(t, calls, 1)
			assert.Equal(t, kerio.APIPath, calls[0].Path)
			assert.Equal(t, kerio.ContentType, calls[0].Header.Get("Content-Type"))
			assert.Equal(t, "T", calls[0].Header.Get(kerio.HeaderToken))
			assert.Equal(t, "SID=abc", calls[0].Header.Get(kerio.HeaderCookie))
			assert.Equal(t, "2.0", calls[0].Body["jsonrpc"])

			if d.Operation != "deleteMail" {
				assert.Equal(t, d.Method, calls[0].Body["method"])
				assert.InDelta(t, d.ID, calls[0].Body["id"], 0)
			}
		})
	}
}

func TestExecute_UnsupportedOperation(t *testing.T) {
	server := newGroupwareServer(t)
	translator := newTestTranslator()

	_, err := translator.Execute(context.Background(), server.session(), "mails", "explode", nil)
	require.Error(t, err)
	assert.True(t, kerio.IsUnsupportedOperation(err))
	assert.Equal(t, "unsupported operation: mails/explode", err.Error())

	_, err = translator.Execute(context.Background(), server.session(), "printer", "print", nil)
	require.Error(t, err)
	assert.True(t, kerio.IsUnsupportedOperation(err))
	assert.Equal(t, "unsupported resource: printer", err.Error())

	assert.Empty(t, server.recorded())
}

func TestExecute_NoParamsForQuotaAndAutoResponder(t *testing.T) {
	for _, op := range [][2]string{{"misc", "getQuota"}, {"autoresponder", "getAutoResponder"}} {
		server := newGroupwareServer(t)

		_, err := newTestTranslator().Execute(context.Background(), server.session(), op[0], op[1], nil)
		require.NoError(t, err)
		assert.NotContains(t, server.recorded()[0].Body, "params", op[1])
	}
}

func TestExecute_GetFoldersIsDeterministic(t *testing.T) {
	server := newGroupwareServer(t)
	translator := newTestTranslator()

	for range 2 {
		_, err := translator.Execute(context.Background(), server.session(), "folder", "getFolders", nil)
		require.NoError(t, err)
	}

	calls := server.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Raw, calls[1].Raw)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":5,"method":"Folders.get","params":{}}`, string(calls[0].Raw))
}

func TestExecute_PassesResultThrough(t *testing.T) {
	server := newGroupwareServer(t)
	server.respond("Session.whoAmI", `{"jsonrpc":"2.0","id":7,"result":{"userDetails":{"loginName":"jdoe"}}}`)

	result, err := newTestTranslator().Execute(context.Background(), server.session(), "misc", "getAccountDetails", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"userDetails": map[string]any{"loginName": "jdoe"}}, result)
}

func TestExecute_APIErrorSurfaces(t *testing.T) {
	server := newGroupwareServer(t)
	server.respond("Mails.get", `{"jsonrpc":"2.0","error":{"code":-32001,"message":"Session expired."}}`)

	_, err := newTestTranslator().Execute(context.Background(), server.session(), "mails", "getMails", Fields{"mailFolderId": "inbox"})
	require.Error(t, err)
	assert.True(t, kerio.IsAPIError(err))
}

func TestLogin(t *testing.T) {
	server := newGroupwareServer(t)
	server.mu.Lock()
	server.setCookie = "SID=abc; Path=/"
	server.mu.Unlock()
	server.respond(kerio.LoginMethod, `{"jsonrpc":"2.0","id":1,"result":{"token":"T"}}`)

	translator := newTestTranslator(WithCredentials("fallback", "nope"))
	result, err := translator.Execute(context.Background(), kerio.Session{BaseURL: server.URL}, "authentication", "login", Fields{
		"username": "admin",
		"password": "x",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"token": "T", "cookie": "SID=abc"}, result)

	calls := server.recorded()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Header.Get(kerio.HeaderToken))

	var body map[string]any
	require.NoError(t, json.Unmarshal(calls[0].Raw, &body))
	assert.Equal(t, "Session.login", body["method"])
	p := body["params"].(map[string]any)
	assert.Equal(t, "admin", p["userName"])
	assert.Equal(t, "x", p["password"])
}

func TestLogout(t *testing.T) {
	server := newGroupwareServer(t)

	_, err := newTestTranslator().Execute(context.Background(), server.session(), "authentication", "logout", nil)
	require.NoError(t, err)

	call := server.recorded()[0]
	assert.Empty(t, call.Header.Get(kerio.HeaderToken))
	assert.Equal(t, "SID=abc", call.Header.Get(kerio.HeaderCookie))
	assert.Equal(t, map[string]any{"token": "T"}, params(t, call))
}

func TestBuild_RejectsMultiStep(t *testing.T) {
	_, err := newTestTranslator().Build("delegation", "addDelegateUsers", nil)
	assert.Error(t, err)

	req, err := newTestTranslator().Build("misc", "getAlarm", Fields{"since": "20250101T000000+0000", "until": "20250201T000000+0000"})
	require.NoError(t, err)
	assert.Equal(t, "Alarms.get", req.Method)
	assert.Equal(t, 11, req.ID)
	assert.Equal(t, map[string]any{"since": "20250101T000000+0000", "until": "20250201T000000+0000"}, req.Params)
}

func TestDescriptors_AreUnique(t *testing.T) {
	seen := map[string]bool{}

	for _, d := range Descriptors() {
		k := d.Resource + "/" + d.Operation
		assert.False(t, seen[k], "duplicate descriptor %s", k)
		seen[k] = true
	}

	assert.Len(t, seen, 51)
	assert.Equal(t, []string{
		"authentication", "autoresponder", "folder", "mails", "misc",
		"calendar", "contact", "task", "notes", "delegation",
	}, Resources())
}
