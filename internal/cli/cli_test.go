package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	xerrors "admin-console/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal admin API that remembers issued tokens.
type fakeAPI struct {
	mu       sync.Mutex
	requests []string
	revoked  bool
}

func (f *fakeAPI) revoke() {
	f.mu.Lock()
	f.revoked = true
	f.mu.Unlock()
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
	revoked := f.revoked
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	authed := !revoked && r.Header.Get("Authorization") == "Bearer tok-cli"
	switch {
	case r.URL.Path == "/api/admin/login":
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": map[string]any{"token": "tok-cli"}})
	case !authed:
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "unauthenticated"})
	case r.URL.Path == "/api/admin/profile":
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": map[string]any{
			"id": 9, "full_name": "Ada", "email": "ada@example.com",
			"permissions": []string{"users.view", "users.manage"},
		}})
	case r.URL.Path == "/api/admin/users" && r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": map[string]any{
			"items":       []map[string]any{{"id": 42, "name": "Jo", "status": "active"}},
			"total_pages": 2, "total_records": 11,
		}})
	case r.URL.Path == "/api/admin/users/42/ban":
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "message": "User banned"})
	case r.URL.Path == "/api/admin/logout":
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeAPI) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func setupEnv(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	t.Setenv("CONSOLE_API_BASE_URL", srv.URL+"/api")
	t.Setenv("CONSOLE_CRED_BACKEND", "file")
	t.Setenv("CONSOLE_CRED_FILE", filepath.Join(t.TempDir(), "credentials.yaml"))
	t.Setenv("CONSOLE_STORE_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "")
	return api
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLI_SessionLifecycle(t *testing.T) {
	api := setupEnv(t)

	_, _, err := run(t, "", "whoami")
	require.ErrorIs(t, err, errNotSignedIn)

	out, _, err := run(t, "s3cret\n", "login", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ada <ada@example.com>")

	// The principal is not persisted: a fresh process reloads it.
	out, _, err = run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, "users")
	assert.NotContains(t, out, "payments")

	out, _, err = run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	assert.Equal(t, "POST /api/admin/logout?", api.last())

	_, _, err = run(t, "", "list", "users")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestCLI_ListAndMutate(t *testing.T) {
	api := setupEnv(t)
	_, _, err := run(t, "", "login", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)

	out, _, err := run(t, "", "list", "users", "--filter", "status=active", "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "users: page 2 of 2 (11 records)")
	assert.Contains(t, out, "filters: status=active")
	assert.Contains(t, out, `"name":"Jo"`)
	assert.Equal(t, "GET /api/admin/users?page=2&status=active", api.last())

	out, _, err = run(t, "", "-o", "json", "list", "users")
	require.NoError(t, err)
	var page screenPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Len(t, page.Items, 1)

	_, stderr, err := run(t, "", "mutate", "users", "status", "42", "--action", "ban")
	require.NoError(t, err)
	assert.Contains(t, stderr, "[success] User banned")

	_, _, err = run(t, "", "mutate", "users", "delete")
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, _, err = run(t, "", "mutate", "payments", "delete", "7")
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	_, _, err = run(t, "", "list", "users", "--filter", "oops")
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCLI_RejectedTokenPrintsOneNotice(t *testing.T) {
	api := setupEnv(t)
	_, _, err := run(t, "", "login", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)

	api.revoke()
	_, stderr, err := run(t, "", "whoami")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	assert.Equal(t, 1, strings.Count(stderr, "[warning]"))
	assert.Contains(t, stderr, "Sign in again")

	// The token was removed, so the next command does not reach the API.
	_, _, err = run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestCLI_UnreadableStoreFailsClosed(t *testing.T) {
	setupEnv(t)
	_, _, err := run(t, "", "login", "--email", "ada@example.com", "--password", "pw")
	require.NoError(t, err)

	t.Setenv("CONSOLE_STORE_SECRET", "other-secret")
	_, _, err = run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestCLI_RejectsUnknownOutput(t *testing.T) {
	setupEnv(t)
	_, _, err := run(t, "", "-o", "yaml", "screens")
	assert.ErrorContains(t, err, "unsupported output format")
}
