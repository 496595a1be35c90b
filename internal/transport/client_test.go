package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	xerrors "admin-console/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

func newClient(t *testing.T, srv *httptest.Server, tokens TokenSource, timeout time.Duration) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: srv.URL + "/api", Timeout: timeout}, tokens, nil)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDo_AttachesBearerAndDecodesData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, map[string]any{
			"status": true,
			"data":   map[string]any{"name": "jo"},
		})
	}))
	defer srv.Close()

	c := newClient(t, srv, staticToken("tok-1"), 0)
	var out struct {
		Name string `json:"name"`
	}
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/admin/users",
		Query:  map[string][]string{"page": {"2"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "jo", out.Name)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"status": true})
	}))
	defer srv.Close()

	c := newClient(t, srv, staticToken(""), 0)
	_, err := c.Do(context.Background(), Request{Path: "admin/login"}, nil)
	require.NoError(t, err)
}

func TestDo_ClassifiesStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		kind   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, kind: xerrors.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, kind: xerrors.ErrForbidden},
		{name: "not found", status: http.StatusNotFound, kind: xerrors.ErrNotFound},
		{name: "server", status: http.StatusBadGateway, kind: xerrors.ErrServer},
		{
			name:   "validation 422",
			status: http.StatusUnprocessableEntity,
			body:   map[string]any{"status": false, "errors": map[string]any{"email": "is invalid"}},
			kind:   xerrors.ErrValidation,
		},
		{
			name:   "validation 400 with fields",
			status: http.StatusBadRequest,
			body:   map[string]any{"status": false, "errors": []map[string]any{{"field": "name", "message": "required"}}},
			kind:   xerrors.ErrValidation,
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			body:   map[string]any{"status": false, "message": "nope"},
			kind:   xerrors.ErrBadRequest,
		},
		{
			name:   "status false on 200",
			status: http.StatusOK,
			body:   map[string]any{"status": false, "message": "already banned"},
			kind:   xerrors.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body := tt.body
				if body == nil {
					body = map[string]any{"status": false}
				}
				writeJSON(w, tt.status, body)
			}))
			defer srv.Close()

			c := newClient(t, srv, staticToken("tok"), 0)
			_, err := c.Do(context.Background(), Request{Path: "x"}, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestDo_FieldErrorsAreKeptSeparate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status": false,
			"errors": map[string]any{
				"title":   []string{"is required", "is too short"},
				"subject": "is required",
			},
		})
	}))
	defer srv.Close()

	c := newClient(t, srv, staticToken("tok"), 0)
	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "templates", Body: map[string]string{}}, nil)
	apiErr, ok := xerrors.As(err)
	require.True(t, ok)
	assert.Equal(t, []xerrors.FieldError{
		{Field: "subject", Message: "is required"},
		{Field: "title", Message: "is required"},
		{Field: "title", Message: "is too short"},
	}, apiErr.Fields)
	assert.Len(t, xerrors.Notices(err, "template"), 3)
}

func TestDo_UnauthorizedHookGetsSentToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": false})
	}))
	defer srv.Close()

	c := newClient(t, srv, staticToken("tok-9"), 0)
	var got string
	c.OnUnauthorized(func(_ context.Context, token string) { got = token })

	_, err := c.Do(context.Background(), Request{Path: "x"}, nil)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	assert.Equal(t, "tok-9", got)
}

func TestDo_AnonymousRequestSkipsTokenAndHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": false, "message": "bad credentials"})
	}))
	defer srv.Close()

	c := newClient(t, srv, staticToken("tok-1"), 0)
	var called atomic.Bool
	c.OnUnauthorized(func(context.Context, string) { called.Store(true) })

	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "admin/login", Anonymous: true}, nil)
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
	assert.False(t, called.Load())
}

func TestDo_ForbiddenDoesNotTriggerHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"status": false})
	}))
	defer srv.Close()

	c := newClient(t, srv, staticToken("tok"), 0)
	called := false
	c.OnUnauthorized(func(context.Context, string) { called = true })

	_, err := c.Do(context.Background(), Request{Path: "x"}, nil)
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
	assert.False(t, called)
}

func TestDo_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := newClient(t, srv, nil, 50*time.Millisecond)
	_, err := c.Do(context.Background(), Request{Path: "slow"}, nil)
	assert.ErrorIs(t, err, xerrors.ErrNetwork)
	assert.True(t, IsTimeout(err))
}

func TestDo_NoRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": false})
	}))
	defer srv.Close()

	c := newClient(t, srv, staticToken("tok"), 0)
	_, err := c.Do(context.Background(), Request{Method: http.MethodDelete, Path: "payments/1"}, nil)
	assert.ErrorIs(t, err, xerrors.ErrServer)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"}, nil, nil)
	require.Error(t, err)
}
