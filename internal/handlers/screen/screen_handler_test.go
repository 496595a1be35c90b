package screen

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync/atomic"
	"testing"

	"admin-console/internal/notify"
	"admin-console/internal/screens"
	"admin-console/internal/transport"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type perms []string

func (p perms) HasPermission(key string) bool {
	return key != "" && slices.Contains(p, key)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type usersState struct {
	Items []struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	} `json:"items"`
	Page       int               `json:"page"`
	TotalPages int               `json:"total_pages"`
	Filters    map[string]string `json:"filters"`
}

func newRouter(t *testing.T, p perms, upstream http.HandlerFunc) *gin.Engine {
	t.Helper()
	return newRouterWithNotifier(t, p, upstream, notify.Discard)
}

func newRouterWithNotifier(t *testing.T, p perms, upstream http.HandlerFunc, n notify.Notifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	client, err := transport.New(transport.Config{BaseURL: srv.URL}, nil, nil)
	require.NoError(t, err)

	reg := screens.NewRegistry(screens.Deps{Client: client, Notifier: n})
	t.Cleanup(reg.Close)

	h := NewScreenHandler(reg, p, zap.NewNop())
	r := gin.New()
	g := r.Group("/screens")
	g.GET("", h.ListScreens)
	g.GET("/:kind", h.Mount)
	g.GET("/:kind/state", h.GetState)
	g.POST("/:kind/refresh", h.Refresh)
	g.POST("/:kind/filter", h.SetFilter)
	g.POST("/:kind/page", h.GoToPage)
	g.POST("/:kind/mutations", h.Mutate)
	return r
}

func call(r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func usersUpstream(lists *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/admin/users":
			lists.Add(1)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"status": true,
				"data": map[string]any{
					"items":         []map[string]any{{"id": 42, "status": "active"}},
					"total_pages":   3,
					"total_records": 25,
				},
			})
		case r.Method == http.MethodPut && r.URL.Path == "/admin/users/42/ban":
			_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "message": "User banned"})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "db down"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestListScreens_OnlyVisible(t *testing.T) {
	r := newRouter(t, perms{"users.view"}, http.NotFound)

	w, env := call(r, http.MethodGet, "/screens", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var kinds []screens.Kind
	require.NoError(t, json.Unmarshal(env.Data, &kinds))
	require.Len(t, kinds, 1)
	assert.Equal(t, screens.Users, kinds[0].Name)
}

func TestMount_RequiresViewPermission(t *testing.T) {
	var lists atomic.Int32
	r := newRouter(t, perms{"payments.view"}, usersUpstream(&lists))

	w, env := call(r, http.MethodGet, "/screens/users", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, env.Success)
	assert.Zero(t, lists.Load())

	w, _ = call(r, http.MethodGet, "/screens/landing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMount_ReturnsState(t *testing.T) {
	var lists atomic.Int32
	r := newRouter(t, perms{"users.view"}, usersUpstream(&lists))

	w, env := call(r, http.MethodGet, "/screens/users", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var st usersState
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.Len(t, st.Items, 1)
	assert.Equal(t, int64(42), st.Items[0].ID)
	assert.Equal(t, 3, st.TotalPages)
}

func TestGoToPage_OutOfRangeIsNoop(t *testing.T) {
	var lists atomic.Int32
	r := newRouter(t, perms{"users.view"}, usersUpstream(&lists))
	call(r, http.MethodGet, "/screens/users", nil)

	w, env := call(r, http.MethodPost, "/screens/users/page", PageRequest{Page: 9})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "page out of range", env.Message)
	assert.Equal(t, int32(1), lists.Load())

	w, env = call(r, http.MethodPost, "/screens/users/page", PageRequest{Page: 2})
	require.Equal(t, http.StatusOK, w.Code)
	var st usersState
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, 2, st.Page)
	assert.Equal(t, int32(2), lists.Load())
}

func TestSetFilter(t *testing.T) {
	var lists atomic.Int32
	r := newRouter(t, perms{"users.view"}, usersUpstream(&lists))

	w, env := call(r, http.MethodPost, "/screens/users/filter", FilterRequest{Key: "status", Value: "banned"})
	require.Equal(t, http.StatusOK, w.Code)
	var st usersState
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, "banned", st.Filters["status"])
	assert.Equal(t, 1, st.Page)

	w, _ = call(r, http.MethodPost, "/screens/users/filter", FilterRequest{Key: "search", Value: "jo"})
	assert.Equal(t, http.StatusAccepted, w.Code)

	w, _ = call(r, http.MethodPost, "/screens/users/filter", FilterRequest{Key: "password", Value: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutate(t *testing.T) {
	var lists atomic.Int32
	upstream := usersUpstream(&lists)

	t.Run("view only is forbidden", func(t *testing.T) {
		rec := notify.NewRecorder()
		r := newRouterWithNotifier(t, perms{"users.view"}, upstream, rec)
		w, _ := call(r, http.MethodPost, "/screens/users/mutations", map[string]any{
			"kind": "status_change", "target_id": "42", "action": "ban",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
		require.Len(t, rec.Notices(), 1)
		assert.Equal(t, notify.LevelError, rec.Notices()[0].Level)
		assert.Contains(t, rec.Notices()[0].Message, "permission")
	})

	t.Run("success resyncs", func(t *testing.T) {
		lists.Store(0)
		r := newRouter(t, perms{"users.view", "users.manage"}, upstream)
		w, env := call(r, http.MethodPost, "/screens/users/mutations", map[string]any{
			"kind": "status_change", "target_id": "42", "action": "ban",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "User banned", env.Message)
		assert.Equal(t, int32(1), lists.Load())
	})

	t.Run("upstream failure", func(t *testing.T) {
		r := newRouter(t, perms{"users.view", "users.manage"}, upstream)
		w, _ := call(r, http.MethodPost, "/screens/users/mutations", map[string]any{
			"kind": "delete", "target_id": "42",
		})
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("invalid mutation", func(t *testing.T) {
		r := newRouter(t, perms{"users.view", "users.manage"}, upstream)
		w, _ := call(r, http.MethodPost, "/screens/users/mutations", map[string]any{"kind": "delete"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("read-only screen", func(t *testing.T) {
		r := newRouter(t, perms{"activity.view"}, upstream)
		w, _ := call(r, http.MethodPost, "/screens/activity-logs/mutations", map[string]any{"kind": "delete", "target_id": "1"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
