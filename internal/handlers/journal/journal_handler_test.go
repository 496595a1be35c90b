package journal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"admin-console/internal/domain/journal"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeLister struct {
	limit int
	err   error
}

func (f *fakeLister) ListRecent(_ context.Context, limit int) ([]journal.Entry, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return []journal.Entry{{ID: "01A", Resource: "users", Outcome: journal.OutcomeSucceeded}}, nil
}

func serve(l Lister, target string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/journal", NewJournalHandler(l, zap.NewNop()).ListRecent)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListRecent(t *testing.T) {
	l := &fakeLister{}

	w := serve(l, "/journal?limit=20")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, l.limit)
	assert.Contains(t, w.Body.String(), `"resource":"users"`)

	w = serve(l, "/journal")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, l.limit)

	w = serve(l, "/journal?limit=-3")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(&fakeLister{err: errors.New("pool closed")}, "/journal")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
