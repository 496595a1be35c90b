// internal/handlers/journal/journal_handler.go
package journal

import (
	"context"
	"net/http"
	"strconv"

	"admin-console/internal/domain/journal"
	"admin-console/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Lister reads recent journal entries.
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]journal.Entry, error)
}

type JournalHandler struct {
	journal Lister
	logger  *zap.Logger
}

func NewJournalHandler(journal Lister, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		journal: journal,
		logger:  logger,
	}
}

// ListRecent returns the newest mutation attempts
func (h *JournalHandler) ListRecent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(c, http.StatusBadRequest, "limit must be a positive integer", err)
			return
		}
		limit = n
	}

	entries, err := h.journal.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list journal", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to list journal", err)
		return
	}

	response.Success(c, http.StatusOK, "journal retrieved", entries)
}
