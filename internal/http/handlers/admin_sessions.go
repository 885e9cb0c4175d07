package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sitechat/widget-ai-platform/internal/analytics"
	"github.com/sitechat/widget-ai-platform/internal/tenancy"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

// SessionLister reads session analytics for the admin API.
type SessionLister interface {
	ListSessions(ctx context.Context, tenantID string, limit int) ([]analytics.Session, error)
}

// AdminSessionsHandler exposes per-tenant session analytics.
type AdminSessionsHandler struct {
	sessions SessionLister
	logger   *logging.Logger
}

func NewAdminSessionsHandler(sessions SessionLister, logger *logging.Logger) *AdminSessionsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminSessionsHandler{sessions: sessions, logger: logger}
}

// ListSessions handles GET /admin/tenants/{tenantID}/sessions.
func (h *AdminSessionsHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "tenantID is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	sessions, err := h.sessions.ListSessions(r.Context(), tenantID, limit)
	if err != nil {
		h.logger.Error("failed to list sessions", "tenant_id", tenantID, "error", err)
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}
