package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sitechat/widget-ai-platform/internal/analytics"
	"github.com/sitechat/widget-ai-platform/internal/chat"
	"github.com/sitechat/widget-ai-platform/internal/tenant"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

// ChatService is the conversational surface the widget endpoints call.
type ChatService interface {
	StartChat(ctx context.Context, tenantID, visitorID string) (*chat.Reply, error)
	SendMessage(ctx context.Context, tenantID, visitorID, message string) (*chat.Reply, error)
}

// StartTracker records session starts off the request path.
type StartTracker interface {
	SubmitStart(tenantID, visitorID, ip string) bool
}

// ProfileReader resolves the public widget settings.
type ProfileReader interface {
	Get(ctx context.Context, tenantID string) (tenant.Profile, error)
}

// WidgetHandler serves the public endpoints the embedded widget talks to.
type WidgetHandler struct {
	chat     ChatService
	profiles ProfileReader
	tracker  StartTracker
	ipLookup *analytics.IPLookup
	logger   *logging.Logger
}

func NewWidgetHandler(chatSvc ChatService, profiles ProfileReader, tracker StartTracker, ipLookup *analytics.IPLookup, logger *logging.Logger) *WidgetHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WidgetHandler{
		chat:     chatSvc,
		profiles: profiles,
		tracker:  tracker,
		ipLookup: ipLookup,
		logger:   logger,
	}
}

type startRequest struct {
	TenantID  string `json:"tenantId"`
	VisitorID string `json:"visitorId,omitempty"`
}

type messageRequest struct {
	TenantID  string `json:"tenantId"`
	VisitorID string `json:"visitorId"`
	Message   string `json:"message"`
}

// HandleStart opens a conversation and returns the greeting.
func (h *WidgetHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.TenantID) == "" {
		http.Error(w, "tenantId is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.VisitorID) == "" {
		req.VisitorID = uuid.NewString()
	}

	reply, err := h.chat.StartChat(r.Context(), req.TenantID, req.VisitorID)
	if err != nil {
		h.writeChatError(w, req.TenantID, err)
		return
	}

	if h.tracker != nil {
		h.tracker.SubmitStart(req.TenantID, req.VisitorID, h.visitorIP(r))
	}

	writeJSON(w, http.StatusOK, reply)
}

// HandleMessage produces the assistant reply for one visitor message.
func (h *WidgetHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.TenantID) == "" || strings.TrimSpace(req.VisitorID) == "" {
		http.Error(w, "tenantId and visitorId are required", http.StatusBadRequest)
		return
	}

	reply, err := h.chat.SendMessage(r.Context(), req.TenantID, req.VisitorID, req.Message)
	if err != nil {
		h.writeChatError(w, req.TenantID, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// HandleSettings returns the public, embed-safe slice of a tenant's profile.
func (h *WidgetHandler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant")
	if tenantID == "" {
		http.Error(w, "tenant parameter required", http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.Get(r.Context(), tenantID)
	if err != nil {
		h.writeChatError(w, tenantID, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.Public())
}

func (h *WidgetHandler) writeChatError(w http.ResponseWriter, tenantID string, err error) {
	switch {
	case errors.Is(err, tenant.ErrNotFound):
		http.Error(w, "unknown tenant", http.StatusNotFound)
	case errors.Is(err, chat.ErrEmptyMessage):
		http.Error(w, "message is required", http.StatusBadRequest)
	default:
		h.logger.Error("widget request failed", "tenant_id", tenantID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// visitorIP prefers the request's address; behind NAT in local setups it
// falls back to the external lookup.
func (h *WidgetHandler) visitorIP(r *http.Request) string {
	addr := r.RemoteAddr
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		addr = xri
	}
	if !analytics.IsPrivateAddr(addr) {
		return trimPort(addr)
	}
	if h.ipLookup == nil {
		return trimPort(addr)
	}
	ip, err := h.ipLookup.PublicIP(r.Context())
	if err != nil {
		h.logger.Warn("public ip lookup failed", "error", err)
		return trimPort(addr)
	}
	return ip
}

func trimPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
