package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sitechat/widget-ai-platform/internal/chat"
	"github.com/sitechat/widget-ai-platform/internal/tenancy"
	"github.com/sitechat/widget-ai-platform/internal/tenant"
	"github.com/sitechat/widget-ai-platform/pkg/logging"
)

// ProfileStore reads and writes tenant profiles.
type ProfileStore interface {
	Get(ctx context.Context, tenantID string) (tenant.Profile, error)
	Set(ctx context.Context, profile tenant.Profile) error
}

// SeedCache exposes the orchestrator's per-tenant seed cache.
type SeedCache interface {
	InvalidateSeed(tenantID string)
	SeedPreview(ctx context.Context, tenantID string) (chat.ConversationSeed, error)
}

// AdminTenantHandler manages tenant profiles through the admin API.
type AdminTenantHandler struct {
	profiles ProfileStore
	seeds    SeedCache
	logger   *logging.Logger
}

func NewAdminTenantHandler(profiles ProfileStore, seeds SeedCache, logger *logging.Logger) *AdminTenantHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminTenantHandler{profiles: profiles, seeds: seeds, logger: logger}
}

// GetProfile handles GET /admin/tenants/{tenantID}/profile.
func (h *AdminTenantHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "tenantID is required", http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.Get(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			http.Error(w, "unknown tenant", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load profile", "tenant_id", tenantID, "error", err)
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// PutProfile handles PUT /admin/tenants/{tenantID}/profile. A successful
// write invalidates the tenant's cached seed so the new persona takes
// effect on the next message.
func (h *AdminTenantHandler) PutProfile(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "tenantID is required", http.StatusBadRequest)
		return
	}

	var profile tenant.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	profile.TenantID = tenantID

	if err := h.profiles.Set(r.Context(), profile); err != nil {
		if errors.Is(err, tenant.ErrMissingDisplayName) || errors.Is(err, tenant.ErrMissingAgentName) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to save profile", "tenant_id", tenantID, "error", err)
		http.Error(w, "failed to save profile", http.StatusInternalServerError)
		return
	}

	if h.seeds != nil {
		h.seeds.InvalidateSeed(tenantID)
	}
	writeJSON(w, http.StatusOK, profile)
}

// GetPrompt handles GET /admin/tenants/{tenantID}/prompt. It returns the
// seed conversation the model would receive for this tenant right now.
func (h *AdminTenantHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenancy.TenantIDFromContext(r.Context())
	if !ok {
		http.Error(w, "tenantID is required", http.StatusBadRequest)
		return
	}
	if h.seeds == nil {
		http.Error(w, "prompt preview unavailable", http.StatusNotFound)
		return
	}

	seed, err := h.seeds.SeedPreview(r.Context(), tenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			http.Error(w, "unknown tenant", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to build prompt preview", "tenant_id", tenantID, "error", err)
		http.Error(w, "failed to build prompt preview", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, seed)
}
