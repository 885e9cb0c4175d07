package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sitechat/widget-ai-platform/internal/analytics"
	"github.com/sitechat/widget-ai-platform/internal/chat"
	"github.com/sitechat/widget-ai-platform/internal/tenancy"
	"github.com/sitechat/widget-ai-platform/internal/tenant"
)

func withTenantID(r *http.Request, tenantID string) *http.Request {
	return r.WithContext(tenancy.WithTenantID(r.Context(), tenantID))
}

type stubSessionLister struct {
	sessions []analytics.Session
	err      error
	gotLimit int
}

func (s *stubSessionLister) ListSessions(_ context.Context, _ string, limit int) ([]analytics.Session, error) {
	s.gotLimit = limit
	return s.sessions, s.err
}

func TestAdminListSessions(t *testing.T) {
	lister := &stubSessionLister{sessions: []analytics.Session{
		{TenantID: "tenant-1", VisitorID: "v-1", MessagesCount: 4, UpdatedAt: time.Now()},
	}}
	h := NewAdminSessionsHandler(lister, nil)

	req := withTenantID(httptest.NewRequest(http.MethodGet, "/admin/tenants/tenant-1/sessions?limit=10", nil), "tenant-1")
	rec := httptest.NewRecorder()
	h.ListSessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if lister.gotLimit != 10 {
		t.Errorf("limit = %d", lister.gotLimit)
	}
	var body struct {
		Sessions []analytics.Session `json:"sessions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Sessions) != 1 || body.Sessions[0].VisitorID != "v-1" {
		t.Errorf("sessions = %+v", body.Sessions)
	}
}

func TestAdminListSessionsInvalidLimit(t *testing.T) {
	h := NewAdminSessionsHandler(&stubSessionLister{}, nil)
	req := withTenantID(httptest.NewRequest(http.MethodGet, "/admin/tenants/tenant-1/sessions?limit=x", nil), "tenant-1")
	rec := httptest.NewRecorder()
	h.ListSessions(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAdminListSessionsStoreError(t *testing.T) {
	h := NewAdminSessionsHandler(&stubSessionLister{err: errors.New("db down")}, nil)
	req := withTenantID(httptest.NewRequest(http.MethodGet, "/admin/tenants/tenant-1/sessions", nil), "tenant-1")
	rec := httptest.NewRecorder()
	h.ListSessions(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
}

type stubProfileStore struct {
	profile tenant.Profile
	getErr  error
	setErr  error
	saved   *tenant.Profile
}

func (s *stubProfileStore) Get(context.Context, string) (tenant.Profile, error) {
	return s.profile, s.getErr
}

func (s *stubProfileStore) Set(_ context.Context, p tenant.Profile) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.saved = &p
	return nil
}

type stubSeedCache struct {
	invalidated []string
	seed        chat.ConversationSeed
	previewErr  error
}

func (s *stubSeedCache) InvalidateSeed(tenantID string) {
	s.invalidated = append(s.invalidated, tenantID)
}

func (s *stubSeedCache) SeedPreview(context.Context, string) (chat.ConversationSeed, error) {
	return s.seed, s.previewErr
}

func TestAdminGetProfile(t *testing.T) {
	store := &stubProfileStore{profile: tenant.Profile{TenantID: "tenant-1", DisplayName: "Acme", AgentName: "Mia"}}
	h := NewAdminTenantHandler(store, nil, nil)

	req := withTenantID(httptest.NewRequest(http.MethodGet, "/admin/tenants/tenant-1/profile", nil), "tenant-1")
	rec := httptest.NewRecorder()
	h.GetProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Mia") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAdminGetProfileNotFound(t *testing.T) {
	h := NewAdminTenantHandler(&stubProfileStore{getErr: tenant.ErrNotFound}, nil, nil)
	req := withTenantID(httptest.NewRequest(http.MethodGet, "/admin/tenants/nobody/profile", nil), "nobody")
	rec := httptest.NewRecorder()
	h.GetProfile(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAdminPutProfileInvalidatesSeed(t *testing.T) {
	store := &stubProfileStore{}
	inv := &stubSeedCache{}
	h := NewAdminTenantHandler(store, inv, nil)

	body := `{"display_name":"Acme Plumbing","agent_name":"Nova","knowledge_text":"Open 9-5"}`
	req := withTenantID(httptest.NewRequest(http.MethodPut, "/admin/tenants/tenant-1/profile", strings.NewReader(body)), "tenant-1")
	rec := httptest.NewRecorder()
	h.PutProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if store.saved == nil || store.saved.TenantID != "tenant-1" || store.saved.AgentName != "Nova" {
		t.Errorf("saved profile = %+v", store.saved)
	}
	if len(inv.invalidated) != 1 || inv.invalidated[0] != "tenant-1" {
		t.Errorf("invalidated = %v", inv.invalidated)
	}
}

func TestAdminGetPrompt(t *testing.T) {
	cache := &stubSeedCache{seed: chat.ConversationSeed{
		PolicyVersion: 1,
		Turns: []chat.Message{
			{Role: chat.RoleSystem, Content: "You are Mia for Acme Plumbing."},
			{Role: chat.RoleAssistant, Content: "Understood."},
		},
	}}
	h := NewAdminTenantHandler(&stubProfileStore{}, cache, nil)

	req := withTenantID(httptest.NewRequest(http.MethodGet, "/admin/tenants/tenant-1/prompt", nil), "tenant-1")
	rec := httptest.NewRecorder()
	h.GetPrompt(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Acme Plumbing") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAdminGetPromptUnknownTenant(t *testing.T) {
	h := NewAdminTenantHandler(&stubProfileStore{}, &stubSeedCache{previewErr: tenant.ErrNotFound}, nil)
	req := withTenantID(httptest.NewRequest(http.MethodGet, "/admin/tenants/nobody/prompt", nil), "nobody")
	rec := httptest.NewRecorder()
	h.GetPrompt(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestAdminPutProfileValidationError(t *testing.T) {
	h := NewAdminTenantHandler(&stubProfileStore{setErr: tenant.ErrMissingDisplayName}, &stubSeedCache{}, nil)
	req := withTenantID(httptest.NewRequest(http.MethodPut, "/admin/tenants/tenant-1/profile", strings.NewReader(`{}`)), "tenant-1")
	rec := httptest.NewRecorder()
	h.PutProfile(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}
