package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sitechat/widget-ai-platform/internal/tenancy"
)

// TenantContext lifts the {tenantID} route parameter into the request
// context so downstream handlers read it through the tenancy package.
func TenantContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := chi.URLParam(r, "tenantID")
		if tenantID == "" {
			http.Error(w, "tenantID is required", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r.WithContext(tenancy.WithTenantID(r.Context(), tenantID)))
	})
}
