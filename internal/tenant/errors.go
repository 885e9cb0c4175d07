package tenant

import "errors"

var (
	// ErrNotFound is returned when no profile exists for a tenant id.
	ErrNotFound = errors.New("tenant: profile not found")

	ErrMissingTenantID    = errors.New("tenant: tenant id is required")
	ErrMissingDisplayName = errors.New("tenant: display name is required")
	ErrMissingAgentName   = errors.New("tenant: agent name is required")
)
