// Package tenant provides tenant persona configuration and its persistence.
package tenant

import "strings"

// Profile holds the business persona a tenant configured for their widget.
// The settings dashboard owns and mutates this record; the chat core only
// reads it.
type Profile struct {
	TenantID    string `json:"tenant_id"`
	DisplayName string `json:"display_name"`
	AgentName   string `json:"agent_name"`
	// KnowledgeText is free-form business information used to ground replies.
	KnowledgeText string `json:"knowledge_text,omitempty"`
	AccentColor   string `json:"accent_color,omitempty"`
	// NotifyEmail receives a heads-up when a visitor leaves contact info.
	NotifyEmail string `json:"notify_email,omitempty"`
}

// Validate reports whether the profile is usable for serving chat.
func (p *Profile) Validate() error {
	if strings.TrimSpace(p.TenantID) == "" {
		return ErrMissingTenantID
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return ErrMissingDisplayName
	}
	if strings.TrimSpace(p.AgentName) == "" {
		return ErrMissingAgentName
	}
	return nil
}

// Public returns the subset of the profile that is safe to expose to the
// embeddable widget.
func (p *Profile) Public() PublicProfile {
	return PublicProfile{
		DisplayName: p.DisplayName,
		AgentName:   p.AgentName,
		AccentColor: p.AccentColor,
	}
}

// PublicProfile is the widget-facing view of a tenant profile.
type PublicProfile struct {
	DisplayName string `json:"display_name"`
	AgentName   string `json:"agent_name"`
	AccentColor string `json:"accent_color,omitempty"`
}
