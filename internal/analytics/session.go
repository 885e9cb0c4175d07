package analytics

import "time"

// Session is one visitor's conversation row. messages_count is owned by the
// store: every recorded turn increments it atomically, so concurrent turns
// for the same visitor never lose updates.
type Session struct {
	ID            int64     `json:"id"`
	TenantID      string    `json:"tenantId"`
	VisitorID     string    `json:"visitorId"`
	VisitorName   string    `json:"visitorName,omitempty"`
	VisitorEmail  string    `json:"visitorEmail,omitempty"`
	VisitorIP     string    `json:"visitorIp,omitempty"`
	FirstMessage  string    `json:"firstMessage,omitempty"`
	LastMessage   string    `json:"lastMessage,omitempty"`
	MessagesCount int       `json:"messagesCount"`
	StartedAt     time.Time `json:"startedAt"`
	EndedAt       time.Time `json:"endedAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
