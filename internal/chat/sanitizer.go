package chat

import (
	"strings"
	"unicode"

	"github.com/sitechat/widget-ai-platform/internal/tenant"
)

// SanitizeProfile cleans every tenant-supplied text field before it can
// enter a prompt. The operation is idempotent: sanitizing an already
// sanitized profile is a no-op.
//
// Every text field is replaced with its placeholder when it sanitizes to
// nothing: a profile can pass validation with a name made entirely of
// stripped characters, and the assembled seed must never address the model
// with an empty name.
func SanitizeProfile(p tenant.Profile) tenant.Profile {
	p.DisplayName = SanitizeText(p.DisplayName)
	if p.DisplayName == "" {
		p.DisplayName = DisplayNamePlaceholder
	}
	p.AgentName = SanitizeText(p.AgentName)
	if p.AgentName == "" {
		p.AgentName = AgentNamePlaceholder
	}
	p.KnowledgeText = SanitizeText(p.KnowledgeText)
	if p.KnowledgeText == "" {
		p.KnowledgeText = KnowledgePlaceholder
	}
	return p
}

// SanitizeText removes every character outside the whitelist (letters,
// digits, whitespace, and `. , ! ? -`), collapses whitespace runs to a
// single space, and trims.
func SanitizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if allowedProfileRune(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func allowedProfileRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', '!', '?', '-':
		return true
	}
	return false
}
