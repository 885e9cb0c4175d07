// Package chat implements the conversational response pipeline: tenant
// context sanitization, deterministic prompt assembly, contact-info
// extraction, model output post-processing, and the orchestrator that ties
// them together.
package chat

// ResponsePolicy is the versioned set of constraints every visitor-facing
// reply must satisfy. Policies are immutable; behavior changes ship as a new
// version so prompt and reply regressions stay reproducible.
type ResponsePolicy struct {
	// Version identifies the policy revision baked into prompts and tests.
	Version int
	// MaxLength is the maximum reply length in runes.
	MaxLength int
	// AllowedEmojis is the closed set of emoji the widget renders.
	AllowedEmojis []rune
	// ForbiddenPhrases are case-insensitive substrings that must never reach
	// a visitor (self-referential and meta language).
	ForbiddenPhrases []string
	// FallbackReplies rotate in when a model output fails validation, so
	// violations do not collapse to one fingerprintable string.
	FallbackReplies []string
	// DedupeFillers rotate in when a reply would repeat the previous one.
	DedupeFillers []string
	// Greeting opens every conversation. Never produced by the model.
	Greeting string
	// ContactAck acknowledges a contact-info submission. Never produced by
	// the model.
	ContactAck string
	// Apology replaces the reply when the model call itself fails.
	Apology string
}

// KnowledgePlaceholder substitutes for an empty knowledge text so the
// grounding section of the prompt is never blank.
const KnowledgePlaceholder = "No additional business information provided."

// Placeholders for persona names that sanitize to nothing, so the seed
// never addresses the model as an empty string.
const (
	DisplayNamePlaceholder = "our business"
	AgentNamePlaceholder   = "Assistant"
)

// DefaultPolicy returns policy version 1.
func DefaultPolicy() ResponsePolicy {
	return ResponsePolicy{
		Version:   1,
		MaxLength: 150,
		AllowedEmojis: []rune{
			'\U0001F642', // slightly smiling face
			'\U0001F60A', // smiling face with smiling eyes
			'\U0001F44D', // thumbs up
			'\U0001F389', // party popper
			'⭐',     // star
		},
		ForbiddenPhrases: []string{
			"i am an ai",
			"i'm an ai",
			"as an ai",
			"i am a chatbot",
			"language model",
			"my name is",
			"let me know",
			"system prompt",
			"my instructions",
		},
		FallbackReplies: []string{
			"I want to make sure I get that right. Could you rephrase your question?",
			"That's a great question! Could you share a bit more detail?",
			"I'm not sure I caught that. What would you like to know about us?",
		},
		DedupeFillers: []string{
			"What else can I help you with?",
			"Is there anything else you'd like to know?",
			"Happy to help with anything else you need!",
		},
		Greeting:   "Hi! How can I help you today?",
		ContactAck: "Thank you for providing your contact information! How else can I assist you today?",
		Apology:    "I apologize, but I ran into a problem. Please try again in a moment.",
	}
}
