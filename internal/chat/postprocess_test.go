package chat

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func assertReplyContract(t *testing.T, p *PostProcessor, reply string) {
	t.Helper()
	if reply == "" {
		t.Fatalf("empty reply")
	}
	if n := utf8.RuneCountInString(reply); n > p.policy.MaxLength {
		t.Errorf("reply is %d runes, limit %d: %q", n, p.policy.MaxLength, reply)
	}
	if n := p.emojiCount(reply); n > 1 {
		t.Errorf("reply has %d emojis: %q", n, reply)
	}
	lower := strings.ToLower(reply)
	for _, phrase := range p.policy.ForbiddenPhrases {
		if strings.Contains(lower, phrase) {
			t.Errorf("reply contains %q: %q", phrase, reply)
		}
	}

	body := reply
	runes := []rune(reply)
	if p.isAllowedEmoji(runes[len(runes)-1]) {
		body = strings.TrimSpace(string(runes[:len(runes)-1]))
	}
	last, _ := utf8.DecodeLastRuneInString(body)
	if !isTerminal(last) {
		t.Errorf("reply does not end with terminal punctuation: %q", reply)
	}
}

func TestProcessOutputContract(t *testing.T) {
	inputs := []string{
		"Hello there",
		"We open at 9am!!! Come visit us...",
		"🙂 Great to hear from you",
		"🙂😊 too many emojis here",
		"As an AI, I cannot share that.",
		strings.Repeat("a", 400),
		strings.Repeat("This is a sentence. ", 30),
		"@@@@ #### $$$$",
		"",
		"<b>Bold</b> & <i>plain</i> text",
		"Line one.\n\n\nLine two.",
	}
	p := NewPostProcessor(DefaultPolicy())
	for _, in := range inputs {
		assertReplyContract(t, p, p.Process(in, ""))
	}
}

func TestProcessSanitizeAndFormat(t *testing.T) {
	p := NewPostProcessor(DefaultPolicy())
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "We open at 9am.", "We open at 9am."},
		{"repeated punctuation", "Great news!!! See you soon...", "Great news! See you soon."},
		{"appends period", "We open at 9am", "We open at 9am."},
		{"bold to emphasis", "**Special offer** today", "*Special offer* today."},
		{"newline runs", "Line one.\n\n\nLine two.", "Line one.\nLine two."},
		{"strips markup", "<b>Hours</b> are 9-5!", "bHoursb are 9-5!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := p.Process(tc.raw, ""); got != tc.want {
				t.Errorf("Process(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestProcessEmojiRelocation(t *testing.T) {
	p := NewPostProcessor(DefaultPolicy())

	got := p.Process("🙂 Great to hear from you", "")
	if got != "Great to hear from you. 🙂" {
		t.Errorf("emoji not relocated: %q", got)
	}

	// Already in final position stays put.
	got = p.Process("Great! 🙂", "")
	if got != "Great! 🙂" {
		t.Errorf("trailing emoji mangled: %q", got)
	}
}

func TestProcessRejectsMultipleEmojis(t *testing.T) {
	p := NewPostProcessor(DefaultPolicy())
	got := p.Process("So happy 🙂 to help 😊 today", "")
	if !containsReply(p.policy.FallbackReplies, got) {
		t.Errorf("expected fallback for multi-emoji reply, got %q", got)
	}
}

func TestProcessDenylistRotation(t *testing.T) {
	p := NewPostProcessor(DefaultPolicy())
	a := p.Process("As an AI, I cannot say.", "")
	b := p.Process("I'm an AI assistant, sorry.", "")
	if !containsReply(p.policy.FallbackReplies, a) || !containsReply(p.policy.FallbackReplies, b) {
		t.Fatalf("expected fallback replies, got %q and %q", a, b)
	}
	if a == b {
		t.Errorf("rotation returned the same fallback twice: %q", a)
	}
}

func TestProcessTruncatesAtSentenceBoundary(t *testing.T) {
	p := NewPostProcessor(DefaultPolicy())
	raw := strings.Repeat("This is a complete sentence. ", 20)
	got := p.Process(raw, "")
	if utf8.RuneCountInString(got) > p.policy.MaxLength {
		t.Fatalf("reply over limit: %d runes", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "sentence.") {
		t.Errorf("expected cut at sentence boundary, got %q", got)
	}
}

func TestProcessHardCut(t *testing.T) {
	p := NewPostProcessor(DefaultPolicy())
	got := p.Process(strings.Repeat("a", 400), "")
	if n := utf8.RuneCountInString(got); n != p.policy.MaxLength {
		t.Errorf("hard cut length = %d, want %d", n, p.policy.MaxLength)
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("hard cut missing terminal punctuation: %q", got)
	}
}

func TestProcessDedupe(t *testing.T) {
	p := NewPostProcessor(DefaultPolicy())
	first := p.Process("Our hours are 9 to 5.", "")
	second := p.Process("Our hours are 9 to 5.", first)
	if second == first {
		t.Fatalf("consecutive duplicate not replaced: %q", second)
	}
	if !containsReply(p.policy.DedupeFillers, second) {
		t.Errorf("expected a dedupe filler, got %q", second)
	}

	// A different reply passes through untouched.
	third := p.Process("We close Sundays.", second)
	if third != "We close Sundays." {
		t.Errorf("non-duplicate rewritten: %q", third)
	}
}

func TestProcessEmptyInputFallback(t *testing.T) {
	p := NewPostProcessor(DefaultPolicy())
	for _, raw := range []string{"", "   ", "@@@@", "###"} {
		got := p.Process(raw, "")
		if !containsReply(p.policy.FallbackReplies, got) {
			t.Errorf("Process(%q) = %q, want a fallback reply", raw, got)
		}
	}
}

func containsReply(set []string, reply string) bool {
	for _, s := range set {
		if s == reply {
			return true
		}
	}
	return false
}
