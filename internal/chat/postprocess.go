package chat

import (
	"regexp"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/sitechat/widget-ai-platform/internal/observability/metrics"
)

// PostProcessor applies the response policy to every raw model output
// before it reaches a visitor: sanitize, validate, format, truncate,
// dedupe. One processor serves all tenants; behavior differences live in
// the ResponsePolicy value, never in per-variant copies of the pipeline.
type PostProcessor struct {
	policy   ResponsePolicy
	metrics  *metrics.ChatMetrics
	rotation atomic.Uint64
}

// NewPostProcessor creates a processor bound to one policy version.
func NewPostProcessor(policy ResponsePolicy) *PostProcessor {
	return &PostProcessor{policy: policy}
}

var (
	repeatedPunct  = regexp.MustCompile(`([.,!?])[.,!?]+`)
	horizontalRuns = regexp.MustCompile(`[ \t]+`)
	newlineRuns    = regexp.MustCompile(` *\n[\n ]*`)
)

// Process runs the full pipeline over one raw model output. previous is the
// immediately preceding reply in the same conversation (empty for the first
// turn); identical consecutive replies are replaced with a rotating filler.
//
// The returned reply always satisfies the output contract: non-empty, at
// most MaxLength runes, terminal punctuation, at most one emoji (trailing),
// and no denylisted phrase.
func (p *PostProcessor) Process(raw, previous string) string {
	text := p.sanitize(raw)
	if text == "" {
		p.metrics.ObservePolicyViolation("empty")
		text = p.nextFallback()
	} else if stage := p.violates(text); stage != "" {
		p.metrics.ObservePolicyViolation(stage)
		text = p.nextFallback()
	}

	body, emoji := p.format(text)
	final := p.truncate(body, emoji)
	if final == "" {
		p.metrics.ObservePolicyViolation("empty")
		final = p.nextFallback()
	}

	if previous != "" && final == previous {
		final = p.nextFiller(previous)
	}
	return final
}

// sanitize strips characters outside the reply whitelist and collapses
// repeated punctuation and horizontal whitespace. Newlines survive; the
// format stage owns line-break normalization.
func (p *PostProcessor) sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if p.allowedReplyRune(r) {
			b.WriteRune(r)
		}
	}
	text := b.String()
	text = repeatedPunct.ReplaceAllString(text, "$1")
	text = horizontalRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func (p *PostProcessor) allowedReplyRune(r rune) bool {
	if r == '\n' {
		return true
	}
	if r == '\r' {
		return false
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '.', ',', '!', '?', '\'', '-', '*':
		return true
	}
	return p.isAllowedEmoji(r)
}

func (p *PostProcessor) isAllowedEmoji(r rune) bool {
	for _, e := range p.policy.AllowedEmojis {
		if r == e {
			return true
		}
	}
	return false
}

// violates scans for denylisted phrases (case-insensitive substring match)
// and for more than one emoji. It names the failed stage, or returns ""
// when the text is clean.
func (p *PostProcessor) violates(text string) string {
	lower := strings.ToLower(text)
	for _, phrase := range p.policy.ForbiddenPhrases {
		if strings.Contains(lower, phrase) {
			return "denylist"
		}
	}
	if p.emojiCount(text) > 1 {
		return "emoji"
	}
	return ""
}

func (p *PostProcessor) emojiCount(text string) int {
	n := 0
	for _, r := range text {
		if p.isAllowedEmoji(r) {
			n++
		}
	}
	return n
}

// format normalizes emphasis to the widget's single-asterisk form, collapses
// newline sequences to the widget's line-break form, and pulls the first
// recognized emoji out of the text so truncate can pin it to the end.
func (p *PostProcessor) format(text string) (body string, emoji string) {
	text = strings.ReplaceAll(text, "**", "*")
	text = newlineRuns.ReplaceAllString(text, "\n")

	var b strings.Builder
	for _, r := range text {
		if p.isAllowedEmoji(r) {
			if emoji == "" {
				emoji = string(r)
			}
			continue
		}
		b.WriteRune(r)
	}
	body = horizontalRuns.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(body), emoji
}

// truncate enforces the length bound, cutting at the nearest preceding
// sentence boundary when one exists, and guarantees terminal punctuation.
// The relocated emoji is re-attached only when it still fits.
func (p *PostProcessor) truncate(body, emoji string) string {
	body = strings.TrimRight(body, " \n,-*")
	if body == "" {
		return ""
	}

	budget := p.policy.MaxLength
	if emoji != "" {
		// Room for " " plus the emoji rune.
		budget -= 2
	}
	if budget < 2 {
		budget = p.policy.MaxLength
		emoji = ""
	}

	runes := []rune(body)
	if len(runes) > budget {
		if cut := lastSentenceBoundary(runes[:budget]); cut >= 0 {
			runes = runes[:cut+1]
		} else {
			runes = append(runes[:budget-1], '.')
		}
	}
	if !isTerminal(runes[len(runes)-1]) {
		if len(runes) >= budget {
			runes[len(runes)-1] = '.'
		} else {
			runes = append(runes, '.')
		}
	}

	out := string(runes)
	if emoji != "" {
		out += " " + emoji
	}
	return out
}

func lastSentenceBoundary(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if isTerminal(runes[i]) {
			return i
		}
	}
	return -1
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// nextFallback returns the next entry in the policy-violation rotation.
func (p *PostProcessor) nextFallback() string {
	idx := p.rotation.Add(1)
	return p.policy.FallbackReplies[idx%uint64(len(p.policy.FallbackReplies))]
}

// nextFiller returns a dedupe filler distinct from the previous reply.
func (p *PostProcessor) nextFiller(previous string) string {
	for range p.policy.DedupeFillers {
		idx := p.rotation.Add(1)
		filler := p.policy.DedupeFillers[idx%uint64(len(p.policy.DedupeFillers))]
		if filler != previous {
			return filler
		}
	}
	return p.policy.DedupeFillers[0]
}
