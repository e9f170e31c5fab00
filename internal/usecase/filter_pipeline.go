package usecase

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/independentsyndicate918-cell/Shadybot-2.0/internal/domain"
)

const (
	// capsMinLength is the minimum message length before the caps check runs.
	capsMinLength = 10

	// evidenceMaxLength bounds the content excerpt carried on a violation.
	evidenceMaxLength = 100
)

var (
	inviteRegex = regexp.MustCompile(`(?i)(discord\.(gg|io|me|li)|discordapp\.com/invite)/\S+`)
	urlRegex    = regexp.MustCompile(`(?i)https?://\S+`)
)

// FilterPipeline evaluates one message against a resolved policy. Evaluate
// is pure: no state, no side effects.
type FilterPipeline struct{}

// NewFilterPipeline creates a new FilterPipeline.
func NewFilterPipeline() *FilterPipeline {
	return &FilterPipeline{}
}

// Evaluate returns the first violation the message triggers, or nil when the
// message is clean. Checks run in fixed precedence order and short-circuit:
// banned term, invite link, generic link, excessive caps, mention spam.
func (f *FilterPipeline) Evaluate(msg domain.Message, policy domain.Policy) *domain.Violation {
	if !policy.Enabled {
		return nil
	}

	if reason := f.checkBannedTerms(msg.Content, policy); reason != "" {
		return f.violation(domain.ViolationBannedTerm, reason, msg)
	}
	if policy.InviteFilter && inviteRegex.MatchString(msg.Content) {
		return f.violation(domain.ViolationInvite, "Discord invite link detected", msg)
	}
	if policy.LinkFilter && urlRegex.MatchString(msg.Content) {
		return f.violation(domain.ViolationLink, "Link detected", msg)
	}
	if policy.CapsFilter && len(msg.Content) > capsMinLength {
		if capsRatio(msg.Content) > policy.CapsRatioThreshold {
			return f.violation(domain.ViolationExcessiveCaps, "Excessive caps detected", msg)
		}
	}
	if policy.MaxMentions > 0 && msg.MentionCount > policy.MaxMentions {
		return f.violation(domain.ViolationMentionSpam, "Mention spam detected", msg)
	}

	return nil
}

func (f *FilterPipeline) checkBannedTerms(content string, policy domain.Policy) string {
	if len(policy.BannedTerms) == 0 {
		return ""
	}
	lowered := strings.ToLower(content)
	for _, term := range policy.BannedTerms {
		if term == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(term)) {
			return "Bad language detected"
		}
	}
	return ""
}

func (f *FilterPipeline) violation(kind domain.ViolationKind, reason string, msg domain.Message) *domain.Violation {
	return &domain.Violation{
		Kind:      kind,
		Reason:    reason,
		GuildID:   msg.GuildID,
		UserID:    msg.AuthorID,
		ChannelID: msg.ChannelID,
		MessageID: msg.ID,
		Evidence:  truncate(msg.Content, evidenceMaxLength),
	}
}

// capsRatio is the share of uppercase letters over the full content length,
// whitespace and punctuation included.
func capsRatio(content string) float64 {
	if len(content) == 0 {
		return 0
	}
	upper := 0
	for _, r := range content {
		if unicode.IsUpper(r) {
			upper++
		}
	}
	return float64(upper) / float64(len([]rune(content)))
}

// truncate cuts s to at most max bytes, backing up to the nearest rune
// boundary so the excerpt stays valid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
