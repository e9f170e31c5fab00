package domain

// ViolationKind identifies which check a message failed.
type ViolationKind string

const (
	ViolationBannedTerm    ViolationKind = "banned_term"
	ViolationInvite        ViolationKind = "invite"
	ViolationLink          ViolationKind = "link"
	ViolationExcessiveCaps ViolationKind = "excessive_caps"
	ViolationMentionSpam   ViolationKind = "mention_spam"
	ViolationMessageSpam   ViolationKind = "message_spam"
)

// Violation is a detected policy breach. It exists only in flight between
// detection and enforcement; the durable record is the derived Event.
type Violation struct {
	Kind      ViolationKind
	Reason    string
	GuildID   string
	UserID    string
	ChannelID string
	MessageID string
	// Evidence is a truncated excerpt of the offending content.
	Evidence string
}
