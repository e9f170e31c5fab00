package domain

// Policy is the resolved per-guild moderation configuration. Stored as
// key/value rows; unset keys take the defaults below.
type Policy struct {
	Enabled            bool     `json:"enabled"`
	BannedTerms        []string `json:"badWords"`
	SpamThreshold      int      `json:"spamThreshold"`
	SpamWindowMs       int      `json:"spamWindow"`
	MaxMentions        int      `json:"maxMentions"`
	LinkFilter         bool     `json:"linkFilter"`
	InviteFilter       bool     `json:"inviteFilter"`
	CapsFilter         bool     `json:"capsFilter"`
	CapsRatioThreshold float64  `json:"capsThreshold"`
}

// DefaultPolicy returns the policy applied when a guild has no stored
// settings for a given key.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:            true,
		BannedTerms:        nil,
		SpamThreshold:      5,
		SpamWindowMs:       5000,
		MaxMentions:        5,
		LinkFilter:         false,
		InviteFilter:       true,
		CapsFilter:         false,
		CapsRatioThreshold: 0.7,
	}
}

// DisabledPolicy is the degraded policy returned when settings cannot be
// read. Nothing is filtered against a partial policy.
func DisabledPolicy() Policy {
	return Policy{Enabled: false}
}
