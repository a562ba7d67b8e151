package models

import "time"

// Summary tiers.
const (
	TierDaily   = "daily"
	TierWeekly  = "weekly"
	TierMonthly = "monthly"
)

// Summary is a cached LLM digest of one period of conversation.
// A summary is written at most once per (user, tier, period key) and
// never regenerated.
type Summary struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Tier      string    `json:"tier"`
	PeriodKey string    `json:"period_key"` // daily: 2006-01-02, weekly: 2006-W02, monthly: 2006-01
	Content   string    `json:"content"`
	SourceN   int       `json:"source_count"` // messages or lower-tier summaries consumed
	CreatedAt time.Time `json:"created_at"`
}
