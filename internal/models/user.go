package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRecord is the per-user document persisted as a single JSON blob.
// Writes are last-write-wins; loading an unknown user yields a default record.
type UserRecord struct {
	UserID       string      `json:"user_id"`
	Profile      Profile     `json:"profile"`
	Preferences  Preferences `json:"preferences"`
	Conversation []Message   `json:"conversation"`
	Stats        UserStats   `json:"stats"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Profile holds user-editable identity details.
type Profile struct {
	Name     string `json:"name,omitempty"`
	Age      int    `json:"age,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// Preferences holds companion behavior preferences.
type Preferences struct {
	Nickname      string   `json:"nickname,omitempty"`
	ResponseStyle string   `json:"response_style,omitempty"`
	TopicsToAvoid []string `json:"topics_to_avoid,omitempty"`
}

// UserStats tracks aggregate usage counters kept inside the blob.
type UserStats struct {
	TotalMessages int        `json:"total_messages"`
	FirstSeen     time.Time  `json:"first_seen"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
}

// Message is one turn of a conversation, user or assistant.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Mood      *string   `json:"mood,omitempty"`
	Intensity *int      `json:"intensity,omitempty"`
	IsCrisis  bool      `json:"is_crisis"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUserRecord returns the default record created on first contact.
func NewUserRecord(userID string, now time.Time) *UserRecord {
	return &UserRecord{
		UserID:       userID,
		Preferences:  Preferences{ResponseStyle: "casual"},
		Conversation: []Message{},
		Stats:        UserStats{FirstSeen: now},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
