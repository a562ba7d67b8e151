package models

import "time"

// Mood vocabulary recognized by the classifier and the log endpoint.
const (
	MoodHappy     = "happy"
	MoodSad       = "sad"
	MoodAnxious   = "anxious"
	MoodDepressed = "depressed"
	MoodAngry     = "angry"
	MoodCalm      = "calm"
	MoodStressed  = "stressed"
	MoodNeutral   = "neutral"
)

// Moods lists every valid mood value.
var Moods = []string{
	MoodHappy, MoodSad, MoodAnxious, MoodDepressed,
	MoodAngry, MoodCalm, MoodStressed, MoodNeutral,
}

// ValidMood reports whether s is in the mood vocabulary.
func ValidMood(s string) bool {
	for _, m := range Moods {
		if m == s {
			return true
		}
	}
	return false
}

// NegativeMood reports whether a mood should trigger low-mood guidance
// when its intensity is high.
func NegativeMood(s string) bool {
	switch s {
	case MoodSad, MoodAnxious, MoodDepressed, MoodAngry, MoodStressed:
		return true
	}
	return false
}

// MoodEntry is one recorded mood observation, classified or user-logged.
type MoodEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Mood      string    `json:"mood"`
	Intensity int       `json:"intensity"` // 1-10
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodTransition records a change from one mood to another.
type MoodTransition struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	FromMood  string    `json:"from_mood"`
	ToMood    string    `json:"to_mood"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodInsights aggregates the last 30 days of mood entries.
type MoodInsights struct {
	EntryCount     int            `json:"entry_count"`
	MostCommonMood string         `json:"most_common_mood,omitempty"`
	AvgIntensity   float64        `json:"avg_intensity"`
	Trend          string         `json:"trend"` // improving, declining, stable
	TopTriggers    []string       `json:"top_triggers,omitempty"`
	TimeOfDay      map[string]int `json:"time_of_day,omitempty"`
	Message        string         `json:"message"`
}
