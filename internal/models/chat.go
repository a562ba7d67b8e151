package models

import "time"

// ChatRequest is the inbound payload for a chat turn (HTTP and WebSocket).
type ChatRequest struct {
	UserID  string `json:"user_id" validate:"required,max=128"`
	Message string `json:"message" validate:"required,max=4000"`
}

// ChatReply is the outcome of one chat turn.
type ChatReply struct {
	Response        string    `json:"response"`
	Mood            *string   `json:"mood"`
	Intensity       *int      `json:"intensity,omitempty"`
	IsCrisis        bool      `json:"is_crisis"`
	CrisisResources []string  `json:"crisis_resources,omitempty"`
	Suggestions     []string  `json:"suggestions,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// MoodBar summarizes recent moods for a UI strip.
type MoodBar struct {
	UserID  string         `json:"user_id"`
	Current *string        `json:"current_mood"`
	Recent  []MoodEntry    `json:"recent"`
	Counts  map[string]int `json:"counts"`
}
