package ai

import (
	"context"
)

// AIProvider is the interface for the LLM backing chat, mood classification,
// and summarization.
type AIProvider interface {
	// Chat sends a system prompt and conversation turns, returning the raw reply.
	Chat(ctx context.Context, systemPrompt string, messages []ChatMessage) (string, error)

	// ClassifyMood asks the model to label the emotional tone of one message.
	ClassifyMood(ctx context.Context, message string) (*MoodAnalysis, error)

	// Summarize condenses a block of conversation text for a summary tier
	// ("daily", "weekly", "monthly").
	Summarize(ctx context.Context, tier string, body string) (string, error)
}

// ChatMessage represents a message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// MoodAnalysis is the model's read of a single message.
type MoodAnalysis struct {
	Mood       string  `json:"mood"`
	Intensity  int     `json:"intensity"`
	Confidence float64 `json:"confidence"`
	Notes      string  `json:"notes"`
}
