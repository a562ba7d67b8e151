package mood

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/models"
	"github.com/mindwell/mindwell-api/internal/services/ai"
)

// crisisKeywords are matched as substrings, case-insensitive. Any hit
// overrides normal response shaping.
var crisisKeywords = []string{
	"kill myself", "suicide", "end it all", "want to die", "better off dead",
	"hurt myself", "self harm", "cut myself", "overdose", "jump off",
}

// moodKeywordTable is the keyword fallback used when the LLM is unavailable.
// Order matters: first matching category wins.
var moodKeywordTable = []struct {
	mood     string
	keywords []string
}{
	{models.MoodAnxious, []string{"anxious", "anxiety", "worried", "nervous", "panic", "stressed"}},
	{models.MoodDepressed, []string{"depressed", "depression", "hopeless", "worthless", "empty", "numb"}},
	{models.MoodSad, []string{"sad", "down", "unhappy", "miserable", "crying", "tears"}},
	{models.MoodAngry, []string{"angry", "mad", "frustrated", "furious", "rage", "pissed"}},
	{models.MoodHappy, []string{"happy", "joy", "good", "great", "wonderful", "amazing"}},
	{models.MoodCalm, []string{"calm", "peaceful", "relaxed", "serene", "content"}},
}

var intensifierWords = []string{
	"really", "very", "terrible", "horrible", "overwhelmed", "extremely", "fucking", "so much",
}

// neutralConfidenceFloor is the minimum confidence required before a
// "neutral" LLM reading counts as a detection at all.
const neutralConfidenceFloor = 0.7

// Classification is the outcome of analyzing one message.
type Classification struct {
	Mood      string // empty when nothing was detected
	Intensity int
	Notes     string
	IsCrisis  bool
}

// Detected reports whether a mood was found.
func (c *Classification) Detected() bool {
	return c.Mood != ""
}

// Classifier analyzes messages for mood and crisis signals. LLM first,
// keyword fallback; classification failures never propagate.
type Classifier struct {
	provider ai.AIProvider
	logger   *zap.Logger
}

// NewClassifier creates a new mood classifier
func NewClassifier(provider ai.AIProvider, logger *zap.Logger) *Classifier {
	return &Classifier{provider: provider, logger: logger}
}

// DetectCrisis reports whether the message contains crisis indicators.
func DetectCrisis(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range crisisKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Classify analyzes one message. The crisis flag is always computed; the mood
// fields are best-effort and empty when neither the model nor the keyword
// table found a signal.
func (c *Classifier) Classify(ctx context.Context, message string) Classification {
	result := Classification{IsCrisis: DetectCrisis(message)}

	analysis, err := c.classifyWithLLM(ctx, message)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("mood_classification_failed",
				zap.Error(err),
			)
		}
	} else if analysis != nil {
		result.Mood = analysis.Mood
		result.Intensity = analysis.Intensity
		result.Notes = analysis.Notes
		return result
	}

	// Keyword fallback.
	if mood := detectMoodByKeywords(message); mood != "" {
		result.Mood = mood
		result.Intensity = EstimateIntensity(message)
	}
	return result
}

// classifyWithLLM returns nil (no error) when the model's reading should be
// discarded rather than recorded.
func (c *Classifier) classifyWithLLM(ctx context.Context, message string) (*ai.MoodAnalysis, error) {
	if c.provider == nil {
		return nil, nil
	}
	analysis, err := c.provider.ClassifyMood(ctx, message)
	if err != nil {
		return nil, err
	}
	if analysis == nil || !models.ValidMood(analysis.Mood) {
		return nil, nil
	}
	if analysis.Mood == models.MoodNeutral && analysis.Confidence < neutralConfidenceFloor {
		return nil, nil
	}
	return analysis, nil
}

func detectMoodByKeywords(message string) string {
	lower := strings.ToLower(message)
	for _, entry := range moodKeywordTable {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.mood
			}
		}
	}
	return ""
}

// EstimateIntensity estimates mood intensity (1-10) from punctuation
// emphasis and intensifier words.
func EstimateIntensity(message string) int {
	if message == "" {
		return 5
	}

	score := 5

	if exclam := strings.Count(message, "!"); exclam > 0 {
		if exclam > 3 {
			exclam = 3
		}
		score += exclam
	}

	caps := 0
	for _, w := range strings.Fields(message) {
		if len(w) > 1 && w == strings.ToUpper(w) && w != strings.ToLower(w) {
			caps++
		}
	}
	if caps > 2 {
		caps = 2
	}
	score += caps

	lower := strings.ToLower(message)
	for _, w := range intensifierWords {
		if strings.Contains(lower, w) {
			score++
		}
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score
}
