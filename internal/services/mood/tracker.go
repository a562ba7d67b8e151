package mood

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/mindwell/mindwell-api/internal/models"
)

// Tracker records mood entries and transitions and derives insights.
type Tracker struct {
	moods       database.MoodRepositoryInterface
	transitions database.TransitionRepositoryInterface
	logger      *zap.Logger
}

// NewTracker creates a new mood tracker
func NewTracker(moods database.MoodRepositoryInterface, transitions database.TransitionRepositoryInterface, logger *zap.Logger) *Tracker {
	return &Tracker{moods: moods, transitions: transitions, logger: logger}
}

// Log validates and stores a user-submitted mood entry.
func (t *Tracker) Log(ctx context.Context, userID, mood string, intensity int, notes string) (*models.MoodEntry, error) {
	if !models.ValidMood(mood) {
		return nil, fmt.Errorf("invalid mood %q", mood)
	}
	if intensity < 1 || intensity > 10 {
		return nil, fmt.Errorf("intensity must be between 1 and 10")
	}
	entry := &models.MoodEntry{
		UserID:    userID,
		Mood:      mood,
		Intensity: intensity,
		Notes:     notes,
	}
	if err := t.moods.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Record persists a classification outcome from a chat turn. Failures are
// logged and swallowed so they never fail the turn.
func (t *Tracker) Record(ctx context.Context, userID string, cls Classification) {
	if !cls.Detected() {
		return
	}

	previous, err := t.moods.Latest(ctx, userID)
	if err != nil {
		if t.logger != nil {
			t.logger.Warn("mood_lookup_failed", zap.String("user_id", userID), zap.Error(err))
		}
		previous = nil
	}

	entry := &models.MoodEntry{
		UserID:    userID,
		Mood:      cls.Mood,
		Intensity: cls.Intensity,
		Notes:     cls.Notes,
	}
	if err := t.moods.Insert(ctx, entry); err != nil {
		if t.logger != nil {
			t.logger.Warn("mood_record_failed", zap.String("user_id", userID), zap.Error(err))
		}
		return
	}

	if previous != nil && previous.Mood != cls.Mood {
		transition := &models.MoodTransition{
			UserID:   userID,
			FromMood: previous.Mood,
			ToMood:   cls.Mood,
		}
		if err := t.transitions.Insert(ctx, transition); err != nil && t.logger != nil {
			t.logger.Warn("mood_transition_failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

// History returns mood entries for the last `days` days.
func (t *Tracker) History(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error) {
	return t.moods.History(ctx, userID, days)
}

// Transitions returns recent mood transitions.
func (t *Tracker) Transitions(ctx context.Context, userID string, limit int) ([]*models.MoodTransition, error) {
	return t.transitions.ListByUser(ctx, userID, limit)
}

// MoodBar builds the compact recent-mood view used by chat UIs.
func (t *Tracker) MoodBar(ctx context.Context, userID string) (*models.MoodBar, error) {
	recent, err := t.moods.Recent(ctx, userID, 10)
	if err != nil {
		return nil, err
	}
	bar := &models.MoodBar{
		UserID: userID,
		Counts: map[string]int{},
	}
	for _, e := range recent {
		bar.Recent = append(bar.Recent, *e)
		bar.Counts[e.Mood]++
	}
	if len(recent) > 0 {
		bar.Current = &recent[0].Mood
	}
	return bar, nil
}

// Insights aggregates the last 30 days of entries into trends and patterns.
func (t *Tracker) Insights(ctx context.Context, userID string) (*models.MoodInsights, error) {
	entries, err := t.moods.History(ctx, userID, 30)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return &models.MoodInsights{
			Message: "Not enough data yet. Log a few moods to see insights!",
		}, nil
	}

	insights := &models.MoodInsights{
		EntryCount: len(entries),
	}

	counts := map[string]int{}
	total := 0
	for _, e := range entries {
		counts[e.Mood]++
		total += e.Intensity
	}
	insights.AvgIntensity = round1(float64(total) / float64(len(entries)))

	best, bestN := "", 0
	for m, n := range counts {
		if n > bestN || (n == bestN && m < best) {
			best, bestN = m, n
		}
	}
	insights.MostCommonMood = best

	insights.Trend = detectTrend(entries)
	insights.TopTriggers = topTriggers(entries, 3)
	insights.TimeOfDay = timeOfDayCounts(entries)
	insights.Message = insightMessage(insights)

	return insights, nil
}

// detectTrend compares the newest 7 entries against the 7 before them.
// Entries arrive newest first.
func detectTrend(entries []*models.MoodEntry) string {
	if len(entries) < 14 {
		return "stable"
	}
	lastAvg := avgIntensity(entries[:7])
	prevAvg := avgIntensity(entries[7:14])
	switch {
	case lastAvg > prevAvg+1:
		return "improving"
	case lastAvg < prevAvg-1:
		return "declining"
	}
	return "stable"
}

func avgIntensity(entries []*models.MoodEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	total := 0
	for _, e := range entries {
		total += e.Intensity
	}
	return float64(total) / float64(len(entries))
}

// topTriggers pulls the most frequent meaningful words out of entry notes.
func topTriggers(entries []*models.MoodEntry, n int) []string {
	counts := map[string]int{}
	for _, e := range entries {
		for _, w := range strings.Fields(strings.ToLower(e.Notes)) {
			w = strings.Trim(w, ".,!?\"'")
			if len(w) > 3 {
				counts[w]++
			}
		}
	}
	type wc struct {
		word  string
		count int
	}
	list := make([]wc, 0, len(counts))
	for w, c := range counts {
		if c > 1 {
			list = append(list, wc{w, c})
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].word < list[j].word
	})
	if len(list) > n {
		list = list[:n]
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.word)
	}
	return out
}

func timeOfDayCounts(entries []*models.MoodEntry) map[string]int {
	buckets := map[string]int{}
	for _, e := range entries {
		hour := e.CreatedAt.Hour()
		switch {
		case hour >= 6 && hour < 12:
			buckets["morning"]++
		case hour >= 12 && hour < 18:
			buckets["afternoon"]++
		case hour >= 18:
			buckets["evening"]++
		default:
			buckets["night"]++
		}
	}
	return buckets
}

func insightMessage(in *models.MoodInsights) string {
	var parts []string

	if in.EntryCount < 5 {
		parts = append(parts, fmt.Sprintf("You've logged %d moods so far. Keep going to see better insights!", in.EntryCount))
	} else {
		parts = append(parts, fmt.Sprintf("You've logged %d moods in the last 30 days.", in.EntryCount))
	}

	if in.MostCommonMood != "" {
		parts = append(parts, fmt.Sprintf("You've been feeling %s most often.", in.MostCommonMood))
	}

	switch in.Trend {
	case "improving":
		parts = append(parts, "Great news - your mood seems to be improving lately!")
	case "declining":
		parts = append(parts, "I notice your mood has been lower recently. Want to talk about it?")
	case "stable":
		parts = append(parts, "Your mood has been pretty stable.")
	}

	switch {
	case in.AvgIntensity >= 7:
		parts = append(parts, "Overall, you're doing pretty well!")
	case in.AvgIntensity >= 5:
		parts = append(parts, "You're hanging in there.")
	default:
		parts = append(parts, "It's been a tough time. Remember, it's ok to reach out for support.")
	}

	return strings.Join(parts, " ")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
