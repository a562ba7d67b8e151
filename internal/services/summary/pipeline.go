package summary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/mindwell/mindwell-api/internal/models"
	"github.com/mindwell/mindwell-api/internal/services/ai"
)

const (
	// DailyMessageThreshold is the minimum messages a day needs before it
	// is summarized.
	DailyMessageThreshold = 3
	// WeeklyDailyThreshold is the minimum daily summaries an ISO week needs.
	WeeklyDailyThreshold = 2
	// MonthlyWeeklyThreshold is the minimum weekly summaries a month needs.
	MonthlyWeeklyThreshold = 2
	// ContextRawMessages is how many raw turns the assembled context keeps.
	ContextRawMessages = 8
)

// Pipeline maintains the tiered summary cache. Each tier is written at most
// once per period key and never regenerated; the current period is never
// summarized. A failed generation leaves its bucket eligible for the next
// pass.
type Pipeline struct {
	provider  ai.AIProvider
	summaries database.SummaryRepositoryInterface
	logger    *zap.Logger
	now       func() time.Time
}

// NewPipeline creates a new summarization pipeline
func NewPipeline(provider ai.AIProvider, summaries database.SummaryRepositoryInterface, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		provider:  provider,
		summaries: summaries,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the pipeline clock. Used by tests.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// DailyKey formats a daily period key.
func DailyKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WeeklyKey formats an ISO year-week period key.
func WeeklyKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// MonthlyKey formats a year-month period key.
func MonthlyKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// Run performs one bottom-up pass for a user: daily, then weekly, then
// monthly, so higher tiers can consume summaries produced in the same pass.
// LLM failures are logged and swallowed; storage errors are returned.
func (p *Pipeline) Run(ctx context.Context, userID string, conversation []models.Message) error {
	if p.provider == nil {
		return nil
	}
	if err := p.runDaily(ctx, userID, conversation); err != nil {
		return err
	}
	if err := p.runWeekly(ctx, userID); err != nil {
		return err
	}
	return p.runMonthly(ctx, userID)
}

func (p *Pipeline) runDaily(ctx context.Context, userID string, conversation []models.Message) error {
	today := DailyKey(p.now())

	buckets := map[string][]models.Message{}
	for _, msg := range conversation {
		key := DailyKey(msg.Timestamp)
		if key >= today {
			continue
		}
		buckets[key] = append(buckets[key], msg)
	}

	keys := sortedKeys(buckets)
	for _, key := range keys {
		msgs := buckets[key]
		if len(msgs) < DailyMessageThreshold {
			continue
		}
		exists, err := p.summaries.Exists(ctx, models.TierDaily, userID, key)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		var body strings.Builder
		for _, m := range msgs {
			body.WriteString(m.Role)
			body.WriteString(": ")
			body.WriteString(m.Content)
			body.WriteString("\n")
		}

		content, err := p.provider.Summarize(ctx, models.TierDaily, body.String())
		if err != nil {
			p.logSkip(models.TierDaily, userID, key, err)
			continue
		}
		if _, err := p.summaries.Insert(ctx, &models.Summary{
			UserID:    userID,
			Tier:      models.TierDaily,
			PeriodKey: key,
			Content:   strings.TrimSpace(content),
			SourceN:   len(msgs),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runWeekly(ctx context.Context, userID string) error {
	currentWeek := WeeklyKey(p.now())

	dailies, err := p.summaries.ListAll(ctx, models.TierDaily, userID)
	if err != nil {
		return err
	}

	buckets := map[string][]*models.Summary{}
	for _, d := range dailies {
		day, err := time.Parse("2006-01-02", d.PeriodKey)
		if err != nil {
			continue
		}
		key := WeeklyKey(day)
		if key >= currentWeek {
			continue
		}
		buckets[key] = append(buckets[key], d)
	}

	return p.rollUp(ctx, userID, models.TierWeekly, buckets, WeeklyDailyThreshold)
}

func (p *Pipeline) runMonthly(ctx context.Context, userID string) error {
	currentMonth := MonthlyKey(p.now())

	weeklies, err := p.summaries.ListAll(ctx, models.TierWeekly, userID)
	if err != nil {
		return err
	}

	buckets := map[string][]*models.Summary{}
	for _, w := range weeklies {
		start, ok := isoWeekStart(w.PeriodKey)
		if !ok {
			continue
		}
		key := MonthlyKey(start)
		if key >= currentMonth {
			continue
		}
		buckets[key] = append(buckets[key], w)
	}

	return p.rollUp(ctx, userID, models.TierMonthly, buckets, MonthlyWeeklyThreshold)
}

// rollUp summarizes each eligible bucket of lower-tier summaries into one
// higher-tier summary.
func (p *Pipeline) rollUp(ctx context.Context, userID, tier string, buckets map[string][]*models.Summary, threshold int) error {
	for _, key := range sortedSummaryKeys(buckets) {
		parts := buckets[key]
		if len(parts) < threshold {
			continue
		}
		exists, err := p.summaries.Exists(ctx, tier, userID, key)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		var body strings.Builder
		for _, s := range parts {
			fmt.Fprintf(&body, "[%s] %s\n", s.PeriodKey, s.Content)
		}

		content, err := p.provider.Summarize(ctx, tier, body.String())
		if err != nil {
			p.logSkip(tier, userID, key, err)
			continue
		}
		if _, err := p.summaries.Insert(ctx, &models.Summary{
			UserID:    userID,
			Tier:      tier,
			PeriodKey: key,
			Content:   strings.TrimSpace(content),
			SourceN:   len(parts),
		}); err != nil {
			return err
		}
	}
	return nil
}

// BuildContext assembles the prompt context: latest monthly summary, last two
// weekly summaries, yesterday's daily summary, then the last raw messages.
// Empty sections are omitted.
func (p *Pipeline) BuildContext(ctx context.Context, userID string, conversation []models.Message) (string, error) {
	var sections []string

	monthlies, err := p.summaries.LastN(ctx, models.TierMonthly, userID, 1)
	if err != nil {
		return "", err
	}
	if len(monthlies) > 0 {
		sections = append(sections, "Earlier months:\n"+monthlies[0].Content)
	}

	weeklies, err := p.summaries.LastN(ctx, models.TierWeekly, userID, 2)
	if err != nil {
		return "", err
	}
	if len(weeklies) > 0 {
		var b strings.Builder
		b.WriteString("Recent weeks:\n")
		// LastN returns newest first; present oldest first.
		for i := len(weeklies) - 1; i >= 0; i-- {
			fmt.Fprintf(&b, "[%s] %s\n", weeklies[i].PeriodKey, weeklies[i].Content)
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	yesterday := DailyKey(p.now().AddDate(0, 0, -1))
	daily, err := p.summaries.Get(ctx, models.TierDaily, userID, yesterday)
	if err != nil {
		return "", err
	}
	if daily != nil {
		sections = append(sections, "Yesterday:\n"+daily.Content)
	}

	if len(conversation) > 0 {
		recent := conversation
		if len(recent) > ContextRawMessages {
			recent = recent[len(recent)-ContextRawMessages:]
		}
		var b strings.Builder
		b.WriteString("Recent messages:\n")
		for _, m := range recent {
			b.WriteString(m.Role)
			b.WriteString(": ")
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}

	return strings.Join(sections, "\n\n"), nil
}

func (p *Pipeline) logSkip(tier, userID, key string, err error) {
	if p.logger != nil {
		p.logger.Warn("summary_generation_failed",
			zap.String("tier", tier),
			zap.String("user_id", userID),
			zap.String("period_key", key),
			zap.Error(err),
		)
	}
}

// isoWeekStart returns the Monday of an ISO "yyyy-Www" period key.
func isoWeekStart(key string) (time.Time, bool) {
	var year, week int
	if _, err := fmt.Sscanf(key, "%d-W%d", &year, &week); err != nil {
		return time.Time{}, false
	}
	// January 4th is always inside ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := int(jan4.Weekday())
	if offset == 0 {
		offset = 7 // Sunday
	}
	week1Monday := jan4.AddDate(0, 0, 1-offset)
	return week1Monday.AddDate(0, 0, (week-1)*7), true
}

func sortedKeys(m map[string][]models.Message) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSummaryKeys(m map[string][]*models.Summary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
