package summary

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/models"
	"github.com/mindwell/mindwell-api/internal/services/ai"
)

// countingProvider returns canned summaries and counts Summarize calls per tier.
type countingProvider struct {
	calls map[string]int
	fail  bool
}

func newCountingProvider() *countingProvider {
	return &countingProvider{calls: map[string]int{}}
}

func (p *countingProvider) Chat(ctx context.Context, systemPrompt string, messages []ai.ChatMessage) (string, error) {
	return "ok", nil
}

func (p *countingProvider) ClassifyMood(ctx context.Context, message string) (*ai.MoodAnalysis, error) {
	return nil, nil
}

func (p *countingProvider) Summarize(ctx context.Context, tier string, body string) (string, error) {
	p.calls[tier]++
	if p.fail {
		return "", fmt.Errorf("model unavailable")
	}
	return tier + " summary " + fmt.Sprint(p.calls[tier]), nil
}

type memorySummaryRepo struct {
	rows map[string]*models.Summary
}

func newMemorySummaryRepo() *memorySummaryRepo {
	return &memorySummaryRepo{rows: map[string]*models.Summary{}}
}

func key(tier, userID, periodKey string) string {
	return tier + "|" + userID + "|" + periodKey
}

func (r *memorySummaryRepo) Insert(ctx context.Context, s *models.Summary) (bool, error) {
	k := key(s.Tier, s.UserID, s.PeriodKey)
	if _, exists := r.rows[k]; exists {
		return false, nil
	}
	copied := *s
	copied.CreatedAt = time.Now().UTC()
	r.rows[k] = &copied
	return true, nil
}

func (r *memorySummaryRepo) Exists(ctx context.Context, tier, userID, periodKey string) (bool, error) {
	_, ok := r.rows[key(tier, userID, periodKey)]
	return ok, nil
}

func (r *memorySummaryRepo) Get(ctx context.Context, tier, userID, periodKey string) (*models.Summary, error) {
	s, ok := r.rows[key(tier, userID, periodKey)]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memorySummaryRepo) LastN(ctx context.Context, tier, userID string, n int) ([]*models.Summary, error) {
	all, _ := r.ListAll(ctx, tier, userID)
	// ListAll is oldest first; LastN is newest first.
	var out []*models.Summary
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *memorySummaryRepo) ListAll(ctx context.Context, tier, userID string) ([]*models.Summary, error) {
	var keys []string
	for k := range r.rows {
		if strings.HasPrefix(k, tier+"|"+userID+"|") {
			keys = append(keys, k)
		}
	}
	// Period keys sort lexicographically within a tier.
	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	out := make([]*models.Summary, 0, len(keys))
	for _, k := range keys {
		copied := *r.rows[k]
		out = append(out, &copied)
	}
	return out, nil
}

func msgAt(t time.Time, role, content string) models.Message {
	return models.Message{ID: uuid.New(), Role: role, Content: content, Timestamp: t}
}

func dayMessages(day time.Time, n int) []models.Message {
	msgs := make([]models.Message, 0, n)
	for i := 0; i < n; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		msgs = append(msgs, msgAt(day.Add(time.Duration(i)*time.Minute), role, fmt.Sprintf("message %d", i)))
	}
	return msgs
}

func TestPipeline_DailyThreshold(t *testing.T) {
	t.Parallel()

	provider := newCountingProvider()
	repo := newMemorySummaryRepo()
	p := NewPipeline(provider, repo, zap.NewNop())
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return now })

	thin := dayMessages(time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), DailyMessageThreshold-1)
	full := dayMessages(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), DailyMessageThreshold)
	conversation := append(thin, full...)

	if err := p.Run(context.Background(), "user-1", conversation); err != nil {
		t.Fatalf("run: %v", err)
	}

	if exists, _ := repo.Exists(context.Background(), models.TierDaily, "user-1", "2026-03-09"); exists {
		t.Error("day below threshold should not be summarized")
	}
	if exists, _ := repo.Exists(context.Background(), models.TierDaily, "user-1", "2026-03-10"); !exists {
		t.Error("day at threshold should be summarized")
	}
	if provider.calls["daily"] != 1 {
		t.Errorf("daily Summarize calls = %d, want 1", provider.calls["daily"])
	}
}

func TestPipeline_CurrentDayExcluded(t *testing.T) {
	t.Parallel()

	provider := newCountingProvider()
	repo := newMemorySummaryRepo()
	p := NewPipeline(provider, repo, zap.NewNop())
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return now })

	conversation := dayMessages(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), 6)
	if err := p.Run(context.Background(), "user-1", conversation); err != nil {
		t.Fatalf("run: %v", err)
	}

	if provider.calls["daily"] != 0 {
		t.Errorf("today should never be summarized, got %d calls", provider.calls["daily"])
	}
}

func TestPipeline_Idempotent(t *testing.T) {
	t.Parallel()

	provider := newCountingProvider()
	repo := newMemorySummaryRepo()
	p := NewPipeline(provider, repo, zap.NewNop())
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return now })

	conversation := dayMessages(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 4)

	for i := 0; i < 3; i++ {
		if err := p.Run(context.Background(), "user-1", conversation); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if provider.calls["daily"] != 1 {
		t.Errorf("daily Summarize calls = %d, want 1 (cache-once)", provider.calls["daily"])
	}
}

func TestPipeline_FailedGenerationRetriesNextPass(t *testing.T) {
	t.Parallel()

	provider := newCountingProvider()
	provider.fail = true
	repo := newMemorySummaryRepo()
	p := NewPipeline(provider, repo, zap.NewNop())
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return now })

	conversation := dayMessages(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), 4)

	if err := p.Run(context.Background(), "user-1", conversation); err != nil {
		t.Fatalf("run with failing model: %v", err)
	}
	if exists, _ := repo.Exists(context.Background(), models.TierDaily, "user-1", "2026-03-10"); exists {
		t.Fatal("failed generation must not write a summary")
	}

	provider.fail = false
	if err := p.Run(context.Background(), "user-1", conversation); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if exists, _ := repo.Exists(context.Background(), models.TierDaily, "user-1", "2026-03-10"); !exists {
		t.Error("bucket should be summarized on the next pass")
	}
}

func TestPipeline_WeeklyAndMonthlyRollup(t *testing.T) {
	t.Parallel()

	provider := newCountingProvider()
	repo := newMemorySummaryRepo()
	p := NewPipeline(provider, repo, zap.NewNop())
	// Far enough ahead that March weeks and the month itself are closed.
	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return now })

	// Two chatty days inside ISO week 2026-W11, two inside 2026-W12.
	var conversation []models.Message
	for _, day := range []time.Time{
		time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC),
	} {
		conversation = append(conversation, dayMessages(day, 4)...)
	}

	if err := p.Run(context.Background(), "user-1", conversation); err != nil {
		t.Fatalf("run: %v", err)
	}

	if provider.calls["daily"] != 4 {
		t.Errorf("daily calls = %d, want 4", provider.calls["daily"])
	}
	for _, week := range []string{"2026-W11", "2026-W12"} {
		if exists, _ := repo.Exists(context.Background(), models.TierWeekly, "user-1", week); !exists {
			t.Errorf("weekly summary missing for %s", week)
		}
	}
	// Both weeklies land in March, so one monthly rolls up in the same pass.
	if exists, _ := repo.Exists(context.Background(), models.TierMonthly, "user-1", "2026-03"); !exists {
		t.Error("monthly summary missing for 2026-03")
	}
}

func TestPipeline_BuildContext(t *testing.T) {
	t.Parallel()

	provider := newCountingProvider()
	repo := newMemorySummaryRepo()
	p := NewPipeline(provider, repo, zap.NewNop())
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	p.SetClock(func() time.Time { return now })

	ctx := context.Background()
	seed := []*models.Summary{
		{UserID: "user-1", Tier: models.TierMonthly, PeriodKey: "2026-01", Content: "january themes"},
		{UserID: "user-1", Tier: models.TierWeekly, PeriodKey: "2026-W09", Content: "week nine"},
		{UserID: "user-1", Tier: models.TierWeekly, PeriodKey: "2026-W10", Content: "week ten"},
		{UserID: "user-1", Tier: models.TierDaily, PeriodKey: "2026-03-10", Content: "yesterday recap"},
	}
	for _, s := range seed {
		if _, err := repo.Insert(ctx, s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	conversation := dayMessages(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), ContextRawMessages+4)

	block, err := p.BuildContext(ctx, "user-1", conversation)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}

	for _, want := range []string{"january themes", "week nine", "week ten", "yesterday recap"} {
		if !strings.Contains(block, want) {
			t.Errorf("context missing %q:\n%s", want, block)
		}
	}

	// Weeklies come oldest first.
	if strings.Index(block, "week nine") > strings.Index(block, "week ten") {
		t.Error("weekly summaries should be ordered oldest first")
	}

	// Only the newest raw messages survive.
	if strings.Contains(block, "message 0\n") {
		t.Error("oldest raw messages should be trimmed from context")
	}
	last := fmt.Sprintf("message %d", ContextRawMessages+3)
	if !strings.Contains(block, last) {
		t.Errorf("context missing newest message %q", last)
	}
}

func TestPipeline_BuildContext_EmptyState(t *testing.T) {
	t.Parallel()

	p := NewPipeline(newCountingProvider(), newMemorySummaryRepo(), zap.NewNop())
	block, err := p.BuildContext(context.Background(), "user-1", nil)
	if err != nil {
		t.Fatalf("build context: %v", err)
	}
	if block != "" {
		t.Errorf("expected empty context, got %q", block)
	}
}

func TestPeriodKeys(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	if got := DailyKey(ts); got != "2026-01-01" {
		t.Errorf("DailyKey = %q", got)
	}
	// Jan 1 2026 falls in ISO week 2026-W01.
	if got := WeeklyKey(ts); got != "2026-W01" {
		t.Errorf("WeeklyKey = %q", got)
	}
	if got := MonthlyKey(ts); got != "2026-01" {
		t.Errorf("MonthlyKey = %q", got)
	}

	// ISO year can differ from the calendar year.
	ny := time.Date(2027, 1, 1, 8, 0, 0, 0, time.UTC)
	if got := WeeklyKey(ny); got != "2026-W53" {
		t.Errorf("WeeklyKey(2027-01-01) = %q, want 2026-W53", got)
	}
}
