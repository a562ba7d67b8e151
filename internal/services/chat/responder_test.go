package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/models"
	"github.com/mindwell/mindwell-api/internal/services/ai"
	"github.com/mindwell/mindwell-api/internal/services/mood"
	"github.com/mindwell/mindwell-api/internal/services/summary"
)

// scriptedProvider returns a fixed chat reply and leaves classification to the
// keyword fallback.
type scriptedProvider struct {
	reply    string
	chatErr  error
	chatLogs []string
}

func (p *scriptedProvider) Chat(ctx context.Context, systemPrompt string, messages []ai.ChatMessage) (string, error) {
	if len(messages) > 0 {
		p.chatLogs = append(p.chatLogs, messages[len(messages)-1].Content)
	}
	if p.chatErr != nil {
		return "", p.chatErr
	}
	return p.reply, nil
}

func (p *scriptedProvider) ClassifyMood(ctx context.Context, message string) (*ai.MoodAnalysis, error) {
	return nil, nil
}

func (p *scriptedProvider) Summarize(ctx context.Context, tier string, body string) (string, error) {
	return "summary", nil
}

type memoryUserRepo struct {
	records map[string]*models.UserRecord
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{records: map[string]*models.UserRecord{}}
}

func (r *memoryUserRepo) Load(ctx context.Context, userID string) (*models.UserRecord, error) {
	if rec, ok := r.records[userID]; ok {
		copied := *rec
		return &copied, nil
	}
	return models.NewUserRecord(userID, time.Now().UTC()), nil
}

func (r *memoryUserRepo) Save(ctx context.Context, rec *models.UserRecord) error {
	copied := *rec
	r.records[rec.UserID] = &copied
	return nil
}

func (r *memoryUserRepo) TouchActivity(ctx context.Context, userID string) error {
	return nil
}

type memoryMoodRepo struct {
	entries []*models.MoodEntry
}

func (r *memoryMoodRepo) Insert(ctx context.Context, e *models.MoodEntry) error {
	copied := *e
	copied.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *memoryMoodRepo) Latest(ctx context.Context, userID string) (*models.MoodEntry, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID == userID {
			copied := *r.entries[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *memoryMoodRepo) History(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error) {
	return nil, nil
}

func (r *memoryMoodRepo) Recent(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error) {
	return nil, nil
}

type memoryTransitionRepo struct {
	transitions []*models.MoodTransition
}

func (r *memoryTransitionRepo) Insert(ctx context.Context, t *models.MoodTransition) error {
	copied := *t
	r.transitions = append(r.transitions, &copied)
	return nil
}

func (r *memoryTransitionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.MoodTransition, error) {
	return r.transitions, nil
}

func (r *memoryTransitionRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type memorySummaryRepo struct {
	rows map[string]*models.Summary
}

func newMemorySummaryRepo() *memorySummaryRepo {
	return &memorySummaryRepo{rows: map[string]*models.Summary{}}
}

func (r *memorySummaryRepo) summaryKey(tier, userID, periodKey string) string {
	return tier + "|" + userID + "|" + periodKey
}

func (r *memorySummaryRepo) Insert(ctx context.Context, s *models.Summary) (bool, error) {
	k := r.summaryKey(s.Tier, s.UserID, s.PeriodKey)
	if _, ok := r.rows[k]; ok {
		return false, nil
	}
	copied := *s
	r.rows[k] = &copied
	return true, nil
}

func (r *memorySummaryRepo) Exists(ctx context.Context, tier, userID, periodKey string) (bool, error) {
	_, ok := r.rows[r.summaryKey(tier, userID, periodKey)]
	return ok, nil
}

func (r *memorySummaryRepo) Get(ctx context.Context, tier, userID, periodKey string) (*models.Summary, error) {
	s, ok := r.rows[r.summaryKey(tier, userID, periodKey)]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memorySummaryRepo) LastN(ctx context.Context, tier, userID string, n int) ([]*models.Summary, error) {
	return nil, nil
}

func (r *memorySummaryRepo) ListAll(ctx context.Context, tier, userID string) ([]*models.Summary, error) {
	return nil, nil
}

func newTestResponder(provider ai.AIProvider) (*Responder, *memoryUserRepo, *memoryMoodRepo) {
	users := newMemoryUserRepo()
	moods := &memoryMoodRepo{}
	transitions := &memoryTransitionRepo{}
	logger := zap.NewNop()

	classifier := mood.NewClassifier(provider, logger)
	tracker := mood.NewTracker(moods, transitions, logger)
	pipeline := summary.NewPipeline(provider, newMemorySummaryRepo(), logger)

	return NewResponder(provider, users, classifier, tracker, pipeline, nil, logger), users, moods
}

func TestResponder_Respond_PersistsTurn(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{reply: "That sounds tough."}
	r, users, _ := newTestResponder(provider)

	reply, err := r.Respond(context.Background(), "user-1", "work has been a lot lately")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}

	// Casual post-processing may drop the period or lowercase the first
	// letter, but never rewrites the text itself.
	if !strings.Contains(strings.ToLower(reply.Response), "that sounds tough") {
		t.Errorf("unexpected reply %q", reply.Response)
	}
	if reply.IsCrisis {
		t.Error("ordinary message flagged as crisis")
	}

	rec := users.records["user-1"]
	if rec == nil {
		t.Fatal("record not saved")
	}
	if len(rec.Conversation) != 2 {
		t.Fatalf("conversation length = %d, want 2", len(rec.Conversation))
	}
	if rec.Conversation[0].Role != "user" || rec.Conversation[1].Role != "assistant" {
		t.Error("turn roles out of order")
	}
	if rec.Stats.TotalMessages != 2 {
		t.Errorf("total messages = %d, want 2", rec.Stats.TotalMessages)
	}
	if rec.Stats.LastActivity == nil {
		t.Error("last activity not set")
	}
}

func TestResponder_Respond_Crisis(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{reply: "Yo hold up, that sounds really serious. Call 988 right now."}
	r, _, _ := newTestResponder(provider)

	reply, err := r.Respond(context.Background(), "user-1", "i want to kill myself")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}

	if !reply.IsCrisis {
		t.Fatal("crisis message not flagged")
	}
	if len(reply.CrisisResources) == 0 {
		t.Error("crisis resources missing")
	}
	if len(reply.Suggestions) != 0 {
		t.Error("crisis turns must not carry casual suggestions")
	}
	// Crisis replies skip the casual-texting touch entirely.
	if reply.Response != provider.reply {
		t.Errorf("crisis reply was altered: %q", reply.Response)
	}
}

func TestResponder_Respond_LowMoodSuggestions(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{reply: "damn, that sucks"}
	r, _, moods := newTestResponder(provider)

	reply, err := r.Respond(context.Background(), "user-1", "i'm so anxious about tomorrow")
	if err != nil {
		t.Fatalf("respond: %v", err)
	}

	if reply.Mood == nil || *reply.Mood != models.MoodAnxious {
		t.Fatalf("mood = %v, want anxious", reply.Mood)
	}
	if len(reply.Suggestions) == 0 {
		t.Error("anxious turn should carry suggestions")
	}
	if len(moods.entries) != 1 {
		t.Errorf("mood entries recorded = %d, want 1", len(moods.entries))
	}
}

func TestResponder_Respond_FallbackOnLLMFailure(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{chatErr: errors.New("model down")}
	r, users, _ := newTestResponder(provider)

	reply, err := r.Respond(context.Background(), "user-1", "hey")
	if err != nil {
		t.Fatalf("respond should survive LLM failure: %v", err)
	}

	found := false
	for _, canned := range fallbackReplies {
		if reply.Response == canned {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("reply %q is not one of the canned fallbacks", reply.Response)
	}
	if users.records["user-1"] == nil {
		t.Error("turn was not persisted after fallback")
	}
}

func TestResponder_HistoryAndClear(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{reply: "yea i hear u"}
	r, users, _ := newTestResponder(provider)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.Respond(ctx, "user-1", "checking in"); err != nil {
			t.Fatalf("respond %d: %v", i, err)
		}
	}

	all, err := r.History(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("history length = %d, want 6", len(all))
	}

	limited, err := r.History(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("limited history: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited history length = %d, want 2", len(limited))
	}
	// The newest messages survive the limit.
	if limited[1].ID != all[5].ID {
		t.Error("limit should keep the tail of the conversation")
	}

	if err := r.ClearHistory(ctx, "user-1"); err != nil {
		t.Fatalf("clear history: %v", err)
	}
	rec := users.records["user-1"]
	if len(rec.Conversation) != 0 {
		t.Error("conversation not cleared")
	}
	if rec.Stats.TotalMessages != 0 {
		t.Error("message counter not reset")
	}
}

func TestMakeHumanLike_NeverTouchesShortText(t *testing.T) {
	t.Parallel()

	provider := &scriptedProvider{}
	r, _, _ := newTestResponder(provider)

	if got := r.makeHumanLike("ok"); got != "ok" {
		t.Errorf("short text changed: %q", got)
	}
}
