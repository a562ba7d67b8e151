package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/models"
	"github.com/mindwell/mindwell-api/internal/queue"
	"github.com/mindwell/mindwell-api/internal/services/ai"
	"github.com/mindwell/mindwell-api/internal/services/summary"
)

type stubProvider struct {
	summarizeCalls int
}

func (p *stubProvider) Chat(ctx context.Context, systemPrompt string, messages []ai.ChatMessage) (string, error) {
	return "", nil
}

func (p *stubProvider) ClassifyMood(ctx context.Context, message string) (*ai.MoodAnalysis, error) {
	return nil, nil
}

func (p *stubProvider) Summarize(ctx context.Context, tier string, body string) (string, error) {
	p.summarizeCalls++
	return "condensed", nil
}

type stubUserRepo struct {
	record  *models.UserRecord
	loadErr error
}

func (r *stubUserRepo) Load(ctx context.Context, userID string) (*models.UserRecord, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.record, nil
}

func (r *stubUserRepo) Save(ctx context.Context, rec *models.UserRecord) error { return nil }

func (r *stubUserRepo) TouchActivity(ctx context.Context, userID string) error { return nil }

type stubTransitionRepo struct {
	pruned    int64
	gotCutoff time.Time
	pruneErr  error
}

func (r *stubTransitionRepo) Insert(ctx context.Context, t *models.MoodTransition) error { return nil }

func (r *stubTransitionRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.MoodTransition, error) {
	return nil, nil
}

func (r *stubTransitionRepo) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.gotCutoff = cutoff
	return r.pruned, r.pruneErr
}

type stubSummaryRepo struct {
	inserted int
}

func (r *stubSummaryRepo) Insert(ctx context.Context, s *models.Summary) (bool, error) {
	r.inserted++
	return true, nil
}

func (r *stubSummaryRepo) Exists(ctx context.Context, tier, userID, periodKey string) (bool, error) {
	return false, nil
}

func (r *stubSummaryRepo) Get(ctx context.Context, tier, userID, periodKey string) (*models.Summary, error) {
	return nil, nil
}

func (r *stubSummaryRepo) LastN(ctx context.Context, tier, userID string, n int) ([]*models.Summary, error) {
	return nil, nil
}

func (r *stubSummaryRepo) ListAll(ctx context.Context, tier, userID string) ([]*models.Summary, error) {
	return nil, nil
}

func TestSummarizer_ProcessSummarizeUserJob(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	summaryRepo := &stubSummaryRepo{}
	pipeline := summary.NewPipeline(provider, summaryRepo, zap.NewNop())

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	conversation := []models.Message{
		{ID: uuid.New(), Role: "user", Content: "rough day", Timestamp: yesterday},
		{ID: uuid.New(), Role: "assistant", Content: "tell me more", Timestamp: yesterday.Add(time.Minute)},
		{ID: uuid.New(), Role: "user", Content: "just tired", Timestamp: yesterday.Add(2 * time.Minute)},
	}
	users := &stubUserRepo{record: &models.UserRecord{UserID: "user-1", Conversation: conversation}}

	s := NewSummarizer(pipeline, users, &stubTransitionRepo{}, nil, 90)

	job := queue.NewJob(queue.JobTypeSummarizeUser, "user-1")
	if err := s.ProcessSummarizeUserJob(context.Background(), job); err != nil {
		t.Fatalf("process: %v", err)
	}
	if summaryRepo.inserted != 1 {
		t.Errorf("summaries inserted = %d, want 1", summaryRepo.inserted)
	}
}

func TestSummarizer_ProcessSummarizeUserJob_Errors(t *testing.T) {
	t.Parallel()

	pipeline := summary.NewPipeline(&stubProvider{}, &stubSummaryRepo{}, zap.NewNop())

	s := NewSummarizer(pipeline, &stubUserRepo{loadErr: errors.New("db closed")}, &stubTransitionRepo{}, nil, 90)
	job := queue.NewJob(queue.JobTypeSummarizeUser, "user-1")
	if err := s.ProcessSummarizeUserJob(context.Background(), job); err == nil {
		t.Error("expected load error to propagate")
	}

	noUser := queue.NewJob(queue.JobTypeSummarizeUser, "")
	if err := s.ProcessSummarizeUserJob(context.Background(), noUser); err == nil {
		t.Error("expected error for missing user_id")
	}
}

func TestSummarizer_PruneTransitions(t *testing.T) {
	t.Parallel()

	pipeline := summary.NewPipeline(&stubProvider{}, &stubSummaryRepo{}, zap.NewNop())
	transitions := &stubTransitionRepo{pruned: 5}

	s := NewSummarizer(pipeline, &stubUserRepo{}, transitions, nil, 30)
	before := time.Now().AddDate(0, 0, -30)

	if err := s.PruneTransitions(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	// The cutoff honors the configured retention window.
	if transitions.gotCutoff.After(time.Now().AddDate(0, 0, -29)) || transitions.gotCutoff.Before(before.Add(-time.Minute)) {
		t.Errorf("cutoff %v not ~30 days back", transitions.gotCutoff)
	}
}

func TestSummarizer_DefaultRetention(t *testing.T) {
	t.Parallel()

	pipeline := summary.NewPipeline(&stubProvider{}, &stubSummaryRepo{}, zap.NewNop())
	s := NewSummarizer(pipeline, &stubUserRepo{}, &stubTransitionRepo{}, nil, 0)
	if s.retentionDays != 90 {
		t.Errorf("retentionDays = %d, want 90", s.retentionDays)
	}
}
