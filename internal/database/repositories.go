package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mindwell/mindwell-api/internal/models"
)

// UserRepositoryInterface defines the interface for user record operations.
// These interfaces enable better testability by allowing mock implementations.
type UserRepositoryInterface interface {
	Load(ctx context.Context, userID string) (*models.UserRecord, error)
	Save(ctx context.Context, rec *models.UserRecord) error
	TouchActivity(ctx context.Context, userID string) error
}

// MoodRepositoryInterface defines the interface for mood entry operations
type MoodRepositoryInterface interface {
	Insert(ctx context.Context, e *models.MoodEntry) error
	Latest(ctx context.Context, userID string) (*models.MoodEntry, error)
	History(ctx context.Context, userID string, days int) ([]*models.MoodEntry, error)
	Recent(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error)
}

// TransitionRepositoryInterface defines the interface for mood transition operations
type TransitionRepositoryInterface interface {
	Insert(ctx context.Context, t *models.MoodTransition) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.MoodTransition, error)
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SummaryRepositoryInterface defines the interface for summary cache operations
type SummaryRepositoryInterface interface {
	Insert(ctx context.Context, s *models.Summary) (bool, error)
	Exists(ctx context.Context, tier, userID, periodKey string) (bool, error)
	Get(ctx context.Context, tier, userID, periodKey string) (*models.Summary, error)
	LastN(ctx context.Context, tier, userID string, n int) ([]*models.Summary, error)
	ListAll(ctx context.Context, tier, userID string) ([]*models.Summary, error)
}

// EventRepositoryInterface defines the interface for calendar event records
type EventRepositoryInterface interface {
	Create(ctx context.Context, e *models.CalendarEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CalendarEvent, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.CalendarEvent, error)
	ListUpcoming(ctx context.Context, userID string, after time.Time, limit int) ([]*models.CalendarEvent, error)
	Update(ctx context.Context, e *models.CalendarEvent) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Ensure concrete types implement the interfaces
var (
	_ UserRepositoryInterface       = (*UserRepository)(nil)
	_ MoodRepositoryInterface       = (*MoodRepository)(nil)
	_ TransitionRepositoryInterface = (*TransitionRepository)(nil)
	_ SummaryRepositoryInterface    = (*SummaryRepository)(nil)
	_ EventRepositoryInterface      = (*EventRepository)(nil)
)
