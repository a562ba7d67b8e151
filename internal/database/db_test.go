package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mindwell/mindwell-api/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// Loading an unknown user materializes a default record.
	rec, err := repo.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.UserID != "user-1" {
		t.Errorf("user id = %q", rec.UserID)
	}
	if len(rec.Conversation) != 0 {
		t.Errorf("fresh record has %d messages", len(rec.Conversation))
	}

	rec.Conversation = append(rec.Conversation, models.Message{
		ID: uuid.New(), Role: "user", Content: "hello", Timestamp: time.Now().UTC(),
	})
	rec.Stats.TotalMessages = 1
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.Conversation) != 1 || loaded.Conversation[0].Content != "hello" {
		t.Errorf("conversation did not round-trip: %+v", loaded.Conversation)
	}
	if loaded.Stats.TotalMessages != 1 {
		t.Errorf("stats did not round-trip: %+v", loaded.Stats)
	}

	exists, err := repo.Exists(ctx, "user-1")
	if err != nil || !exists {
		t.Errorf("exists = %v, %v", exists, err)
	}
	exists, err = repo.Exists(ctx, "nobody")
	if err != nil || exists {
		t.Errorf("exists for unknown user = %v, %v", exists, err)
	}

	if err := repo.TouchActivity(ctx, "user-1"); err != nil {
		t.Fatalf("touch activity: %v", err)
	}
	touched, err := repo.Load(ctx, "user-1")
	if err != nil {
		t.Fatalf("load after touch: %v", err)
	}
	if touched.Stats.LastActivity == nil {
		t.Error("last activity not stamped")
	}
}

func TestMoodRepository(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewMoodRepository(db)
	ctx := context.Background()

	latest, err := repo.Latest(ctx, "user-1")
	if err != nil {
		t.Fatalf("latest on empty table: %v", err)
	}
	if latest != nil {
		t.Errorf("latest = %+v, want nil", latest)
	}

	base := time.Now().UTC().Add(-3 * time.Hour)
	moods := []struct {
		mood      string
		intensity int
	}{
		{models.MoodSad, 3},
		{models.MoodAnxious, 6},
		{models.MoodHappy, 8},
	}
	for i, m := range moods {
		e := &models.MoodEntry{
			UserID: "user-1", Mood: m.mood, Intensity: m.intensity,
			Notes: "note", CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Insert(ctx, e); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
		if e.ID == 0 {
			t.Errorf("insert %d did not set id", i)
		}
	}

	latest, err = repo.Latest(ctx, "user-1")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.Mood != models.MoodHappy {
		t.Errorf("latest = %+v, want happy", latest)
	}

	history, err := repo.History(ctx, "user-1", 7)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	// Newest first.
	if history[0].Mood != models.MoodHappy || history[2].Mood != models.MoodSad {
		t.Errorf("history order wrong: %s ... %s", history[0].Mood, history[2].Mood)
	}

	recent, err := repo.Recent(ctx, "user-1", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Mood != models.MoodHappy {
		t.Errorf("recent = %+v", recent)
	}

	other, err := repo.History(ctx, "user-2", 7)
	if err != nil {
		t.Fatalf("history other user: %v", err)
	}
	if len(other) != 0 {
		t.Error("entries leaked across users")
	}
}

func TestTransitionRepository(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewTransitionRepository(db)
	ctx := context.Background()

	old := &models.MoodTransition{
		UserID: "user-1", FromMood: models.MoodSad, ToMood: models.MoodCalm,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -100),
	}
	fresh := &models.MoodTransition{
		UserID: "user-1", FromMood: models.MoodCalm, ToMood: models.MoodHappy,
	}
	for _, tr := range []*models.MoodTransition{old, fresh} {
		if err := repo.Insert(ctx, tr); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	list, err := repo.ListByUser(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	if list[0].ToMood != models.MoodHappy {
		t.Errorf("newest first expected, got %s", list[0].ToMood)
	}

	pruned, err := repo.PruneOlderThan(ctx, time.Now().UTC().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if pruned != 1 {
		t.Errorf("pruned = %d, want 1", pruned)
	}

	list, err = repo.ListByUser(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("list after prune: %v", err)
	}
	if len(list) != 1 || list[0].ToMood != models.MoodHappy {
		t.Errorf("wrong row survived the prune: %+v", list)
	}
}

func TestSummaryRepository(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewSummaryRepository(db)
	ctx := context.Background()

	s := &models.Summary{
		Tier: models.TierDaily, UserID: "user-1",
		PeriodKey: "2026-03-10", Content: "a quiet day", SourceN: 4,
	}
	written, err := repo.Insert(ctx, s)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !written {
		t.Fatal("first insert should write")
	}

	// Same period key is a no-op: summaries are cached once.
	dup := &models.Summary{
		Tier: models.TierDaily, UserID: "user-1",
		PeriodKey: "2026-03-10", Content: "rewritten", SourceN: 9,
	}
	written, err = repo.Insert(ctx, dup)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if written {
		t.Error("duplicate period key must not overwrite")
	}

	exists, err := repo.Exists(ctx, models.TierDaily, "user-1", "2026-03-10")
	if err != nil || !exists {
		t.Errorf("exists = %v, %v", exists, err)
	}

	got, err := repo.Get(ctx, models.TierDaily, "user-1", "2026-03-10")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Content != "a quiet day" {
		t.Errorf("got %+v, want original content", got)
	}

	missing, err := repo.Get(ctx, models.TierDaily, "user-1", "2026-03-11")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("missing period returned %+v", missing)
	}

	for _, key := range []string{"2026-03-11", "2026-03-12"} {
		if _, err := repo.Insert(ctx, &models.Summary{
			Tier: models.TierDaily, UserID: "user-1", PeriodKey: key, Content: key,
		}); err != nil {
			t.Fatalf("insert %s: %v", key, err)
		}
	}

	lastTwo, err := repo.LastN(ctx, models.TierDaily, "user-1", 2)
	if err != nil {
		t.Fatalf("lastN: %v", err)
	}
	if len(lastTwo) != 2 || lastTwo[0].PeriodKey != "2026-03-12" {
		t.Errorf("lastN = %+v", lastTwo)
	}

	all, err := repo.ListAll(ctx, models.TierDaily, "user-1")
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	if len(all) != 3 || all[0].PeriodKey != "2026-03-10" {
		t.Errorf("listAll order wrong: %+v", all)
	}

	if _, err := repo.Insert(ctx, &models.Summary{Tier: "hourly", UserID: "u", PeriodKey: "x"}); err == nil {
		t.Error("unknown tier should error")
	}
}

func TestEventRepository(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewEventRepository(db)
	ctx := context.Background()

	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	e := &models.CalendarEvent{
		UserID:    "user-1",
		RemoteID:  "gcal-abc",
		Summary:   "Therapy session",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		EventType: "therapy",
	}
	if err := repo.Create(ctx, e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == uuid.Nil {
		t.Fatal("create did not assign an id")
	}

	got, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Summary != "Therapy session" || got.RemoteID != "gcal-abc" {
		t.Errorf("got %+v", got)
	}

	none, err := repo.GetByID(ctx, uuid.New())
	if err != nil {
		t.Fatalf("get unknown: %v", err)
	}
	if none != nil {
		t.Errorf("unknown id returned %+v", none)
	}

	past := &models.CalendarEvent{
		UserID: "user-1", RemoteID: "gcal-old", Summary: "Old walk",
		StartTime: time.Now().UTC().Add(-48 * time.Hour),
		EndTime:   time.Now().UTC().Add(-47 * time.Hour),
	}
	if err := repo.Create(ctx, past); err != nil {
		t.Fatalf("create past: %v", err)
	}

	all, err := repo.ListByUser(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Summary != "Old walk" {
		t.Errorf("list order = %+v", all)
	}

	upcoming, err := repo.ListUpcoming(ctx, "user-1", time.Now().UTC(), 0)
	if err != nil {
		t.Fatalf("upcoming: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].ID != e.ID {
		t.Errorf("upcoming = %+v", upcoming)
	}

	e.Summary = "Therapy (rescheduled)"
	e.StartTime = start.Add(2 * time.Hour)
	if err := repo.Update(ctx, e); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := repo.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("get updated: %v", err)
	}
	if updated.Summary != "Therapy (rescheduled)" {
		t.Errorf("update did not stick: %q", updated.Summary)
	}

	if err := repo.Update(ctx, &models.CalendarEvent{ID: uuid.New()}); err == nil {
		t.Error("updating unknown event should error")
	}

	if err := repo.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, e.ID); err == nil {
		t.Error("double delete should error")
	}
}

func TestEraseUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	users := NewUserRepository(db)
	moods := NewMoodRepository(db)
	transitions := NewTransitionRepository(db)
	summaries := NewSummaryRepository(db)
	events := NewEventRepository(db)

	for _, userID := range []string{"erase-me", "keep-me"} {
		rec, err := users.Load(ctx, userID)
		if err != nil {
			t.Fatalf("seed user %s: %v", userID, err)
		}
		if err := users.Save(ctx, rec); err != nil {
			t.Fatalf("save user %s: %v", userID, err)
		}
		if err := moods.Insert(ctx, &models.MoodEntry{UserID: userID, Mood: models.MoodCalm, Intensity: 5}); err != nil {
			t.Fatalf("seed mood: %v", err)
		}
		if err := transitions.Insert(ctx, &models.MoodTransition{UserID: userID, FromMood: models.MoodCalm, ToMood: models.MoodHappy}); err != nil {
			t.Fatalf("seed transition: %v", err)
		}
		if _, err := summaries.Insert(ctx, &models.Summary{Tier: models.TierDaily, UserID: userID, PeriodKey: "2026-03-10", Content: "day"}); err != nil {
			t.Fatalf("seed summary: %v", err)
		}
		if err := events.Create(ctx, &models.CalendarEvent{
			UserID: userID, RemoteID: "r", Summary: "walk",
			StartTime: time.Now().UTC(), EndTime: time.Now().UTC().Add(time.Hour),
		}); err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	if err := db.EraseUser(ctx, "erase-me"); err != nil {
		t.Fatalf("erase: %v", err)
	}

	exists, err := users.Exists(ctx, "erase-me")
	if err != nil || exists {
		t.Errorf("user row survived erase: %v, %v", exists, err)
	}
	if entries, _ := moods.History(ctx, "erase-me", 30); len(entries) != 0 {
		t.Error("mood entries survived erase")
	}
	if trs, _ := transitions.ListByUser(ctx, "erase-me", 0); len(trs) != 0 {
		t.Error("transitions survived erase")
	}
	if ok, _ := summaries.Exists(ctx, models.TierDaily, "erase-me", "2026-03-10"); ok {
		t.Error("summary survived erase")
	}
	if evs, _ := events.ListByUser(ctx, "erase-me", 0); len(evs) != 0 {
		t.Error("events survived erase")
	}

	// The other user's data is untouched.
	exists, err = users.Exists(ctx, "keep-me")
	if err != nil || !exists {
		t.Errorf("unrelated user was erased: %v, %v", exists, err)
	}
	if entries, _ := moods.History(ctx, "keep-me", 30); len(entries) != 1 {
		t.Error("unrelated mood entries were erased")
	}
}
