package wellness

import (
	"strings"
	"testing"

	"github.com/mindwell/mindwell-api/internal/models"
)

func TestRecommend_Category(t *testing.T) {
	t.Parallel()

	got := Recommend("breathing", "", 2)
	if len(got) != 2 {
		t.Fatalf("got %d activities, want 2", len(got))
	}
	for _, a := range got {
		found := false
		for _, b := range breathingExercises {
			if a.Name == b.Name {
				found = true
			}
		}
		if !found {
			t.Errorf("activity %q is not a breathing exercise", a.Name)
		}
	}
}

func TestRecommend_UnknownCategory(t *testing.T) {
	t.Parallel()

	if got := Recommend("skydiving", "", 3); got != nil {
		t.Errorf("unknown category should yield nil, got %v", got)
	}
}

func TestRecommend_CountDefaultsAndCaps(t *testing.T) {
	t.Parallel()

	if got := Recommend("grounding", "", 0); len(got) != 3 {
		t.Errorf("zero count should default to 3, got %d", len(got))
	}
	// Asking for more than the category holds returns everything it has.
	if got := Recommend("grounding", "", 50); len(got) != len(groundingTechniques) {
		t.Errorf("got %d, want %d", len(got), len(groundingTechniques))
	}
}

func TestRecommend_ByMood(t *testing.T) {
	t.Parallel()

	for _, mood := range []string{
		models.MoodAnxious, models.MoodDepressed, models.MoodSad,
		models.MoodAngry, models.MoodStressed, models.MoodHappy,
	} {
		got := Recommend("", mood, 3)
		if len(got) == 0 {
			t.Errorf("no recommendations for mood %q", mood)
		}
	}
}

func TestCrisisResources(t *testing.T) {
	t.Parallel()

	if len(CrisisResources) == 0 {
		t.Fatal("crisis resources must never be empty")
	}
	found := false
	for _, r := range CrisisResources {
		if strings.Contains(r, "988") {
			found = true
		}
	}
	if !found {
		t.Error("crisis resources should mention the 988 lifeline")
	}
}
