package wellness

import (
	"math/rand"

	"github.com/mindwell/mindwell-api/internal/models"
)

// Activity is one self-care activity from the static catalog.
type Activity struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Difficulty  string   `json:"difficulty"`
	Benefits    []string `json:"benefits"`
}

var breathingExercises = []Activity{
	{"4-7-8 Breathing", "Breathe in for 4 seconds, hold for 7, exhale for 8", "5 minutes", "easy",
		[]string{"reduces anxiety", "promotes calm", "helps sleep"}},
	{"Box Breathing", "Breathe in for 4, hold for 4, out for 4, hold for 4", "5-10 minutes", "easy",
		[]string{"reduces stress", "improves focus", "calms nervous system"}},
	{"Belly Breathing", "Deep breaths into your belly, not your chest", "5 minutes", "easy",
		[]string{"reduces tension", "promotes relaxation", "lowers heart rate"}},
}

var meditationActivities = []Activity{
	{"Body Scan Meditation", "Slowly focus attention on each part of your body", "10-15 minutes", "beginner",
		[]string{"releases tension", "increases awareness", "promotes relaxation"}},
	{"Mindful Observation", "Focus on one object and observe every detail", "5 minutes", "beginner",
		[]string{"improves focus", "reduces racing thoughts", "grounds you"}},
	{"Loving-Kindness Meditation", "Send kind wishes to yourself and others", "10 minutes", "intermediate",
		[]string{"increases compassion", "reduces negative emotions", "improves mood"}},
}

var physicalActivities = []Activity{
	{"Short Walk", "Take a 10-minute walk outside or around your space", "10-20 minutes", "easy",
		[]string{"boosts mood", "increases energy", "clears mind"}},
	{"Gentle Stretching", "Simple stretches to release physical tension", "5-10 minutes", "easy",
		[]string{"releases tension", "improves circulation", "feels good"}},
	{"Dancing to Music", "Put on your favorite song and move however feels good", "10 minutes", "easy",
		[]string{"lifts mood", "releases endorphins", "fun!"}},
	{"Yoga Flow", "Follow a simple yoga sequence", "15-30 minutes", "moderate",
		[]string{"reduces stress", "improves flexibility", "calms mind"}},
}

var journalingPrompts = []Activity{
	{"Gratitude Journal", "Write 3 things you're grateful for today, no matter how small", "5 minutes", "easy",
		[]string{"shifts perspective", "improves mood", "builds resilience"}},
	{"Emotion Exploration", "What am I feeling right now? Where do I feel it in my body? What triggered it?", "10 minutes", "moderate",
		[]string{"increases awareness", "processes emotions", "identifies patterns"}},
	{"Future Self Letter", "Write a letter to your future self about what you're going through", "15 minutes", "moderate",
		[]string{"gains perspective", "processes thoughts", "provides hope"}},
	{"Stream of Consciousness", "Write whatever comes to mind for 5 minutes without stopping", "5 minutes", "easy",
		[]string{"clears mental clutter", "reduces anxiety", "uncovers thoughts"}},
}

var groundingTechniques = []Activity{
	{"5-4-3-2-1 Technique", "Name 5 things you see, 4 you can touch, 3 you hear, 2 you smell, 1 you taste", "2-5 minutes", "easy",
		[]string{"stops panic", "grounds you", "brings you present"}},
	{"Ice Cube Hold", "Hold an ice cube in your hand and focus on the sensation", "1 minute", "easy",
		[]string{"interrupts spiraling", "strong grounding", "immediate effect"}},
	{"Cold Water Face Splash", "Splash cold water on your face or hold a cold cloth to your face", "30 seconds", "easy",
		[]string{"calms nervous system", "reduces panic", "quick relief"}},
}

var socialActivities = []Activity{
	{"Text a Friend", "Reach out to someone you trust, even just to say hi", "5 minutes", "easy",
		[]string{"reduces isolation", "builds connection", "boosts mood"}},
	{"Call Someone", "Have a voice conversation with a friend or family member", "15-30 minutes", "moderate",
		[]string{"deep connection", "reduces loneliness", "feels supported"}},
	{"Join Online Community", "Engage with a supportive online group or forum", "10-20 minutes", "easy",
		[]string{"reduces isolation", "finds understanding", "shares experiences"}},
}

var creativeActivities = []Activity{
	{"Free Drawing", "Draw or doodle whatever comes to mind, no judgment", "10-15 minutes", "easy",
		[]string{"expresses emotions", "relaxes mind", "fun outlet"}},
	{"Listen to Music", "Put on music that matches or shifts your mood", "10-30 minutes", "easy",
		[]string{"regulates emotions", "provides comfort", "shifts energy"}},
	{"Write Poetry", "Express your feelings through poetry or creative writing", "15 minutes", "moderate",
		[]string{"processes emotions", "creative outlet", "self-expression"}},
}

// Catalog holds every activity organized by category.
var Catalog = map[string][]Activity{
	"breathing":  breathingExercises,
	"meditation": meditationActivities,
	"physical":   physicalActivities,
	"journaling": journalingPrompts,
	"grounding":  groundingTechniques,
	"social":     socialActivities,
	"creative":   creativeActivities,
}

// CrisisResources are surfaced on crisis turns and from the resources endpoint.
var CrisisResources = []string{
	"Call or text 988 (Suicide & Crisis Lifeline, 24/7)",
	"Text HOME to 741741 (Crisis Text Line)",
	"Call 911 or go to the nearest ER if you're in immediate danger",
}

// Recommend returns up to count activities. Category takes priority, then
// mood, otherwise a general mix.
func Recommend(category, mood string, count int) []Activity {
	if count <= 0 {
		count = 3
	}

	if category != "" {
		items, ok := Catalog[category]
		if !ok {
			return nil
		}
		return pick(items, count)
	}

	if mood != "" {
		return recommendForMood(mood, count)
	}

	var all []Activity
	for _, items := range Catalog {
		all = append(all, items...)
	}
	return pick(all, count)
}

// recommendForMood pairs each mood with the categories that tend to help it.
func recommendForMood(mood string, count int) []Activity {
	var pool []Activity
	switch mood {
	case models.MoodAnxious:
		pool = append(pool, breathingExercises[:2]...)
		pool = append(pool, groundingTechniques[:2]...)
		pool = append(pool, meditationActivities...)
	case models.MoodDepressed:
		pool = append(pool, physicalActivities[:2]...)
		pool = append(pool, socialActivities[:1]...)
		pool = append(pool, journalingPrompts...)
	case models.MoodSad:
		pool = append(pool, creativeActivities[:2]...)
		pool = append(pool, journalingPrompts[:2]...)
		pool = append(pool, socialActivities...)
	case models.MoodAngry:
		pool = append(pool, physicalActivities[:2]...)
		pool = append(pool, breathingExercises[:1]...)
		pool = append(pool, journalingPrompts...)
	case models.MoodStressed:
		pool = append(pool, breathingExercises[:2]...)
		pool = append(pool, physicalActivities...)
		pool = append(pool, meditationActivities...)
	default:
		for _, items := range Catalog {
			pool = append(pool, items...)
		}
	}
	return pick(pool, count)
}

func pick(items []Activity, count int) []Activity {
	shuffled := make([]Activity, len(items))
	copy(shuffled, items)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > count {
		shuffled = shuffled[:count]
	}
	return shuffled
}
