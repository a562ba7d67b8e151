package chat

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mindwell/mindwell-api/internal/database"
	"github.com/mindwell/mindwell-api/internal/models"
	"github.com/mindwell/mindwell-api/internal/queue"
	"github.com/mindwell/mindwell-api/internal/services/ai"
	"github.com/mindwell/mindwell-api/internal/services/mood"
	"github.com/mindwell/mindwell-api/internal/services/summary"
	"github.com/mindwell/mindwell-api/internal/services/wellness"
)

// systemPrompt is the fixed companion persona.
const systemPrompt = `You are Alex, a close friend who happens to be great at listening.
You text like a real person: casual, warm, lowercase-ish, short messages.
You are not a therapist and you never sound like one. No bullet points, no
lectures, no "as an AI". You remember what your friend tells you and you ask
about their life. When things get heavy you stay present and honest, and when
something is genuinely serious you say so plainly and point them to real help.`

// fallbackReplies are used when the LLM call fails mid-turn.
var fallbackReplies = []string{
	"yea im listening, whats up",
	"go on, im here",
	"damn, tell me more",
	"fr? keep going",
	"yea i feel that, what else",
}

// subtleSuggestions are friend-voiced nudges attached when a low mood is
// detected on a non-crisis turn.
var subtleSuggestions = map[string][]string{
	models.MoodAnxious: {
		"maybe take a quick walk to clear ur head?",
		"have u tried just breathing slow for a min?",
		"sometimes music helps me chill out",
	},
	models.MoodStressed: {
		"make a list of whats stressing u?",
		"take breaks every hour if u can",
		"maybe try that muscle relaxation thing",
	},
	models.MoodSad: {
		"sometimes writing stuff down helps",
		"watch something funny maybe?",
		"its ok to just feel it for a bit",
	},
}

// suggestionMoods are the moods that get suggestions attached.
var suggestionMoods = map[string]bool{
	models.MoodAnxious:  true,
	models.MoodStressed: true,
	models.MoodSad:      true,
}

var roleEchoRE = regexp.MustCompile(`(?i)^(Alex|You|Them|Assistant)\s*:\s*`)

// summarizeDebounce delays background summarize jobs so rapid-fire messages
// collapse into one pass.
const summarizeDebounce = 2 * time.Minute

// Responder runs full chat turns: classify, summarize, prompt, post-process,
// persist.
type Responder struct {
	provider   ai.AIProvider
	users      database.UserRepositoryInterface
	classifier *mood.Classifier
	tracker    *mood.Tracker
	pipeline   *summary.Pipeline
	jobQueue   queue.JobQueue // nil disables background summarize jobs
	logger     *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand

	// Per-user locks serialize turns so blob writes stay last-write-wins
	// without interleaving within one turn.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewResponder creates a new chat responder
func NewResponder(
	provider ai.AIProvider,
	users database.UserRepositoryInterface,
	classifier *mood.Classifier,
	tracker *mood.Tracker,
	pipeline *summary.Pipeline,
	jobQueue queue.JobQueue,
	logger *zap.Logger,
) *Responder {
	return &Responder{
		provider:   provider,
		users:      users,
		classifier: classifier,
		tracker:    tracker,
		pipeline:   pipeline,
		jobQueue:   jobQueue,
		logger:     logger,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		locks:      map[string]*sync.Mutex{},
	}
}

// SetRand overrides the randomness source. Used by tests.
func (r *Responder) SetRand(rng *rand.Rand) {
	r.randMu.Lock()
	defer r.randMu.Unlock()
	r.rand = rng
}

func (r *Responder) userLock(userID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	lock, ok := r.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[userID] = lock
	}
	return lock
}

// Respond runs one chat turn for a user.
func (r *Responder) Respond(ctx context.Context, userID, message string) (*models.ChatReply, error) {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := r.users.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	cls := r.classifier.Classify(ctx, message)
	r.tracker.Record(ctx, userID, cls)

	// Keep the summary cache warm before building context. Failures leave
	// buckets eligible for the next pass.
	if err := r.pipeline.Run(ctx, userID, rec.Conversation); err != nil && r.logger != nil {
		r.logger.Warn("summary_pass_failed", zap.String("user_id", userID), zap.Error(err))
	}

	contextBlock, err := r.pipeline.BuildContext(ctx, userID, rec.Conversation)
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("context_assembly_failed", zap.String("user_id", userID), zap.Error(err))
		}
		contextBlock = ""
	}

	prompt := r.buildPrompt(rec, cls, contextBlock, message)

	reply := r.generate(ctx, prompt, cls)

	now := time.Now().UTC()
	result := &models.ChatReply{
		Response:  reply,
		IsCrisis:  cls.IsCrisis,
		Timestamp: now,
	}
	if cls.Detected() {
		moodCopy := cls.Mood
		intensityCopy := cls.Intensity
		result.Mood = &moodCopy
		result.Intensity = &intensityCopy
		if !cls.IsCrisis && suggestionMoods[cls.Mood] {
			result.Suggestions = subtleSuggestions[cls.Mood]
		}
	}
	if cls.IsCrisis {
		result.CrisisResources = wellness.CrisisResources
	}

	r.appendTurn(rec, message, result, now)
	if err := r.users.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}

	r.enqueueSummarize(ctx, userID)

	return result, nil
}

// buildPrompt assembles context info, guidance, assembled context, and the
// user message into the single user-turn prompt.
func (r *Responder) buildPrompt(rec *models.UserRecord, cls mood.Classification, contextBlock, message string) string {
	contextInfo := "Getting to know them"
	if len(rec.Conversation) > 5 {
		contextInfo = fmt.Sprintf("You've chatted %d times before", len(rec.Conversation))
	}

	guidance := normalGuidance
	switch {
	case cls.IsCrisis:
		guidance = crisisGuidance
	case cls.Mood == models.MoodDepressed || cls.Mood == models.MoodAnxious:
		guidance = fmt.Sprintf(lowMoodGuidance, cls.Mood)
	}

	if contextBlock == "" {
		contextBlock = "They just started chatting with you"
	}

	return fmt.Sprintf(`Context: %s

%s

WHAT YOU REMEMBER:
%s

THEM: %q

Respond naturally as their friend Alex (super casual, 1-2 sentences typically, authentic human texting style):`,
		contextInfo, guidance, contextBlock, message)
}

const crisisGuidance = `REAL CRISIS - They mentioned suicide/self-harm

You need to be a concerned friend who recognizes this is serious:
- Don't panic but be real: "yo hold up, that sounds really serious"
- Tell them straight up they need professional help: "u should call 988 or go to the ER"
- Be supportive but firm, keep it friend-like but serious

Don't ignore it. Don't minimize it. Get them real help.`

const lowMoodGuidance = `They seem %s. Respond like a friend who notices:
- Don't diagnose or therapize
- Just be empathetic naturally: "damn that sucks" or "i feel u"
- Maybe ask what's going on, but casually
- Let them talk, don't push solutions

Keep it real and friendly.`

const normalGuidance = `Regular conversation with your friend:
- Be natural and casual
- Match their energy
- React authentically to what they say
- Keep responses short like texting

Just chat like you would with any friend.`

// generate calls the LLM and post-processes the reply. On failure it falls
// back to a canned reply; the turn still succeeds.
func (r *Responder) generate(ctx context.Context, prompt string, cls mood.Classification) string {
	if r.provider == nil {
		return r.pickFallback()
	}
	raw, err := r.provider.Chat(ctx, systemPrompt, []ai.ChatMessage{{Role: "user", Content: prompt}})
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("chat_generation_failed", zap.Error(err))
		}
		return r.pickFallback()
	}

	reply := strings.TrimSpace(raw)
	reply = strings.Trim(reply, `"'`)
	reply = roleEchoRE.ReplaceAllString(reply, "")

	if !cls.IsCrisis {
		reply = r.makeHumanLike(reply)
	}
	return reply
}

// makeHumanLike applies a light casual-texting touch: sometimes drops the
// trailing period, occasionally lowercases the first letter. Never applied to
// crisis replies.
func (r *Responder) makeHumanLike(text string) string {
	if len(text) < 3 {
		return text
	}

	r.randMu.Lock()
	dropPeriod := r.rand.Float64() < 0.7
	lowerFirst := r.rand.Float64() < 0.3
	r.randMu.Unlock()

	if dropPeriod {
		text = strings.TrimRight(text, ".")
	}
	if lowerFirst && len(text) > 10 {
		first := text[0]
		if first >= 'A' && first <= 'Z' {
			text = string(first+'a'-'A') + text[1:]
		}
	}
	return strings.TrimSpace(text)
}

func (r *Responder) pickFallback() string {
	r.randMu.Lock()
	defer r.randMu.Unlock()
	return fallbackReplies[r.rand.Intn(len(fallbackReplies))]
}

func (r *Responder) appendTurn(rec *models.UserRecord, message string, reply *models.ChatReply, now time.Time) {
	userMsg := models.Message{
		ID:        uuid.New(),
		Role:      "user",
		Content:   message,
		Mood:      reply.Mood,
		Intensity: reply.Intensity,
		IsCrisis:  reply.IsCrisis,
		Timestamp: now,
	}
	assistantMsg := models.Message{
		ID:        uuid.New(),
		Role:      "assistant",
		Content:   reply.Response,
		Timestamp: now,
	}
	rec.Conversation = append(rec.Conversation, userMsg, assistantMsg)
	rec.Stats.TotalMessages = len(rec.Conversation)
	rec.Stats.LastActivity = &now
}

// enqueueSummarize schedules a debounced background summarize pass. Summaries
// are cache-once, so duplicate jobs are harmless.
func (r *Responder) enqueueSummarize(ctx context.Context, userID string) {
	if r.jobQueue == nil {
		return
	}
	job := queue.NewJob(queue.JobTypeSummarizeUser, userID)
	notBefore := time.Now().Add(summarizeDebounce)
	job.NotBefore = &notBefore
	if err := r.jobQueue.Enqueue(ctx, job); err != nil && r.logger != nil {
		r.logger.Warn("summarize_enqueue_failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// History returns the newest `limit` conversation messages, oldest first.
func (r *Responder) History(ctx context.Context, userID string, limit int) ([]models.Message, error) {
	rec, err := r.users.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	msgs := rec.Conversation
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// ClearHistory wipes the stored conversation but keeps profile and stats.
func (r *Responder) ClearHistory(ctx context.Context, userID string) error {
	lock := r.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := r.users.Load(ctx, userID)
	if err != nil {
		return err
	}
	rec.Conversation = []models.Message{}
	rec.Stats.TotalMessages = 0
	return r.users.Save(ctx, rec)
}
