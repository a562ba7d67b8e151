package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// MaxReplyTokens caps companion chat replies
	MaxReplyTokens = 300
	// MaxSummaryTokens caps summary generation
	MaxSummaryTokens = 400

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIProvider implements the AIProvider interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// Chat sends a system prompt and conversation turns, returning the raw reply.
func (p *OpenAIProvider) Chat(ctx context.Context, systemPrompt string, messages []ChatMessage) (string, error) {
	openAIMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	openAIMessages = append(openAIMessages, openai.SystemMessage(systemPrompt))
	for _, msg := range messages {
		switch msg.Role {
		case "assistant":
			openAIMessages = append(openAIMessages, openai.AssistantMessage(msg.Content))
		default:
			openAIMessages = append(openAIMessages, openai.UserMessage(msg.Content))
		}
	}

	req := openai.ChatCompletionNewParams{
		Model:     shared.ChatModel(p.model),
		Messages:  openAIMessages,
		MaxTokens: openai.Int(MaxReplyTokens),
		// Temperature omitted - use model default to avoid "unsupported_value" errors
	}

	content, err := p.send(ctx, "chat", req, len(systemPrompt))
	if err != nil {
		return "", fmt.Errorf("failed to chat: %w", err)
	}
	return content, nil
}

// ClassifyMood asks the model to label the emotional tone of one message.
func (p *OpenAIProvider) ClassifyMood(ctx context.Context, message string) (*MoodAnalysis, error) {
	prompt := fmt.Sprintf(`Analyze the emotional tone of this message and respond with valid JSON only:

Message: %q

Respond with a JSON object in this format:
{
  "mood": "happy" | "sad" | "anxious" | "depressed" | "angry" | "calm" | "stressed" | "neutral",
  "intensity": 1-10,
  "confidence": 0.0-1.0,
  "notes": "brief note on what drove the reading"
}

Pick the single best-fitting mood. Use "neutral" only when no emotional signal is present.`, message)

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are an emotion classification assistant. Respond with valid JSON only."),
			openai.UserMessage(prompt),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	content, err := p.send(ctx, "classify_mood", req, len(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to classify mood: %w", err)
	}

	analysis, err := parseMoodAnalysis(content)
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

func parseMoodAnalysis(content string) (*MoodAnalysis, error) {
	raw := content
	analysis := &MoodAnalysis{}
	if err := json.Unmarshal([]byte(raw), analysis); err != nil {
		// Some models wrap the JSON in prose; salvage the outermost object.
		if len(raw) > 0 && raw[0] != '{' {
			start := bytes.Index([]byte(raw), []byte("{"))
			end := bytes.LastIndex([]byte(raw), []byte("}"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(raw), analysis); err != nil {
			return nil, fmt.Errorf("failed to parse mood analysis: %w", err)
		}
	}
	if analysis.Intensity < 1 {
		analysis.Intensity = 1
	}
	if analysis.Intensity > 10 {
		analysis.Intensity = 10
	}
	return analysis, nil
}

// Summarize condenses a block of conversation text for a summary tier.
func (p *OpenAIProvider) Summarize(ctx context.Context, tier string, body string) (string, error) {
	var instruction string
	switch tier {
	case "weekly":
		instruction = "Condense the following daily conversation summaries into one weekly summary. " +
			"Keep recurring topics, emotional themes, and notable changes across the week. 3-5 sentences."
	case "monthly":
		instruction = "Condense the following weekly conversation summaries into one monthly summary. " +
			"Keep long-running themes, overall emotional trajectory, and significant events. 3-5 sentences."
	default:
		instruction = "Summarize the following day of conversation between a user and their supportive companion. " +
			"Keep topics discussed, the user's emotional state, and anything worth remembering. 2-4 sentences."
	}

	prompt := instruction + "\n\n" + body

	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You are a conversation summarizer for a long-term memory archive. Be concise and factual. Return plain text only."),
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(MaxSummaryTokens),
	}

	content, err := p.send(ctx, "summarize_"+tier, req, len(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to summarize %s: %w", tier, err)
	}
	return content, nil
}

// send issues the completion request with shared debug logging and error wrapping.
func (p *OpenAIProvider) send(ctx context.Context, operation string, req openai.ChatCompletionNewParams, promptLen int) (string, error) {
	requestID := ExtractRequestID(ctx)
	userIDStr := ExtractUserID(ctx)

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", promptLen),
			zap.Int("message_count", len(req.Messages)),
			zap.String("user_id", userIDStr),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_id", userIDStr),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", apiErr
		}
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content

	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("user_id", userIDStr),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}
