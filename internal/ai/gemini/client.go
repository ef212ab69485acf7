package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spigell/contest-guide/internal/ai"
	"github.com/spigell/contest-guide/internal/logger"
	"github.com/spigell/contest-guide/internal/metrics"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	Provider = "gemini"

	defaultModel      = "gemini-2.5-flash"
	defaultMaxTokens  = 4096
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 2
	backoffBase       = time.Second
)

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

// sleep waits for d or until ctx is done. Tests replace it.
var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type Options struct {
	APIKey      string
	Model       string
	VisionModel string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Generator is the Gemini implementation of ai.Gateway. It is safe for
// concurrent use: every call opens its own chat.
type Generator struct {
	chats       chatCreator
	model       string
	visionModel string
	maxTokens   int32
	temperature float32
	timeout     time.Duration
	maxRetries  int
	logger      *zap.Logger
}

var _ ai.Gateway = (*Generator)(nil)

// NewGenerator creates a Generator for the Gemini API backend.
func NewGenerator(ctx context.Context, opts Options, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required: %w", ai.ErrUnavailable)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	vision := strings.TrimSpace(opts.VisionModel)
	if vision == "" {
		vision = model
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	maxRetries := opts.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	return &Generator{
		chats:       genaiChats{chats: client.Chats},
		model:       model,
		visionModel: vision,
		maxTokens:   int32(maxTokens),
		temperature: float32(opts.Temperature),
		timeout:     timeout,
		maxRetries:  maxRetries,
		logger:      logger.WithModel(log, Provider, model),
	}, nil
}

// Model returns the text model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// ModelFor returns the model that would serve the prompt.
func (g *Generator) ModelFor(prompt ai.Prompt) string {
	if prompt.HasImages() && g.visionModel != "" {
		return g.visionModel
	}
	return g.model
}

// Generate sends the prompt and returns the reply text. Rate limits are retried
// with exponential backoff, timeouts are retried immediately and any other
// error is returned as is.
func (g *Generator) Generate(ctx context.Context, prompt ai.Prompt) (string, error) {
	if g == nil || g.chats == nil {
		return "", ai.ErrUnavailable
	}

	parts := buildParts(prompt)
	if len(parts) == 0 {
		return "", errors.New("prompt must not be empty")
	}

	model := g.ModelFor(prompt)
	config := g.config(prompt.System)
	log := g.logger.With(zap.String("model_used", model), zap.Int("images", len(prompt.Images)))

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		log.Debug("gemini attempt", zap.Int("attempt", attempt+1))

		text, err := g.send(ctx, model, config, parts)
		if err == nil {
			metrics.GatewayAttempts.WithLabelValues(model, "ok").Inc()
			if text == "" {
				return "", fmt.Errorf("gemini api returned empty response: %w", ai.ErrUnavailable)
			}
			return text, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		switch {
		case isRateLimit(err):
			metrics.GatewayAttempts.WithLabelValues(model, "rate_limited").Inc()
			lastErr = fmt.Errorf("%w: %w: %w", ai.ErrUnavailable, ai.ErrRateLimited, err)
			if attempt < g.maxRetries {
				delay := backoffBase << attempt
				log.Warn("gemini rate limited, backing off",
					zap.Int("attempt", attempt+1),
					zap.Duration("delay", delay),
					zap.Error(err),
				)
				if werr := sleep(ctx, delay); werr != nil {
					return "", werr
				}
			}
		case isTimeout(err):
			metrics.GatewayAttempts.WithLabelValues(model, "timeout").Inc()
			lastErr = fmt.Errorf("%w: %w", ai.ErrTimeout, err)
			if attempt < g.maxRetries {
				log.Warn("gemini attempt timed out, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
			}
		default:
			metrics.GatewayAttempts.WithLabelValues(model, "error").Inc()
			return "", fmt.Errorf("generate content: %w", err)
		}
	}

	log.Warn("gemini retries exhausted", zap.Int("attempts", g.maxRetries+1), zap.Error(lastErr))
	return "", lastErr
}

func (g *Generator) send(ctx context.Context, model string, config *genai.GenerateContentConfig, parts []genai.Part) (string, error) {
	attemptCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	chat, err := g.chats.Create(attemptCtx, model, config, nil)
	if err != nil {
		return "", err
	}

	resp, err := chat.SendMessage(attemptCtx, parts...)
	if err != nil {
		return "", err
	}

	return responseText(resp), nil
}

func (g *Generator) config(system string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	}
	if g.maxTokens > 0 {
		config.MaxOutputTokens = g.maxTokens
	}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}
	return config
}

func buildParts(prompt ai.Prompt) []genai.Part {
	var parts []genai.Part
	if text := strings.TrimSpace(prompt.Text); text != "" {
		parts = append(parts, genai.Part{Text: text})
	}
	for _, img := range prompt.Images {
		if len(img.Data) == 0 {
			continue
		}
		parts = append(parts, genai.Part{InlineData: &genai.Blob{MIMEType: img.MIMEType, Data: img.Data}})
	}
	return parts
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func apiError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

func isRateLimit(err error) bool {
	apiErr, ok := apiError(err)
	if !ok {
		return false
	}
	return apiErr.Code == http.StatusTooManyRequests || strings.EqualFold(apiErr.Status, "RESOURCE_EXHAUSTED")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	apiErr, ok := apiError(err)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return true
	}
	return strings.EqualFold(apiErr.Status, "DEADLINE_EXCEEDED")
}
