package ai

import (
	"context"
	"errors"

	"github.com/spigell/contest-guide/internal/contest"
)

var (
	// ErrUnavailable means the model could not produce an answer: no
	// credential, an empty payload, or retries exhausted on rate limits.
	ErrUnavailable = errors.New("model unavailable")
	// ErrRateLimited marks a provider rate-limit signal.
	ErrRateLimited = errors.New("model rate limited")
	// ErrTimeout marks attempts that ran out of time on every retry.
	ErrTimeout = errors.New("model request timed out")
)

// Image is an inline image attached to a prompt.
type Image struct {
	MIMEType string
	Data     []byte
}

// Prompt is a single chat-style request: a system instruction plus one user
// turn made of text and optional images.
type Prompt struct {
	System string
	Text   string
	Images []Image
}

func (p Prompt) HasImages() bool {
	return len(p.Images) > 0
}

// Gateway sends one prompt to a generative model and returns its raw reply.
type Gateway interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// AnalysisRequest is everything the analyze operation knows about a request.
type AnalysisRequest struct {
	Profile     contest.UserProfile
	ContestText string
	Image       *Image
	Options     contest.AnalysisOptions
}

type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*contest.AnalysisData, error)
}

type Extractor interface {
	Extract(ctx context.Context, image Image) (*contest.Extraction, error)
}
