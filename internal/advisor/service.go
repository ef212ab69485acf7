// Package advisor decides per request whether to ask the model or the mock
// synthesizer, and hosts the rule-based assistant and readiness calculators.
package advisor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spigell/contest-guide/internal/ai"
	"github.com/spigell/contest-guide/internal/config"
	"github.com/spigell/contest-guide/internal/contest"
	"github.com/spigell/contest-guide/internal/logger"
	"github.com/spigell/contest-guide/internal/metrics"
	"github.com/spigell/contest-guide/internal/mock"
	"go.uber.org/zap"
)

const (
	operationAnalyze = "analyze"
	operationExtract = "extract"
)

// Service is safe for concurrent use; it holds only read-only handles.
type Service struct {
	analyzer    ai.Analyzer
	extractor   ai.Extractor
	mock        *mock.Synthesizer
	mode        config.Mode
	model       string
	visionModel string
	logger      *zap.Logger
}

type Options struct {
	// Analyzer and Extractor serve the real path. When either is nil the
	// matching operation always uses the mock synthesizer.
	Analyzer    ai.Analyzer
	Extractor   ai.Extractor
	Mock        *mock.Synthesizer
	Mode        config.Mode
	Model       string
	VisionModel string
	Logger      *zap.Logger
}

func New(opts Options) *Service {
	if opts.Mock == nil {
		opts.Mock = mock.New(nil, nil)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.VisionModel == "" {
		opts.VisionModel = opts.Model
	}

	mode := opts.Mode
	if mode != config.ModeReal || (opts.Analyzer == nil && opts.Extractor == nil) {
		mode = config.ModeMock
	}

	return &Service{
		analyzer:    opts.Analyzer,
		extractor:   opts.Extractor,
		mock:        opts.Mock,
		mode:        mode,
		model:       opts.Model,
		visionModel: opts.VisionModel,
		logger:      opts.Logger,
	}
}

// Mode is the configured mode, before any per-request fallback.
func (s *Service) Mode() config.Mode {
	return s.mode
}

// Model is the model name reported by health checks.
func (s *Service) Model() string {
	if s.mode == config.ModeReal {
		return s.model
	}
	return mock.ModelName
}

// Outcome carries a result together with the path that produced it.
type Outcome[T any] struct {
	Data     T
	Mode     config.Mode
	Model    string
	Duration time.Duration
}

// Analyze never fails: any real-path error falls back to the mock synthesizer.
func (s *Service) Analyze(ctx context.Context, req ai.AnalysisRequest) Outcome[contest.AnalysisData] {
	start := time.Now()

	if s.mode == config.ModeReal && s.analyzer != nil {
		model := s.ModelFor(req.Image != nil)

		result, err := s.analyzer.Analyze(ctx, req)
		if err == nil && result != nil {
			metrics.AnalysesTotal.WithLabelValues(operationAnalyze, string(config.ModeReal)).Inc()
			return Outcome[contest.AnalysisData]{Data: *result, Mode: config.ModeReal, Model: model, Duration: time.Since(start)}
		}
		s.fallback(operationAnalyze, err)
	}

	data := s.mock.Analysis(req.Profile, req.ContestText, req.Options)
	metrics.AnalysesTotal.WithLabelValues(operationAnalyze, string(config.ModeMock)).Inc()
	return Outcome[contest.AnalysisData]{Data: data, Mode: config.ModeMock, Model: mock.ModelName, Duration: time.Since(start)}
}

// Extract never fails: any real-path error falls back to the placeholder extraction.
func (s *Service) Extract(ctx context.Context, image ai.Image) Outcome[contest.Extraction] {
	start := time.Now()

	if s.mode == config.ModeReal && s.extractor != nil {
		result, err := s.extractor.Extract(ctx, image)
		if err == nil && result != nil {
			metrics.AnalysesTotal.WithLabelValues(operationExtract, string(config.ModeReal)).Inc()
			return Outcome[contest.Extraction]{Data: *result, Mode: config.ModeReal, Model: s.ModelFor(true), Duration: time.Since(start)}
		}
		s.fallback(operationExtract, err)
	}

	data := s.mock.Extraction()
	metrics.AnalysesTotal.WithLabelValues(operationExtract, string(config.ModeMock)).Inc()
	return Outcome[contest.Extraction]{Data: data, Mode: config.ModeMock, Model: mock.ModelName, Duration: time.Since(start)}
}

func (s *Service) fallback(operation string, err error) {
	reason := FallbackReason(err)
	metrics.FallbacksTotal.WithLabelValues(operation, reason).Inc()
	fields := append(logger.OutcomeFields(operation, string(config.ModeMock), mock.ModelName),
		zap.String("reason", reason),
		zap.Error(err),
	)
	s.logger.Warn("model path failed, falling back to mock", fields...)
}

// FallbackReason classifies a real-path error for logs and metrics.
func FallbackReason(err error) string {
	var perr *ai.ParseError
	switch {
	case err == nil:
		return "empty_result"
	case errors.Is(err, ai.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ai.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &perr):
		return "parse"
	case errors.Is(err, ai.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

// ModelFor reports the model a real request would use.
func (s *Service) ModelFor(hasImage bool) string {
	if s.mode != config.ModeReal {
		return mock.ModelName
	}
	if hasImage && strings.TrimSpace(s.visionModel) != "" {
		return s.visionModel
	}
	return s.model
}
