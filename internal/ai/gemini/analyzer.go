package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/contest-guide/internal/ai"
	"github.com/spigell/contest-guide/internal/contest"
	"github.com/spigell/contest-guide/internal/logger"
	"go.uber.org/zap"
)

//go:embed prompts/analyze_system.md
var analyzeSystemPrompt string

//go:embed prompts/analyze_user.md
var analyzeUserTemplate string

//go:embed prompts/extract_system.md
var extractSystemPrompt string

const (
	defaultMaxLogLength = 200

	maxProfileFieldRunes = 200
	maxContestRunes      = 20000

	extractUserMessage = "Extract the contest information from this poster."
	imageOnlyContest   = "(no text provided, see the attached contest image)"
)

// Analyzer turns analysis and extraction requests into prompts, sends them
// through a gateway and normalizes the replies.
type Analyzer struct {
	gateway   ai.Gateway
	logger    *zap.Logger
	maxLogLen int
}

var (
	_ ai.Analyzer  = (*Analyzer)(nil)
	_ ai.Extractor = (*Analyzer)(nil)
)

func NewAnalyzer(gateway ai.Gateway, log *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Analyzer{
		gateway:   gateway,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, req ai.AnalysisRequest) (*contest.AnalysisData, error) {
	prompt := ai.Prompt{
		System: analyzeSystemPrompt,
		Text:   buildUserMessage(req.Profile, req.ContestText),
	}
	if req.Image != nil {
		prompt.Images = []ai.Image{*req.Image}
	}

	data, err := a.generateObject(ctx, "analyze", prompt)
	if err != nil {
		return nil, err
	}

	result := contest.NormalizeAnalysis(data, contest.NormalizeContext{
		Profile:        req.Profile,
		Options:        req.Options,
		HasContestText: strings.TrimSpace(req.ContestText) != "",
	})
	return &result, nil
}

func (a *Analyzer) Extract(ctx context.Context, image ai.Image) (*contest.Extraction, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("image is required")
	}

	data, err := a.generateObject(ctx, "extract", ai.Prompt{
		System: extractSystemPrompt,
		Text:   extractUserMessage,
		Images: []ai.Image{image},
	})
	if err != nil {
		return nil, err
	}

	result := contest.NormalizeExtraction(data)
	return &result, nil
}

func (a *Analyzer) generateObject(ctx context.Context, operation string, prompt ai.Prompt) (map[string]any, error) {
	a.logger.Debug("gemini generate content request",
		zap.String("operation", operation),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt.Text)),
		zap.Int("images", len(prompt.Images)),
		logger.Preview("prompt_preview", prompt.Text, a.maxLogLen),
	)

	raw, err := a.gateway.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		zap.String("operation", operation),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		logger.Preview("response_preview", raw, a.maxLogLen),
	)

	return ai.ParseObject(raw)
}

func buildUserMessage(profile contest.UserProfile, contestText string) string {
	skills := "none"
	if names := profile.SkillNames(); len(names) > 0 {
		clean := make([]string, 0, len(names))
		for _, n := range names {
			if s := sanitizeLine(n, maxProfileFieldRunes); s != "" {
				clean = append(clean, s)
			}
		}
		if len(clean) > 0 {
			skills = strings.Join(clean, ", ")
		}
	}

	text := sanitizeBlock(contestText, maxContestRunes)
	if text == "" {
		text = imageOnlyContest
	}

	replacer := strings.NewReplacer(
		"{{MAJOR}}", optionalLine(profile.Major, "not provided"),
		"{{SKILLS}}", skills,
		"{{GOAL}}", optionalLine(profile.Goal, "not provided"),
		"{{HOURS}}", strconv.Itoa(profile.WeeklyHours())+" hours",
		"{{TEAM}}", optionalLine(profile.PreferredTeamSize, "any"),
		"{{CONTEST}}", text,
	)
	return replacer.Replace(analyzeUserTemplate)
}

func optionalLine(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	if s := sanitizeLine(*v, maxProfileFieldRunes); s != "" {
		return s
	}
	return fallback
}

// sanitizeLine collapses a user-provided value to one line, neutralises
// square-bracket role markers and bounds its length.
func sanitizeLine(s string, limit int) string {
	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
	s = neutraliseBrackets(s)
	return truncateRunes(s, limit)
}

// sanitizeBlock keeps line structure but trims every line and drops control
// characters.
func sanitizeBlock(s string, limit int) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) && r != '\t' {
				return -1
			}
			return r
		}, line)
		out = append(out, strings.TrimSpace(line))
	}
	return truncateRunes(strings.TrimSpace(strings.Join(out, "\n")), limit)
}

func neutraliseBrackets(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
