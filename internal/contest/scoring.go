package contest

import (
	"strings"
	"unicode"
)

type Label string

const (
	LabelHigh   Label = "high"
	LabelMedium Label = "medium"
	LabelLow    Label = "low"
)

// ParseLabel accepts English and Korean label spellings.
func ParseLabel(s string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "높음":
		return LabelHigh, true
	case "medium", "mid", "보통":
		return LabelMedium, true
	case "low", "낮음":
		return LabelLow, true
	default:
		return "", false
	}
}

// ClampScore bounds a score to [0,100].
func ClampScore(score int) int {
	return max(0, min(100, score))
}

// LabelFor maps a score to a qualitative label. Inverted dimensions are those
// where a high score is unfavourable; they are labelled by 100-score.
func LabelFor(score int, inverted bool) Label {
	effective := ClampScore(score)
	if inverted {
		effective = 100 - effective
	}

	switch {
	case effective >= 70:
		return LabelHigh
	case effective >= 40:
		return LabelMedium
	default:
		return LabelLow
	}
}

type Category string

const (
	CategoryAI          Category = "AI/ML"
	CategoryDevelopment Category = "Development"
	CategoryDesign      Category = "Design"
	CategoryBusiness    Category = "Business/Startup"
	CategoryData        Category = "Data"
	CategoryGeneral     Category = "General"
)

type categoryKeywords struct {
	category Category
	keywords []string
}

// Order matters: the first category with a matching keyword wins.
var inferenceOrder = []categoryKeywords{
	{CategoryAI, []string{"ai", "ml", "인공지능", "머신러닝", "딥러닝", "machine learning", "deep learning", "llm"}},
	{CategoryDesign, []string{"디자인", "ux", "ui", "design"}},
	{CategoryBusiness, []string{"창업", "스타트업", "비즈니스", "startup", "business"}},
	{CategoryDevelopment, []string{"웹", "앱", "개발", "프로그래밍", "web", "app", "development", "programming", "hackathon"}},
	{CategoryData, []string{"데이터", "분석", "빅데이터", "data", "analytics", "big data"}},
}

var categoryAliases = map[string]Category{
	"ai/ml":            CategoryAI,
	"ai":               CategoryAI,
	"ml":               CategoryAI,
	"development":      CategoryDevelopment,
	"dev":              CategoryDevelopment,
	"개발":               CategoryDevelopment,
	"design":           CategoryDesign,
	"디자인":              CategoryDesign,
	"business/startup": CategoryBusiness,
	"business":         CategoryBusiness,
	"startup":          CategoryBusiness,
	"창업/비즈니스":          CategoryBusiness,
	"data":             CategoryData,
	"데이터":              CategoryData,
	"general":          CategoryGeneral,
	"일반":               CategoryGeneral,
}

// ParseCategory maps a free-form category label to the canonical set.
// Unknown labels become CategoryGeneral.
func ParseCategory(s string) Category {
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return c
	}
	return CategoryGeneral
}

// InferCategory guesses the category of a contest from its description.
// ASCII keywords must match whole ASCII words so that "ai" does not fire on
// "email". Any non-ASCII rune ends a word, so "AI해커톤" still yields "ai".
// Hangul keywords match anywhere since particles attach to words.
func InferCategory(text string) Category {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return CategoryGeneral
	}

	words := strings.FieldsFunc(lower, func(r rune) bool {
		return r > unicode.MaxASCII || (!unicode.IsLetter(r) && !unicode.IsDigit(r))
	})
	joined := " " + strings.Join(words, " ") + " "

	for _, entry := range inferenceOrder {
		for _, kw := range entry.keywords {
			if isASCII(kw) {
				if strings.Contains(joined, " "+kw+" ") {
					return entry.category
				}
				continue
			}
			if strings.Contains(lower, kw) {
				return entry.category
			}
		}
	}

	return CategoryGeneral
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
