package advisor

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

const (
	MessageDeadlineWarning = "deadline_warning"
	PageAnalyze            = "analyze"
)

type AssistantRequest struct {
	CurrentPage  string           `json:"currentPage"`
	Contests     []map[string]any `json:"contests"`
	RecentAction *string          `json:"recentAction"`
	Type         string           `json:"type"`
}

// AssistantContest is the part of a client-side contest record the rules read.
type AssistantContest struct {
	ID       string `mapstructure:"id"`
	Title    string `mapstructure:"title"`
	Deadline string `mapstructure:"deadline"`
}

type AssistantAction struct {
	Label    string  `json:"label"`
	Action   string  `json:"action"`
	Target   *string `json:"target"`
	Duration *string `json:"duration"`
}

type AssistantMessage struct {
	Message          string            `json:"message"`
	SuggestedActions []AssistantAction `json:"suggestedActions"`
	Tone             string            `json:"tone"`
}

func target(s string) *string { return &s }

// Suggest picks a contextual assistant message. Rules are checked in order:
// a deadline warning for the first contest, a hint on the analyze page, and
// a default nudge.
func Suggest(req AssistantRequest) (*AssistantMessage, error) {
	contests, err := decodeContests(req.Contests)
	if err != nil {
		return nil, err
	}

	msgType := strings.TrimSpace(req.Type)
	if msgType == "" {
		msgType = "proactive"
	}

	if msgType == MessageDeadlineWarning && len(contests) > 0 {
		title := strings.TrimSpace(contests[0].Title)
		if title == "" {
			title = "Your contest"
		}
		return &AssistantMessage{
			Message: fmt.Sprintf("The deadline for %s is approaching. Shall we check how your preparation is going?", title),
			SuggestedActions: []AssistantAction{
				{Label: "Check now", Action: "navigate", Target: target("/contests")},
				{Label: "Later", Action: "dismiss"},
			},
			Tone: "warning",
		}, nil
	}

	if req.CurrentPage == PageAnalyze {
		return &AssistantMessage{
			Message: "Upload a poster image and the contest details will be extracted automatically!",
			SuggestedActions: []AssistantAction{
				{Label: "Upload image", Action: "focus", Target: target("imageUpload")},
			},
			Tone: "helpful",
		}, nil
	}

	return &AssistantMessage{
		Message: "Shall we look for a new contest?",
		SuggestedActions: []AssistantAction{
			{Label: "Analyze", Action: "navigate", Target: target("/analyze")},
		},
		Tone: "encouraging",
	}, nil
}

func decodeContests(raw []map[string]any) ([]AssistantContest, error) {
	out := make([]AssistantContest, 0, len(raw))
	for i, item := range raw {
		var c AssistantContest
		if err := weakDecode(item, &c); err != nil {
			return nil, fmt.Errorf("decode contest %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func weakDecode(input, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
