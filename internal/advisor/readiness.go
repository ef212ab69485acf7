package advisor

import (
	"fmt"

	"github.com/spigell/contest-guide/internal/contest"
)

const (
	defaultProgressReadiness = 30
	resourceReadiness        = 80
)

type ReadinessRequest struct {
	UserProfile     contest.UserProfile `json:"userProfile"`
	Contest         map[string]any      `json:"contest"`
	CurrentProgress map[string]any      `json:"currentProgress"`
}

type Progress struct {
	ChecklistDone  float64  `mapstructure:"checklistDone"`
	ChecklistTotal *float64 `mapstructure:"checklistTotal"`
}

type ReadinessBreakdown struct {
	SkillReadiness    int `json:"skillReadiness"`
	TimeReadiness     int `json:"timeReadiness"`
	ProgressReadiness int `json:"progressReadiness"`
	ResourceReadiness int `json:"resourceReadiness"`
}

type ReadinessImprovement struct {
	Action string `json:"action"`
	Impact string `json:"impact"`
}

type Readiness struct {
	ReadinessScore int                    `json:"readinessScore"`
	Breakdown      ReadinessBreakdown     `json:"breakdown"`
	Improvements   []ReadinessImprovement `json:"improvements"`
}

// CalculateReadiness scores how prepared the user is for a contest.
func CalculateReadiness(req ReadinessRequest) (*Readiness, error) {
	skill := min(50+15*len(req.UserProfile.Skills), 95)
	hours := min(40+3*req.UserProfile.WeeklyHours(), 90)

	progress := defaultProgressReadiness
	// An empty object counts as no progress reported.
	if len(req.CurrentProgress) > 0 {
		var p Progress
		if err := weakDecode(req.CurrentProgress, &p); err != nil {
			return nil, fmt.Errorf("decode progress: %w", err)
		}
		total := 1.0
		if p.ChecklistTotal != nil {
			total = max(*p.ChecklistTotal, 1)
		}
		progress = contest.ClampScore(int(p.ChecklistDone / total * 100))
	}

	overall := int(0.35*float64(skill) +
		0.25*float64(hours) +
		0.25*float64(progress) +
		0.15*float64(resourceReadiness))

	improvements := []ReadinessImprovement{}
	if progress < 50 {
		improvements = append(improvements, ReadinessImprovement{Action: "Complete your checklist items", Impact: "+15"})
	}
	if skill < 70 {
		improvements = append(improvements, ReadinessImprovement{Action: "Study or review the relevant skills", Impact: "+10"})
	}
	if hours < 60 {
		improvements = append(improvements, ReadinessImprovement{Action: "Set aside more hours per week", Impact: "+10"})
	}

	return &Readiness{
		ReadinessScore: overall,
		Breakdown: ReadinessBreakdown{
			SkillReadiness:    skill,
			TimeReadiness:     hours,
			ProgressReadiness: progress,
			ResourceReadiness: resourceReadiness,
		},
		Improvements: improvements,
	}, nil
}
