// Package mock synthesizes heuristic analysis results when no model is available.
package mock

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spigell/contest-guide/internal/contest"
)

const (
	ModelName = "mock"

	jitterRange      = 10
	minDeadlineDays  = 14
	maxDeadlineDays  = 56
	extractionOffset = 30 * 24 * time.Hour
	descriptionRunes = 200
)

// Rand is the jitter source. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

var (
	difficultyBase = map[contest.Category]int{
		contest.CategoryAI:          75,
		contest.CategoryDevelopment: 65,
		contest.CategoryDesign:      55,
		contest.CategoryBusiness:    60,
		contest.CategoryData:        70,
		contest.CategoryGeneral:     50,
	}
	portfolioBase = map[contest.Category]int{
		contest.CategoryAI:          85,
		contest.CategoryDevelopment: 80,
		contest.CategoryDesign:      75,
		contest.CategoryBusiness:    70,
		contest.CategoryData:        80,
		contest.CategoryGeneral:     60,
	}
)

// Synthesizer builds analysis and extraction results from fixed heuristics
// plus a bounded random jitter. With the default source it is safe for
// concurrent use.
type Synthesizer struct {
	rng Rand
	now func() time.Time
}

// New returns a Synthesizer. A nil rng uses the global goroutine-safe source
// and a nil clock uses time.Now.
func New(rng Rand, now func() time.Time) *Synthesizer {
	if rng == nil {
		rng = globalRand{}
	}
	if now == nil {
		now = time.Now
	}
	return &Synthesizer{rng: rng, now: now}
}

func (s *Synthesizer) jitter() int {
	return s.rng.IntN(2*jitterRange+1) - jitterRange
}

func (s *Synthesizer) jittered(base int) int {
	return contest.ClampScore(base + s.jitter())
}

// Analysis synthesizes a complete AnalysisData for the request.
func (s *Synthesizer) Analysis(profile contest.UserProfile, contestText string, opts contest.AnalysisOptions) contest.AnalysisData {
	now := s.now()
	info := s.contestInfo(contestText, now)
	scores := s.scores(profile, info, now)

	verdict := Verdict(scores, info.Category)

	skills := profile.SkillNames()
	experience := "related"
	if len(skills) > 0 {
		experience = strings.Join(skills[:min(3, len(skills))], ", ")
	}

	opportunities := []string{"Hands-on project experience", "A stronger portfolio"}
	warnings := []string{"Check your progress regularly"}
	if scores.SchedulePressure.Score >= 60 {
		warnings = append(warnings, "Keep a close eye on the schedule")
	}

	weekly := profile.WeeklyHours()
	weeks := contest.FloorWeeks(contest.DefaultTotalHours, weekly)

	var checklist []contest.ChecklistItem
	if opts.GenerateChecklist {
		checklist = []contest.ChecklistItem{
			{Text: "Fill in the application form", Priority: "high"},
			{Text: "Read the contest rules", Priority: "high"},
			{Text: "Form a team (if needed)", Priority: "medium"},
		}
	}

	return contest.AnalysisData{
		ContestInfo: info,
		Analysis: contest.Analysis{
			Recommendation:   fmt.Sprintf("Your %s experience is a good fit for this contest.", experience),
			Scores:           scores,
			Strengths:        opportunities[:min(contest.MaxStrengths, len(opportunities))],
			Concerns:         warnings[:min(contest.MaxConcerns, len(warnings))],
			Checklist:        checklist,
			StrategicVerdict: &verdict,
			HiddenExpectations: []contest.HiddenExpectation{
				{Insight: "Practical applicability is likely to matter", Source: "inferred", Importance: "high"},
			},
			Opportunities: opportunities,
			Warnings:      warnings,
			DealBreakers:  nil,
			Scenario: &contest.Scenario{
				TotalHours:      contest.DefaultTotalHours,
				WeeksNeeded:     weeks,
				UserWeeklyHours: weekly,
				Feasible:        true,
				Conclusion:      fmt.Sprintf("Can be finished within %d weeks at %d hours per week", weeks, weekly),
				Weeks:           []contest.ScenarioWeek{},
			},
		},
		Alternatives: nil,
		Confidence: contest.Confidence{
			Overall:        0.70,
			InfoExtraction: 0.65,
			ScoreAccuracy:  0.70,
		},
	}
}

func (s *Synthesizer) contestInfo(text string, now time.Time) contest.Info {
	category := contest.InferCategory(text)

	subject := string(category)
	if category == contest.CategoryGeneral {
		subject = "Innovation"
	}

	offset := minDeadlineDays + s.rng.IntN(maxDeadlineDays-minDeadlineDays+1)
	deadline := startOfDay(now).AddDate(0, 0, offset).Format(contest.DateLayout)

	description := "Contest description"
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		runes := []rune(text)
		description = string(runes[:min(descriptionRunes, len(runes))])
	}

	return contest.Info{
		Title:        contest.Ptr(fmt.Sprintf("%d %s Contest", now.Year(), subject)),
		Organizer:    contest.Ptr("Korea Contest Association"),
		Category:     category,
		Deadline:     &deadline,
		TeamSize:     contest.Ptr("1-3 people"),
		Requirements: []string{"University students or above", "Interest in the field"},
		Prizes:       []string{"Grand prize 5,000,000 KRW", "Excellence award 3,000,000 KRW", "Merit award 1,000,000 KRW"},
		Description:  &description,
	}
}

func (s *Synthesizer) scores(profile contest.UserProfile, info contest.Info, now time.Time) contest.Scores {
	skillCount := len(profile.Skills)
	skill := s.jittered(SkillBase(skillCount))
	difficulty := s.jittered(difficultyBase[info.Category])

	pressure := 50
	if info.Deadline != nil {
		if deadline, err := time.ParseInLocation(contest.DateLayout, *info.Deadline, now.Location()); err == nil {
			pressure = s.jittered(PressureBase(DaysLeft(deadline, now)))
		}
	}

	teamBase := 85
	if profile.PreferredTeamSize != nil && *profile.PreferredTeamSize == "solo" {
		teamBase = 90
	}
	team := s.jittered(teamBase)
	portfolio := s.jittered(portfolioBase[info.Category])

	readiness := Readiness(skill, difficulty, pressure, team, portfolio)

	teamSize := ""
	if info.TeamSize != nil {
		teamSize = *info.TeamSize
	}

	return contest.Scores{
		SkillMatch:       detail(skill, false, fmt.Sprintf("%d skills on record", skillCount)),
		Difficulty:       detail(difficulty, true, fmt.Sprintf("%s field", info.Category)),
		SchedulePressure: detail(pressure, true, "Based on the deadline"),
		TeamFit:          detail(team, false, "Participation format: "+teamSize),
		PortfolioValue:   detail(portfolio, false, fmt.Sprintf("Portfolio value in the %s field", info.Category)),
		Readiness:        detail(readiness, false, "Overall assessment"),
	}
}

func detail(score int, inverted bool, reason string) contest.ScoreDetail {
	return contest.ScoreDetail{Score: score, Label: contest.LabelFor(score, inverted), Reason: reason}
}

// SkillBase is min(60 + 10 per skill, 95).
func SkillBase(skillCount int) int {
	return min(60+10*skillCount, 95)
}

// PressureBase maps days until the deadline to a schedule-pressure base.
func PressureBase(daysLeft int) int {
	switch {
	case daysLeft < 14:
		return 90
	case daysLeft < 30:
		return 60
	default:
		return 30
	}
}

// DaysLeft counts whole days from now until deadline, rounding down.
func DaysLeft(deadline, now time.Time) int {
	return int(math.Floor(deadline.Sub(now).Hours() / 24))
}

// Readiness is the weighted composite of the other dimensions, truncated.
func Readiness(skill, difficulty, pressure, team, portfolio int) int {
	v := 0.30*float64(skill) +
		0.20*float64(100-difficulty) +
		0.20*float64(100-pressure) +
		0.15*float64(team) +
		0.15*float64(portfolio)
	return contest.ClampScore(int(v))
}

// Verdict buckets the scores into a fit type.
func Verdict(scores contest.Scores, category contest.Category) contest.StrategicVerdict {
	readiness := scores.Readiness.Score
	skill := scores.SkillMatch.Score
	pressure := scores.SchedulePressure.Score

	verdict := contest.StrategicVerdict{Confidence: 0.75}
	switch {
	case readiness < 40 || (skill < 40 && pressure > 70):
		verdict.FitType = contest.FitMismatch
		verdict.Summary = fmt.Sprintf("Joining this %s contest is not recommended in your current situation.", category)
	case readiness < 60 || pressure > 60:
		verdict.FitType = contest.FitRisky
		verdict.Summary = "This contest could be an opportunity, but it needs care."
	default:
		verdict.FitType = contest.FitOpportunity
		verdict.Summary = "Your skills fit this contest well. Strongly recommended."
	}
	return verdict
}

// Extraction returns the placeholder extraction used when the image cannot be
// read by a model.
func (s *Synthesizer) Extraction() contest.Extraction {
	deadline := s.now().Add(extractionOffset).Format(contest.DateLayout)

	return contest.Extraction{
		Extracted: contest.Extracted{
			Title:        contest.Ptr("(Image analysis) Contest"),
			Organizer:    contest.Ptr("Extracted organizer"),
			Deadline:     &deadline,
			Category:     contest.CategoryGeneral,
			Requirements: contest.Ptr("Eligibility extracted from the image"),
			Description:  contest.Ptr("Image analysis becomes available once a model API key is configured."),
		},
		Confidence: contest.ExtractionConfidence{
			Title:        contest.LabelLow,
			Deadline:     contest.LabelLow,
			Requirements: contest.LabelLow,
		},
		RawText: "(mock) Real text is extracted once a model API key is configured.",
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
