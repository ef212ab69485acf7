package mock

import (
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spigell/contest-guide/internal/contest"
)

var fixedNow = time.Date(2026, time.March, 2, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func seeded(seed uint64) *Synthesizer {
	return New(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), clock)
}

// fixedRand always returns the same draw.
type fixedRand int

func (f fixedRand) IntN(n int) int { return min(int(f), n-1) }

func profile(skills int, hours int, team string) contest.UserProfile {
	p := contest.UserProfile{HoursPerWeek: &hours}
	for i := range skills {
		p.Skills = append(p.Skills, contest.Skill{Name: "skill" + string(rune('A'+i)), Level: 3})
	}
	if team != "" {
		p.PreferredTeamSize = &team
	}
	return p
}

func TestAnalysisDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	p := profile(2, 12, "team")
	opts := contest.AnalysisOptions{GenerateChecklist: true}

	first := seeded(42).Analysis(p, "AI 해커톤", opts)
	second := seeded(42).Analysis(p, "AI 해커톤", opts)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different results:\n%+v\n%+v", first, second)
	}
}

func TestAnalysisScoresStayInBand(t *testing.T) {
	t.Parallel()

	for seed := uint64(0); seed < 300; seed++ {
		skills := int(seed % 6)
		team := ""
		if seed%2 == 0 {
			team = "solo"
		}

		got := seeded(seed).Analysis(profile(skills, 10, team), "빅데이터 분석 대회", contest.AnalysisOptions{})
		s := got.Analysis.Scores

		for name, d := range map[string]contest.ScoreDetail{
			"skillMatch":       s.SkillMatch,
			"difficulty":       s.Difficulty,
			"schedulePressure": s.SchedulePressure,
			"teamFit":          s.TeamFit,
			"portfolioValue":   s.PortfolioValue,
			"readiness":        s.Readiness,
		} {
			if d.Score < 0 || d.Score > 100 {
				t.Fatalf("seed %d: %s out of range: %d", seed, name, d.Score)
			}
		}

		assertBand(t, "skillMatch", s.SkillMatch.Score, SkillBase(skills))
		assertBand(t, "difficulty", s.Difficulty.Score, 70)
		assertBand(t, "portfolioValue", s.PortfolioValue.Score, 80)

		teamBase := 85
		if team == "solo" {
			teamBase = 90
		}
		assertBand(t, "teamFit", s.TeamFit.Score, teamBase)

		deadline, err := time.Parse(contest.DateLayout, *got.ContestInfo.Deadline)
		if err != nil {
			t.Fatalf("seed %d: bad deadline: %v", seed, err)
		}
		assertBand(t, "schedulePressure", s.SchedulePressure.Score, PressureBase(DaysLeft(deadline, fixedNow)))

		want := Readiness(s.SkillMatch.Score, s.Difficulty.Score, s.SchedulePressure.Score, s.TeamFit.Score, s.PortfolioValue.Score)
		if s.Readiness.Score != want {
			t.Fatalf("seed %d: readiness %d, want %d", seed, s.Readiness.Score, want)
		}
	}
}

func assertBand(t *testing.T, name string, got, base int) {
	t.Helper()
	lo, hi := contest.ClampScore(base-10), contest.ClampScore(base+10)
	if got < lo || got > hi {
		t.Fatalf("%s = %d, want within [%d,%d]", name, got, lo, hi)
	}
}

func TestAnalysisContestInfo(t *testing.T) {
	t.Parallel()

	text := "2026 AI 해커톤 " + strings.Repeat("가", 300)
	got := seeded(7).Analysis(profile(1, 10, ""), text, contest.AnalysisOptions{})
	info := got.ContestInfo

	if info.Category != contest.CategoryAI {
		t.Fatalf("expected AI/ML category, got %q", info.Category)
	}
	if *info.Title != "2026 AI/ML Contest" {
		t.Fatalf("unexpected title: %q", *info.Title)
	}
	if n := len([]rune(*info.Description)); n != 200 {
		t.Fatalf("expected description of 200 runes, got %d", n)
	}

	deadline, err := time.Parse(contest.DateLayout, *info.Deadline)
	if err != nil {
		t.Fatalf("deadline is not a date: %v", err)
	}
	days := int(deadline.Sub(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)).Hours() / 24)
	if days < 14 || days > 56 {
		t.Fatalf("deadline offset %d outside 14..56", days)
	}

	general := seeded(7).Analysis(contest.UserProfile{}, "", contest.AnalysisOptions{})
	if *general.ContestInfo.Title != "2026 Innovation Contest" || *general.ContestInfo.Description != "Contest description" {
		t.Fatalf("unexpected general info: %+v", general.ContestInfo)
	}
}

func TestAnalysisScenarioAndChecklist(t *testing.T) {
	t.Parallel()

	cases := []struct {
		hours int
		weeks int
	}{
		{hours: 10, weeks: 8},
		{hours: 30, weeks: 2},
		{hours: 200, weeks: 1},
		{hours: 0, weeks: 8},
	}
	for _, tc := range cases {
		got := seeded(1).Analysis(profile(0, tc.hours, ""), "contest", contest.AnalysisOptions{})
		if got.Analysis.Scenario.WeeksNeeded != tc.weeks {
			t.Fatalf("hours %d: weeks %d, want %d", tc.hours, got.Analysis.Scenario.WeeksNeeded, tc.weeks)
		}
		if got.Analysis.Checklist != nil {
			t.Fatalf("checklist must be absent without the option")
		}
	}

	got := seeded(1).Analysis(contest.UserProfile{}, "contest", contest.AnalysisOptions{GenerateChecklist: true})
	if len(got.Analysis.Checklist) != 3 || got.Analysis.Checklist[0].Priority != "high" {
		t.Fatalf("unexpected checklist: %+v", got.Analysis.Checklist)
	}
	if got.Analysis.Recommendation != "Your related experience is a good fit for this contest." {
		t.Fatalf("unexpected recommendation: %q", got.Analysis.Recommendation)
	}
}

func TestAnalysisWithoutJitter(t *testing.T) {
	t.Parallel()

	// draw 10 is a zero jitter and a deadline 24 days out
	s := New(fixedRand(10), clock)
	got := s.Analysis(profile(3, 10, "solo"), "UX 디자인 공모전", contest.AnalysisOptions{})
	scores := got.Analysis.Scores

	if scores.SkillMatch.Score != 90 || scores.Difficulty.Score != 55 || scores.SchedulePressure.Score != 60 ||
		scores.TeamFit.Score != 90 || scores.PortfolioValue.Score != 75 {
		t.Fatalf("unexpected scores: %+v", scores)
	}
	// 27 + 9 + 8 + 13.5 + 11.25 = 68.75
	if scores.Readiness.Score != 68 {
		t.Fatalf("unexpected readiness: %d", scores.Readiness.Score)
	}
	if scores.Difficulty.Label != contest.LabelMedium || scores.SchedulePressure.Label != contest.LabelMedium {
		t.Fatalf("unexpected labels: %+v", scores)
	}
	if got.Analysis.StrategicVerdict.FitType != contest.FitOpportunity {
		t.Fatalf("expected opportunity, got %+v", got.Analysis.StrategicVerdict)
	}
	if len(got.Analysis.Warnings) != 2 {
		t.Fatalf("expected schedule warning, got %v", got.Analysis.Warnings)
	}
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	build := func(readiness, skill, pressure int) contest.Scores {
		return contest.Scores{
			Readiness:        contest.ScoreDetail{Score: readiness},
			SkillMatch:       contest.ScoreDetail{Score: skill},
			SchedulePressure: contest.ScoreDetail{Score: pressure},
		}
	}

	tests := []struct {
		name   string
		scores contest.Scores
		expect contest.FitType
	}{
		{name: "low readiness", scores: build(39, 90, 10), expect: contest.FitMismatch},
		{name: "weak skills and tight schedule", scores: build(70, 39, 71), expect: contest.FitMismatch},
		{name: "middling readiness", scores: build(59, 80, 30), expect: contest.FitRisky},
		{name: "tight schedule", scores: build(75, 80, 61), expect: contest.FitRisky},
		{name: "good fit", scores: build(60, 80, 60), expect: contest.FitOpportunity},
	}

	for _, tt := range tests {
		got := Verdict(tt.scores, contest.CategoryData)
		if got.FitType != tt.expect {
			t.Fatalf("%s: got %q, want %q", tt.name, got.FitType, tt.expect)
		}
		if got.Confidence != 0.75 || got.Summary == "" {
			t.Fatalf("%s: unexpected verdict %+v", tt.name, got)
		}
	}
}

func TestPressureBase(t *testing.T) {
	t.Parallel()

	for days, want := range map[int]int{-3: 90, 0: 90, 13: 90, 14: 60, 29: 60, 30: 30, 90: 30} {
		if got := PressureBase(days); got != want {
			t.Fatalf("PressureBase(%d) = %d, want %d", days, got, want)
		}
	}
}

func TestExtraction(t *testing.T) {
	t.Parallel()

	got := New(nil, clock).Extraction()

	if *got.Extracted.Deadline != "2026-04-01" {
		t.Fatalf("unexpected deadline: %s", *got.Extracted.Deadline)
	}
	if got.Confidence.Title != contest.LabelLow || got.Confidence.Deadline != contest.LabelLow || got.Confidence.Requirements != contest.LabelLow {
		t.Fatalf("expected low confidence everywhere: %+v", got.Confidence)
	}
	if got.Extracted.Category != contest.CategoryGeneral || got.RawText == "" {
		t.Fatalf("unexpected extraction: %+v", got)
	}
}

func TestDefaultSourceIsUsable(t *testing.T) {
	t.Parallel()

	got := New(nil, nil).Analysis(contest.UserProfile{}, "데이터", contest.AnalysisOptions{})
	if got.ContestInfo.Category != contest.CategoryData {
		t.Fatalf("unexpected category: %q", got.ContestInfo.Category)
	}
}
