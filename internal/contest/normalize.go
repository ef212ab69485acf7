package contest

import (
	"math"
	"strings"
	"time"
)

const (
	MaxStrengths          = 3
	MaxConcerns           = 3
	MaxChecklistItems     = 10
	MaxHiddenExpectations = 3

	DefaultTotalHours = 80

	pendingReason = "pending analysis"
)

// NormalizeContext carries request facts the model reply cannot know.
type NormalizeContext struct {
	Profile        UserProfile
	Options        AnalysisOptions
	HasContestText bool
}

var defaultScore = ScoreDetail{Score: 50, Label: LabelMedium, Reason: pendingReason}

// NormalizeAnalysis merges a loosely-typed model reply with defaults and
// returns a complete AnalysisData. It never fails.
func NormalizeAnalysis(data map[string]any, nctx NormalizeContext) AnalysisData {
	if data == nil {
		data = map[string]any{}
	}

	verdict := normalizeVerdict(coerceMap(data["strategicVerdict"]))
	opportunities := coerceStrings(data["opportunities"])
	warnings := coerceStrings(data["warnings"])

	recommendation := coerceString(data["recommendation"])
	if recommendation == "" {
		recommendation = "Review the analysis results."
	}

	infoExtraction := 0.70
	if nctx.HasContestText {
		infoExtraction = 0.85
	}

	return AnalysisData{
		ContestInfo: normalizeInfo(coerceMap(data["contestInfo"])),
		Analysis: Analysis{
			Recommendation:     recommendation,
			Scores:             normalizeScores(coerceMap(data["scores"])),
			Strengths:          truncate(opportunities, MaxStrengths),
			Concerns:           truncate(warnings, MaxConcerns),
			Checklist:          normalizeChecklist(data["checklist"], nctx.Options),
			StrategicVerdict:   &verdict,
			HiddenExpectations: normalizeHiddenExpectations(data["hiddenExpectations"]),
			Opportunities:      opportunities,
			Warnings:           warnings,
			DealBreakers:       normalizeDealBreakers(data["dealBreakers"]),
			Scenario:           normalizeScenario(coerceMap(data["scenario"]), nctx.Profile.WeeklyHours()),
		},
		Alternatives: nil,
		Confidence: Confidence{
			Overall:        verdict.Confidence,
			InfoExtraction: infoExtraction,
			ScoreAccuracy:  0.80,
		},
	}
}

func normalizeInfo(m map[string]any) Info {
	title := coerceOptionalString(m["title"])
	if title == nil {
		title = Ptr("Analyzed contest")
	}

	return Info{
		Title:        title,
		Organizer:    coerceOptionalString(m["organizer"]),
		Category:     ParseCategory(coerceString(m["category"])),
		Deadline:     NormalizeDeadline(coerceString(m["deadline"])),
		TeamSize:     coerceOptionalString(m["teamSize"]),
		Requirements: coerceStrings(m["requirements"]),
		Prizes:       coerceStrings(m["prizes"]),
		Description:  coerceOptionalString(m["description"]),
	}
}

func normalizeScores(m map[string]any) Scores {
	return Scores{
		SkillMatch:       normalizeScore(m["skillMatch"], false),
		Difficulty:       normalizeScore(m["difficulty"], true),
		SchedulePressure: normalizeScore(m["schedulePressure"], true),
		TeamFit:          normalizeScore(m["teamFit"], false),
		PortfolioValue:   normalizeScore(m["portfolioValue"], false),
		Readiness:        normalizeScore(m["readiness"], false),
	}
}

// normalizeScore accepts either {"score":..,"reason":..} or a bare number.
// The label is always derived from the score.
func normalizeScore(v any, inverted bool) ScoreDetail {
	var rawScore, rawReason any
	switch val := v.(type) {
	case map[string]any:
		rawScore, rawReason = val["score"], val["reason"]
	case nil:
		return defaultScore
	default:
		rawScore = val
	}

	score := ClampScore(coerceInt(rawScore, defaultScore.Score))
	reason := coerceString(rawReason)
	if reason == "" {
		reason = pendingReason
	}

	return ScoreDetail{Score: score, Label: LabelFor(score, inverted), Reason: reason}
}

func normalizeVerdict(m map[string]any) StrategicVerdict {
	summary := coerceString(m["summary"])
	if summary == "" {
		summary = "Analysis complete"
	}

	confidence := coerceFloat(m["confidence"])
	if math.IsNaN(confidence) || math.IsInf(confidence, 0) {
		confidence = 0.7
	}
	if confidence > 1 && confidence <= 100 {
		// some replies use a percentage
		confidence /= 100
	}

	return StrategicVerdict{
		Summary:    summary,
		FitType:    FitType(oneOf(m["fitType"], string(FitRisky), string(FitOpportunity), string(FitRisky), string(FitMismatch))),
		Confidence: math.Max(0, math.Min(1, confidence)),
	}
}

func normalizeChecklist(v any, opts AnalysisOptions) []ChecklistItem {
	if !opts.GenerateChecklist {
		return nil
	}

	items := make([]ChecklistItem, 0)
	switch list := v.(type) {
	case []any:
		for _, raw := range list {
			var text, priority any
			if m, ok := raw.(map[string]any); ok {
				text, priority = m["text"], m["priority"]
			} else {
				text = raw
			}
			s := coerceString(text)
			if s == "" {
				continue
			}
			items = append(items, ChecklistItem{Text: s, Priority: oneOf(priority, "medium", "high", "medium", "low")})
		}
	}

	if len(items) == 0 {
		return nil
	}
	return truncate(items, MaxChecklistItems)
}

func normalizeHiddenExpectations(v any) []HiddenExpectation {
	var out []HiddenExpectation
	for _, m := range coerceMaps(v) {
		insight := coerceString(m["insight"])
		if insight == "" {
			continue
		}
		out = append(out, HiddenExpectation{
			Insight:    insight,
			Source:     oneOf(m["source"], "inferred", "explicit", "inferred"),
			Importance: oneOf(m["importance"], "medium", "high", "medium", "low"),
		})
	}
	return truncate(out, MaxHiddenExpectations)
}

func normalizeDealBreakers(v any) []DealBreaker {
	var out []DealBreaker
	for _, m := range coerceMaps(v) {
		reason := coerceString(m["reason"])
		if reason == "" {
			continue
		}
		out = append(out, DealBreaker{
			Reason:   reason,
			Severity: oneOf(m["severity"], "serious", "critical", "serious"),
		})
	}
	return out
}

func normalizeScenario(m map[string]any, weeklyHours int) *Scenario {
	if len(m) == 0 {
		return nil
	}

	total := coerceInt(m["totalHours"], DefaultTotalHours)
	if total <= 0 {
		total = DefaultTotalHours
	}

	weeks := coerceInt(m["weeksNeeded"], 0)
	if weeks < 1 {
		weeks = CeilWeeks(total, weeklyHours)
	}

	conclusion := coerceString(m["conclusion"])
	if conclusion == "" {
		conclusion = "Participation looks feasible"
	}

	breakdown := []ScenarioWeek{}
	for _, w := range coerceMaps(m["weeks"]) {
		breakdown = append(breakdown, ScenarioWeek{
			Week:      coerceString(w["week"]),
			Tasks:     coerceStrings(w["tasks"]),
			Hours:     max(0, coerceInt(w["hours"], 0)),
			RiskLevel: oneOf(w["riskLevel"], "low", "low", "medium", "high"),
			RiskNote:  coerceOptionalString(w["riskNote"]),
		})
	}

	return &Scenario{
		TotalHours:      total,
		WeeksNeeded:     weeks,
		UserWeeklyHours: weeklyHours,
		Feasible:        coerceBool(m["feasible"], true),
		Conclusion:      conclusion,
		Weeks:           breakdown,
	}
}

// FloorWeeks is max(1, floor(total/weekly)).
func FloorWeeks(totalHours, weeklyHours int) int {
	if weeklyHours <= 0 {
		weeklyHours = DefaultWeeklyHours
	}
	return max(1, totalHours/weeklyHours)
}

// CeilWeeks is max(1, ceil(total/weekly)).
func CeilWeeks(totalHours, weeklyHours int) int {
	if weeklyHours <= 0 {
		weeklyHours = DefaultWeeklyHours
	}
	return max(1, (totalHours+weeklyHours-1)/weeklyHours)
}

// NormalizeExtraction merges a model reply for poster extraction with defaults.
func NormalizeExtraction(data map[string]any) Extraction {
	if data == nil {
		data = map[string]any{}
	}
	conf := coerceMap(data["confidence"])

	return Extraction{
		Extracted: Extracted{
			Title:        coerceOptionalString(data["title"]),
			Organizer:    coerceOptionalString(data["organizer"]),
			Deadline:     NormalizeDeadline(coerceString(data["deadline"])),
			Category:     ParseCategory(coerceString(data["category"])),
			Requirements: coerceOptionalString(data["requirements"]),
			Description:  coerceOptionalString(data["description"]),
		},
		Confidence: ExtractionConfidence{
			Title:        labelOr(conf["title"], LabelMedium),
			Deadline:     labelOr(conf["deadline"], LabelLow),
			Requirements: labelOr(conf["requirements"], LabelLow),
		},
		RawText: coerceString(data["rawText"]),
	}
}

func labelOr(v any, fallback Label) Label {
	if l, ok := ParseLabel(coerceString(v)); ok {
		return l
	}
	return fallback
}

const DateLayout = "2006-01-02"

var deadlineLayouts = []string{DateLayout, "2006.01.02", "2006/01/02", "2006. 1. 2", time.RFC3339}

// NormalizeDeadline reformats recognised date spellings to YYYY-MM-DD and
// drops anything else.
func NormalizeDeadline(s string) *string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	if s == "" {
		return nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Ptr(t.Format(DateLayout))
		}
	}
	return nil
}
