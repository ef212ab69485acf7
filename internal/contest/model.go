package contest

// DefaultWeeklyHours is assumed when the profile does not state available hours.
const DefaultWeeklyHours = 10

type Skill struct {
	Name  string `json:"name" mapstructure:"name"`
	Level int    `json:"level" mapstructure:"level"`
}

// UserProfile is the caller's self-description. Optional fields are pointers
// so that "not provided" survives decoding.
type UserProfile struct {
	Major             *string `json:"major"`
	Skills            []Skill `json:"skills"`
	Goal              *string `json:"goal"`
	HoursPerWeek      *int    `json:"hoursPerWeek"`
	PreferredTeamSize *string `json:"preferredTeamSize"`
}

// WeeklyHours returns the stated weekly hours or DefaultWeeklyHours.
func (p UserProfile) WeeklyHours() int {
	if p.HoursPerWeek == nil || *p.HoursPerWeek <= 0 {
		return DefaultWeeklyHours
	}
	return *p.HoursPerWeek
}

func (p UserProfile) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}

type AnalysisOptions struct {
	GenerateChecklist bool `mapstructure:"generateChecklist"`
}

type Info struct {
	Title        *string  `json:"title"`
	Organizer    *string  `json:"organizer"`
	Category     Category `json:"category"`
	Deadline     *string  `json:"deadline"`
	TeamSize     *string  `json:"teamSize"`
	Requirements []string `json:"requirements"`
	Prizes       []string `json:"prizes"`
	Description  *string  `json:"description"`
}

type ScoreDetail struct {
	Score  int    `json:"score"`
	Label  Label  `json:"label"`
	Reason string `json:"reason"`
}

type Scores struct {
	SkillMatch       ScoreDetail `json:"skillMatch"`
	Difficulty       ScoreDetail `json:"difficulty"`
	SchedulePressure ScoreDetail `json:"schedulePressure"`
	TeamFit          ScoreDetail `json:"teamFit"`
	PortfolioValue   ScoreDetail `json:"portfolioValue"`
	Readiness        ScoreDetail `json:"readiness"`
}

type FitType string

const (
	FitOpportunity FitType = "opportunity"
	FitRisky       FitType = "risky"
	FitMismatch    FitType = "mismatch"
)

type StrategicVerdict struct {
	Summary    string  `json:"summary"`
	FitType    FitType `json:"fitType"`
	Confidence float64 `json:"confidence"`
}

type ChecklistItem struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

type HiddenExpectation struct {
	Insight    string `json:"insight"`
	Source     string `json:"source"`
	Importance string `json:"importance"`
}

type DealBreaker struct {
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

type ScenarioWeek struct {
	Week      string   `json:"week"`
	Tasks     []string `json:"tasks"`
	Hours     int      `json:"hours"`
	RiskLevel string   `json:"riskLevel"`
	RiskNote  *string  `json:"riskNote"`
}

type Scenario struct {
	TotalHours      int            `json:"totalHours"`
	WeeksNeeded     int            `json:"weeksNeeded"`
	UserWeeklyHours int            `json:"userWeeklyHours"`
	Feasible        bool           `json:"feasible"`
	Conclusion      string         `json:"conclusion"`
	Weeks           []ScenarioWeek `json:"weeks"`
}

type Analysis struct {
	Recommendation     string              `json:"recommendation"`
	Scores             Scores              `json:"scores"`
	Strengths          []string            `json:"strengths"`
	Concerns           []string            `json:"concerns"`
	Checklist          []ChecklistItem     `json:"checklist"`
	StrategicVerdict   *StrategicVerdict   `json:"strategicVerdict"`
	HiddenExpectations []HiddenExpectation `json:"hiddenExpectations"`
	Opportunities      []string            `json:"opportunities"`
	Warnings           []string            `json:"warnings"`
	DealBreakers       []DealBreaker       `json:"dealBreakers"`
	Scenario           *Scenario           `json:"scenario"`
}

// Alternative is part of the response shape; nothing produces alternatives yet.
type Alternative struct {
	Title    string  `json:"title"`
	Reason   string  `json:"reason"`
	Deadline *string `json:"deadline"`
}

type Confidence struct {
	Overall        float64 `json:"overall"`
	InfoExtraction float64 `json:"infoExtraction"`
	ScoreAccuracy  float64 `json:"scoreAccuracy"`
}

// AnalysisData is the payload returned by the analyze operation.
type AnalysisData struct {
	ContestInfo  Info          `json:"contestInfo"`
	Analysis     Analysis      `json:"analysis"`
	Alternatives []Alternative `json:"alternatives"`
	Confidence   Confidence    `json:"confidence"`
}

type Extracted struct {
	Title        *string  `json:"title"`
	Organizer    *string  `json:"organizer"`
	Deadline     *string  `json:"deadline"`
	Category     Category `json:"category"`
	Requirements *string  `json:"requirements"`
	Description  *string  `json:"description"`
}

type ExtractionConfidence struct {
	Title        Label `json:"title"`
	Deadline     Label `json:"deadline"`
	Requirements Label `json:"requirements"`
}

// Extraction is the payload returned by the extract operation.
type Extraction struct {
	Extracted  Extracted            `json:"extracted"`
	Confidence ExtractionConfidence `json:"confidence"`
	RawText    string               `json:"rawText"`
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }
