package decision

// StartRequest creates a new decision session.
type StartRequest struct {
	Context     string `validate:"required,max=2000"`
	Description string `validate:"max=4000"`
	Deadline    string `validate:"max=100"`
}

// CriterionInput is one criterion to add to a session.
type CriterionInput struct {
	Name        string  `validate:"required,max=200"`
	Description string  `validate:"max=2000"`
	Weight      float64 `validate:"min=0,max=1"`
	Type        string  `validate:"required,oneof=benefit cost risk feasibility"`
}

// AddCriteriaRequest adds one or more criteria to a session.
type AddCriteriaRequest struct {
	SessionID string           `validate:"required"`
	Criteria  []CriterionInput `validate:"required,min=1,dive"`
}

// AddOptionRequest adds a candidate option to a session.
type AddOptionRequest struct {
	SessionID     string   `validate:"required"`
	Name          string   `validate:"required,max=200"`
	Description   string   `validate:"max=4000"`
	Pros          []string `validate:"dive,max=1000"`
	Cons          []string `validate:"dive,max=1000"`
	Risks         []string `validate:"dive,max=1000"`
	EstimatedCost string   `validate:"max=200"`
	EstimatedTime string   `validate:"max=200"`
}

// ScoreInput is one submitted score. Every score binds to a criterion
// by id; positional matching against the criteria list is not supported.
type ScoreInput struct {
	CriterionID string  `validate:"required"`
	Score       float64 `validate:"min=0,max=10"`
	Reasoning   string  `validate:"max=2000"`
}

// EvaluateRequest scores one option against the session's criteria.
type EvaluateRequest struct {
	SessionID string       `validate:"required"`
	OptionID  string       `validate:"required"`
	Scores    []ScoreInput `validate:"required,min=1,dive"`
}

// ListRequest filters sessions by type and status.
type ListRequest struct {
	Type   string `validate:"omitempty,oneof=decision thinking"`
	Status string `validate:"omitempty,oneof=active evaluating completed"`
}

// SessionSummary is a listing row.
type SessionSummary struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Context   string `json:"context,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// RankedOption pairs an option with its evaluation scores.
type RankedOption struct {
	OptionID      string  `json:"option_id"`
	Name          string  `json:"name"`
	OverallScore  float64 `json:"overall_score"`
	WeightedScore float64 `json:"weighted_score"`
}

// Analysis is the result of analyzing a decision snapshot.
type Analysis struct {
	SessionID string `json:"session_id"`

	// TopOption is the option with the maximum weighted score. Ties
	// break toward the earlier evaluation; this ordering is a
	// documented rule, not an accident of iteration.
	TopOption RankedOption `json:"top_option"`

	Ranking []RankedOption `json:"ranking"`

	// Confidence estimates how trustworthy the lead is, in [0,1].
	Confidence float64 `json:"confidence"`

	// KeyFactors are the winner's strongest criteria ("name: reasoning").
	KeyFactors []string `json:"key_factors"`

	// Risks unions the winner's declared risks with its weakest criteria.
	Risks []string `json:"risks"`

	// Alternatives lists runner-up options above the minimum bar.
	// Populated only when requested.
	Alternatives []string `json:"alternatives,omitempty"`

	NextSteps []string `json:"next_steps"`
}

// AnalyzeRequest produces an Analysis for a session.
type AnalyzeRequest struct {
	SessionID           string `validate:"required"`
	IncludeAlternatives bool
}

// RecommendRequest gates a recommendation on a confidence threshold.
type RecommendRequest struct {
	SessionID string `validate:"required"`

	// MinConfidence below which the recommendation is refused.
	// Zero means the default threshold (0.3).
	MinConfidence float64 `validate:"min=0,max=1"`
}

// Recommendation is the terminal output of a decision session.
type Recommendation struct {
	SessionID  string   `json:"session_id"`
	Option     string   `json:"option"`
	Score      float64  `json:"score"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Mitigation []string `json:"mitigation,omitempty"`
	NextSteps  []string `json:"next_steps"`
}

// LogicReport accumulates every logic violation found in one pass.
type LogicReport struct {
	SessionID   string   `json:"session_id"`
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`

	// Consistency starts at 1.0 and is penalized 0.2 per error and
	// 0.05 per warning, floored at 0.
	Consistency float64 `json:"consistency"`
}

// ValidateLogicRequest runs the logic validator over a session.
type ValidateLogicRequest struct {
	SessionID string `validate:"required"`

	// StrictMode also fails validity on warnings.
	StrictMode bool
}

// BiasFlag is one heuristic bias finding.
type BiasFlag struct {
	Type        string  `json:"type"`
	Severity    float64 `json:"severity"`
	Description string  `json:"description"`
	Mitigation  string  `json:"mitigation,omitempty"`
}

// BiasReport aggregates heuristic bias flags for a session.
type BiasReport struct {
	SessionID string     `json:"session_id"`
	Flags     []BiasFlag `json:"flags"`

	// Score is the mean severity of fired flags, 0 when none fired.
	Score float64 `json:"score"`
}

// AnalyzeBiasRequest runs the bias heuristics over a session.
type AnalyzeBiasRequest struct {
	SessionID         string `validate:"required"`
	IncludeMitigation bool
}

// RiskLevel grades a risk entry.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// RiskEntry is one rule-based risk finding.
type RiskEntry struct {
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
	Probability float64   `json:"probability"`
	Impact      float64   `json:"impact"`
	Mitigation  string    `json:"mitigation,omitempty"`
}

// RiskReport aggregates risk entries for a session.
type RiskReport struct {
	SessionID string      `json:"session_id"`
	Risks     []RiskEntry `json:"risks"`
}

// AssessRisksRequest runs the risk rules over a session.
type AssessRisksRequest struct {
	SessionID         string `validate:"required"`
	IncludeMitigation bool
}

// Alternative is one generated alternative archetype. The archetypes
// are a fixed rule table, not a search over session content.
type Alternative struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	Feasibility float64  `json:"feasibility"`
	Innovation  float64  `json:"innovation"`
}

// GenerateAlternativesRequest produces archetype alternatives.
type GenerateAlternativesRequest struct {
	SessionID       string   `validate:"required"`
	MaxAlternatives int      `validate:"min=0,max=10"`
	FocusAreas      []string `validate:"dive,max=200"`
}

// ComprehensiveRequest runs every analyzer over one snapshot.
type ComprehensiveRequest struct {
	SessionID  string `validate:"required"`
	IncludeAll bool
}

// ComprehensiveReport bundles all analyzers' output.
type ComprehensiveReport struct {
	SessionID    string        `json:"session_id"`
	Analysis     *Analysis     `json:"analysis,omitempty"`
	Logic        *LogicReport  `json:"logic"`
	Bias         *BiasReport   `json:"bias"`
	Risks        *RiskReport   `json:"risks"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}
