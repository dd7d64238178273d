package session

import (
	"strings"
	"time"
)

// Type discriminates session records in the store.
type Type string

const (
	// TypeDecision is a weighted-criteria decision session.
	TypeDecision Type = "decision"
	// TypeThinking is a sequential-thinking session.
	TypeThinking Type = "thinking"
)

// Status is the lifecycle state of a session.
type Status string

const (
	// StatusActive accepts mutations.
	StatusActive Status = "active"
	// StatusEvaluating has at least one evaluation recorded.
	StatusEvaluating Status = "evaluating"
	// StatusCompleted is terminal; no further mutations are accepted.
	StatusCompleted Status = "completed"
)

// CriterionType classifies what a criterion measures.
type CriterionType string

const (
	CriterionBenefit     CriterionType = "benefit"
	CriterionCost        CriterionType = "cost"
	CriterionRisk        CriterionType = "risk"
	CriterionFeasibility CriterionType = "feasibility"
)

// ValidCriterionType reports whether t is a known criterion type.
func ValidCriterionType(t CriterionType) bool {
	switch t {
	case CriterionBenefit, CriterionCost, CriterionRisk, CriterionFeasibility:
		return true
	}
	return false
}

// Criterion is a weighted axis of comparison.
type Criterion struct {
	// ID is the unique identifier for this criterion.
	ID string `json:"id"`

	// Name is a short human-readable label, unique per session
	// (case-insensitive).
	Name string `json:"name"`

	// Description explains what the criterion measures.
	Description string `json:"description"`

	// Weight is the relative importance in [0,1]. Weights across a
	// session should sum to roughly 1; deviation is a warning, not
	// an error.
	Weight float64 `json:"weight"`

	// Type classifies the criterion (benefit, cost, risk, feasibility).
	Type CriterionType `json:"type"`
}

// Option is a candidate choice under evaluation.
type Option struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Pros        []string `json:"pros,omitempty"`
	Cons        []string `json:"cons,omitempty"`
	Risks       []string `json:"risks,omitempty"`

	// EstimatedCost and EstimatedTime are free-text estimates,
	// surfaced verbatim in recommendations when present.
	EstimatedCost string `json:"estimated_cost,omitempty"`
	EstimatedTime string `json:"estimated_time,omitempty"`
}

// Score is one criterion's score for one option.
type Score struct {
	// CriterionID binds the score to a criterion explicitly. Scores
	// are never matched by array position.
	CriterionID string `json:"criterion_id"`

	// Value is the raw score in [0,10].
	Value float64 `json:"value"`

	// Reasoning justifies the score. Empty reasoning is tolerated
	// with a warning.
	Reasoning string `json:"reasoning"`
}

// Evaluation is the full scoring of one option. A session holds at
// most one evaluation per option; re-evaluating replaces the prior one.
type Evaluation struct {
	OptionID string  `json:"option_id"`
	Scores   []Score `json:"scores"`

	// OverallScore is the unweighted mean of raw scores, for display.
	OverallScore float64 `json:"overall_score"`

	// WeightedScore is Σ(score·weight)/Σ(weight) over the criteria
	// the scores bind to.
	WeightedScore float64 `json:"weighted_score"`

	Timestamp time.Time `json:"timestamp"`
}

// Decision is a weighted-criteria decision session.
type Decision struct {
	ID          string    `json:"id"`
	Context     string    `json:"context"`
	Description string    `json:"description,omitempty"`
	Deadline    string    `json:"deadline,omitempty"`
	Criteria    []Criterion `json:"criteria"`
	Options     []Option    `json:"options"`
	Evaluations []Evaluation `json:"evaluations"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Recommendation holds the accepted option name once the session
	// is completed.
	Recommendation string `json:"recommendation,omitempty"`
}

// CriterionByID looks up a criterion by id.
func (d *Decision) CriterionByID(id string) (*Criterion, bool) {
	for i := range d.Criteria {
		if d.Criteria[i].ID == id {
			return &d.Criteria[i], true
		}
	}
	return nil, false
}

// OptionByID looks up an option by id.
func (d *Decision) OptionByID(id string) (*Option, bool) {
	for i := range d.Options {
		if d.Options[i].ID == id {
			return &d.Options[i], true
		}
	}
	return nil, false
}

// EvaluationFor returns the evaluation for an option, if any.
func (d *Decision) EvaluationFor(optionID string) (*Evaluation, bool) {
	for i := range d.Evaluations {
		if d.Evaluations[i].OptionID == optionID {
			return &d.Evaluations[i], true
		}
	}
	return nil, false
}

// HasCriterionNamed reports whether a criterion with the given name
// already exists (case-insensitive).
func (d *Decision) HasCriterionNamed(name string) bool {
	for i := range d.Criteria {
		if strings.EqualFold(d.Criteria[i].Name, name) {
			return true
		}
	}
	return false
}

// WeightSum returns the sum of all criteria weights.
func (d *Decision) WeightSum() float64 {
	var sum float64
	for i := range d.Criteria {
		sum += d.Criteria[i].Weight
	}
	return sum
}

// Thought is one unit of reasoning in a thinking session.
type Thought struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	// ParentID links a branched thought to the thought it forked from.
	ParentID string `json:"parent_id,omitempty"`

	// BranchID groups thoughts belonging to the same branch.
	BranchID string `json:"branch_id,omitempty"`

	// Revisions counts in-place content overwrites.
	Revisions int `json:"revisions,omitempty"`

	// RevisedAt is the time of the most recent revision.
	RevisedAt time.Time `json:"revised_at,omitzero"`
}

// Branch is an alternative line of thoughts forked from a parent thought.
type Branch struct {
	ID            string    `json:"id"`
	Name          string    `json:"name,omitempty"`
	FromThoughtID string    `json:"from_thought_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Thinking is a sequential-thinking session.
type Thinking struct {
	ID       string    `json:"id"`
	Problem  string    `json:"problem"`
	Context  string    `json:"context,omitempty"`
	Thoughts []Thought `json:"thoughts"`
	Branches []Branch  `json:"branches"`
	Status   Status    `json:"status"`

	// MaxThoughts caps the thought list; 0 means unlimited.
	MaxThoughts int `json:"max_thoughts,omitempty"`

	Conclusion string    `json:"conclusion,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ThoughtByID looks up a thought by id.
func (t *Thinking) ThoughtByID(id string) (*Thought, bool) {
	for i := range t.Thoughts {
		if t.Thoughts[i].ID == id {
			return &t.Thoughts[i], true
		}
	}
	return nil, false
}
