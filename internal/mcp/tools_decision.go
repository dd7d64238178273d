package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/decisiond/internal/audit"
	"github.com/fyrsmithlabs/decisiond/internal/decision"
	"github.com/fyrsmithlabs/decisiond/internal/session"
)

// ===== DECISION LIFECYCLE TOOLS =====

type startDecisionInput struct {
	Context     string `json:"context" jsonschema:"required,What decision is being made"`
	Description string `json:"description,omitempty" jsonschema:"Additional background for the decision"`
	Deadline    string `json:"deadline,omitempty" jsonschema:"Decision deadline, free text"`
}

type sessionOutput struct {
	SessionID       string `json:"session_id" jsonschema:"Session identifier"`
	Status          string `json:"status" jsonschema:"Session status"`
	CriteriaCount   int    `json:"criteria_count" jsonschema:"Number of criteria"`
	OptionCount     int    `json:"option_count" jsonschema:"Number of options"`
	EvaluationCount int    `json:"evaluation_count" jsonschema:"Number of evaluations"`
	Recommendation  string `json:"recommendation,omitempty" jsonschema:"Accepted option name, if completed"`
}

func decisionOutput(d *session.Decision) sessionOutput {
	return sessionOutput{
		SessionID:       d.ID,
		Status:          string(d.Status),
		CriteriaCount:   len(d.Criteria),
		OptionCount:     len(d.Options),
		EvaluationCount: len(d.Evaluations),
		Recommendation:  d.Recommendation,
	}
}

type getSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session identifier"`
}

type getSessionOutput struct {
	Decision *session.Decision `json:"decision,omitempty" jsonschema:"Decision session snapshot"`
	Thinking *session.Thinking `json:"thinking,omitempty" jsonschema:"Thinking session snapshot"`
}

type listSessionsInput struct {
	Type   string `json:"type,omitempty" jsonschema:"Filter by session type (decision or thinking)"`
	Status string `json:"status,omitempty" jsonschema:"Filter by status (active, evaluating, completed)"`
}

type listSessionsOutput struct {
	Sessions       []decision.SessionSummary `json:"sessions" jsonschema:"Matching sessions, newest first"`
	Count          int                       `json:"count" jsonschema:"Number of sessions returned"`
	RecentActivity []audit.Entry             `json:"recent_activity,omitempty" jsonschema:"Recent tool invocations, newest first"`
}

type criterionInput struct {
	Name        string  `json:"name" jsonschema:"required,Criterion name, unique per session"`
	Description string  `json:"description,omitempty" jsonschema:"What the criterion measures"`
	Weight      float64 `json:"weight" jsonschema:"required,Relative importance in [0,1]; weights should sum to 1"`
	Type        string  `json:"type" jsonschema:"required,One of benefit cost risk feasibility"`
}

type addCriteriaInput struct {
	SessionID string           `json:"session_id" jsonschema:"required,Session identifier"`
	Criteria  []criterionInput `json:"criteria" jsonschema:"required,Criteria to add"`
}

type addOptionInput struct {
	SessionID     string   `json:"session_id" jsonschema:"required,Session identifier"`
	Name          string   `json:"name" jsonschema:"required,Option name"`
	Description   string   `json:"description,omitempty" jsonschema:"What the option entails"`
	Pros          []string `json:"pros,omitempty" jsonschema:"Arguments in favor"`
	Cons          []string `json:"cons,omitempty" jsonschema:"Arguments against"`
	Risks         []string `json:"risks,omitempty" jsonschema:"Known risks of this option"`
	EstimatedCost string   `json:"estimated_cost,omitempty" jsonschema:"Cost estimate, free text"`
	EstimatedTime string   `json:"estimated_time,omitempty" jsonschema:"Time estimate, free text"`
}

type scoreInput struct {
	CriterionID string  `json:"criterion_id" jsonschema:"required,Criterion this score binds to"`
	Score       float64 `json:"score" jsonschema:"required,Raw score in [0,10]"`
	Reasoning   string  `json:"reasoning,omitempty" jsonschema:"Why this score was given"`
}

type evaluateOptionInput struct {
	SessionID string       `json:"session_id" jsonschema:"required,Session identifier"`
	OptionID  string       `json:"option_id" jsonschema:"required,Option to evaluate"`
	Scores    []scoreInput `json:"scores" jsonschema:"required,One score per criterion, bound by criterion_id"`
}

type evaluateOptionOutput struct {
	OptionID      string  `json:"option_id" jsonschema:"Evaluated option"`
	OverallScore  float64 `json:"overall_score" jsonschema:"Unweighted mean of raw scores"`
	WeightedScore float64 `json:"weighted_score" jsonschema:"Weight-adjusted aggregate score"`
	Timestamp     string  `json:"timestamp" jsonschema:"Evaluation time"`
}

func (s *Server) registerDecisionTools() {
	// start_decision
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "start_decision",
		Description: "Start a structured decision session with weighted criteria and options",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args startDecisionInput) (*mcp.CallToolResult, sessionOutput, error) {
		finish, err := s.begin(ctx, "start_decision", "")
		if err != nil {
			return nil, sessionOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		d, err := s.decisionSvc.Start(ctx, &decision.StartRequest{
			Context:     args.Context,
			Description: args.Description,
			Deadline:    args.Deadline,
		})
		if err != nil {
			toolErr = err
			return nil, sessionOutput{}, err
		}

		return textResult("Decision session started: %s", d.ID), decisionOutput(d), nil
	})

	// get_session
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_session",
		Description: "Retrieve a session snapshot by id, decision or thinking",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args getSessionInput) (*mcp.CallToolResult, getSessionOutput, error) {
		finish, err := s.begin(ctx, "get_session", args.SessionID)
		if err != nil {
			return nil, getSessionOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		d, th, err := s.fetchSession(ctx, args.SessionID)
		if err != nil {
			toolErr = err
			return nil, getSessionOutput{}, err
		}
		if th != nil {
			return textResult("Session %s (%s)", th.ID, th.Status), getSessionOutput{Thinking: th}, nil
		}

		return textResult("Session %s (%s)", d.ID, d.Status), getSessionOutput{Decision: d}, nil
	})

	// list_sessions
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List stored sessions, optionally filtered by type and status",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args listSessionsInput) (*mcp.CallToolResult, listSessionsOutput, error) {
		finish, err := s.begin(ctx, "list_sessions", "")
		if err != nil {
			return nil, listSessionsOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		sums, err := s.decisionSvc.List(ctx, &decision.ListRequest{
			Type:   args.Type,
			Status: args.Status,
		})
		if err != nil {
			toolErr = err
			return nil, listSessionsOutput{}, err
		}

		return textResult("%d session(s)", len(sums)), listSessionsOutput{
			Sessions:       sums,
			Count:          len(sums),
			RecentActivity: s.recentActivity(),
		}, nil
	})

	// add_criteria
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_criteria",
		Description: "Add weighted evaluation criteria to a decision session",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args addCriteriaInput) (*mcp.CallToolResult, sessionOutput, error) {
		finish, err := s.begin(ctx, "add_criteria", args.SessionID)
		if err != nil {
			return nil, sessionOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		criteria := make([]decision.CriterionInput, 0, len(args.Criteria))
		for _, c := range args.Criteria {
			criteria = append(criteria, decision.CriterionInput{
				Name:        c.Name,
				Description: c.Description,
				Weight:      c.Weight,
				Type:        c.Type,
			})
		}

		d, err := s.decisionSvc.AddCriteria(ctx, &decision.AddCriteriaRequest{
			SessionID: args.SessionID,
			Criteria:  criteria,
		})
		if err != nil {
			toolErr = err
			return nil, sessionOutput{}, err
		}

		return textResult("Session %s now has %d criteria", d.ID, len(d.Criteria)), decisionOutput(d), nil
	})

	// add_option
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_option",
		Description: "Add a candidate option to a decision session",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args addOptionInput) (*mcp.CallToolResult, sessionOutput, error) {
		finish, err := s.begin(ctx, "add_option", args.SessionID)
		if err != nil {
			return nil, sessionOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		d, err := s.decisionSvc.AddOption(ctx, &decision.AddOptionRequest{
			SessionID:     args.SessionID,
			Name:          args.Name,
			Description:   args.Description,
			Pros:          args.Pros,
			Cons:          args.Cons,
			Risks:         args.Risks,
			EstimatedCost: args.EstimatedCost,
			EstimatedTime: args.EstimatedTime,
		})
		if err != nil {
			toolErr = err
			return nil, sessionOutput{}, err
		}

		return textResult("Session %s now has %d option(s)", d.ID, len(d.Options)), decisionOutput(d), nil
	})

	// evaluate_option
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "evaluate_option",
		Description: "Score an option against every criterion; re-evaluating replaces the prior scores",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args evaluateOptionInput) (*mcp.CallToolResult, evaluateOptionOutput, error) {
		finish, err := s.begin(ctx, "evaluate_option", args.SessionID)
		if err != nil {
			return nil, evaluateOptionOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		scores := make([]decision.ScoreInput, 0, len(args.Scores))
		for _, sc := range args.Scores {
			scores = append(scores, decision.ScoreInput{
				CriterionID: sc.CriterionID,
				Score:       sc.Score,
				Reasoning:   sc.Reasoning,
			})
		}

		ev, err := s.decisionSvc.Evaluate(ctx, &decision.EvaluateRequest{
			SessionID: args.SessionID,
			OptionID:  args.OptionID,
			Scores:    scores,
		})
		if err != nil {
			toolErr = err
			return nil, evaluateOptionOutput{}, err
		}

		return textResult("Option %s scored %.1f weighted", ev.OptionID, ev.WeightedScore), evaluateOptionOutput{
			OptionID:      ev.OptionID,
			OverallScore:  ev.OverallScore,
			WeightedScore: ev.WeightedScore,
			Timestamp:     ev.Timestamp.Format(time.RFC3339),
		}, nil
	})
}
