package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/decisiond/internal/decision"
)

// ===== ANALYSIS TOOLS =====

type analyzeDecisionInput struct {
	SessionID           string `json:"session_id" jsonschema:"required,Session identifier"`
	IncludeAlternatives bool   `json:"include_alternatives,omitempty" jsonschema:"Also list runner-up options"`
}

type analyzeDecisionOutput struct {
	Analysis *decision.Analysis `json:"analysis" jsonschema:"Ranking, confidence, key factors, risks, next steps"`
}

type makeRecommendationInput struct {
	SessionID     string  `json:"session_id" jsonschema:"required,Session identifier"`
	MinConfidence float64 `json:"min_confidence,omitempty" jsonschema:"Refuse below this confidence in [0,1]; 0 means the default 0.3"`
}

type makeRecommendationOutput struct {
	Recommendation *decision.Recommendation `json:"recommendation" jsonschema:"Accepted option with reasoning and mitigation"`
}

type validateLogicInput struct {
	SessionID  string `json:"session_id" jsonschema:"required,Session identifier"`
	StrictMode bool   `json:"strict_mode,omitempty" jsonschema:"Also fail validity on warnings"`
}

type validateLogicOutput struct {
	Report *decision.LogicReport `json:"report" jsonschema:"Errors, warnings, suggestions, and consistency score"`
}

type analyzeBiasInput struct {
	SessionID         string `json:"session_id" jsonschema:"required,Session identifier"`
	IncludeMitigation bool   `json:"include_mitigation,omitempty" jsonschema:"Attach a mitigation hint to each flag"`
}

type analyzeBiasOutput struct {
	Report *decision.BiasReport `json:"report" jsonschema:"Heuristic bias flags with severities"`
}

type assessRisksInput struct {
	SessionID         string `json:"session_id" jsonschema:"required,Session identifier"`
	IncludeMitigation bool   `json:"include_mitigation,omitempty" jsonschema:"Attach a mitigation hint to each risk"`
}

type assessRisksOutput struct {
	Report *decision.RiskReport `json:"report" jsonschema:"Graded risk entries with probability and impact"`
}

type generateAlternativesInput struct {
	SessionID       string   `json:"session_id" jsonschema:"required,Session identifier"`
	MaxAlternatives int      `json:"max_alternatives,omitempty" jsonschema:"Cap on generated alternatives, 0 means the default"`
	FocusAreas      []string `json:"focus_areas,omitempty" jsonschema:"Areas to emphasize in the generated descriptions"`
}

type generateAlternativesOutput struct {
	Alternatives []decision.Alternative `json:"alternatives" jsonschema:"Generated alternative approaches"`
}

type comprehensiveInput struct {
	SessionID  string `json:"session_id" jsonschema:"required,Session identifier"`
	IncludeAll bool   `json:"include_all,omitempty" jsonschema:"Also include generated alternatives"`
}

type comprehensiveOutput struct {
	Report *decision.ComprehensiveReport `json:"report" jsonschema:"Logic, bias, risk, and score analysis in one pass"`
}

func (s *Server) registerAnalysisTools() {
	// analyze_decision
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_decision",
		Description: "Rank evaluated options by weighted score and estimate confidence in the lead",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args analyzeDecisionInput) (*mcp.CallToolResult, analyzeDecisionOutput, error) {
		finish, err := s.begin(ctx, "analyze_decision", args.SessionID)
		if err != nil {
			return nil, analyzeDecisionOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		a, err := s.decisionSvc.Analyze(ctx, &decision.AnalyzeRequest{
			SessionID:           args.SessionID,
			IncludeAlternatives: args.IncludeAlternatives,
		})
		if err != nil {
			toolErr = err
			return nil, analyzeDecisionOutput{}, err
		}

		return textResult("Top option: %s (%.1f weighted, %.0f%% confidence)",
			a.TopOption.Name, a.TopOption.WeightedScore, a.Confidence*100), analyzeDecisionOutput{Analysis: a}, nil
	})

	// make_recommendation
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "make_recommendation",
		Description: "Accept the top option and complete the session, refusing below the confidence threshold",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args makeRecommendationInput) (*mcp.CallToolResult, makeRecommendationOutput, error) {
		finish, err := s.begin(ctx, "make_recommendation", args.SessionID)
		if err != nil {
			return nil, makeRecommendationOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		rec, err := s.decisionSvc.Recommend(ctx, &decision.RecommendRequest{
			SessionID:     args.SessionID,
			MinConfidence: args.MinConfidence,
		})
		if err != nil {
			toolErr = err
			return nil, makeRecommendationOutput{}, err
		}

		return textResult("Recommended: %s (%.1f weighted, %.0f%% confidence)",
			rec.Option, rec.Score, rec.Confidence*100), makeRecommendationOutput{Recommendation: rec}, nil
	})

	// validate_logic
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "validate_logic",
		Description: "Check the session structure for logic problems: weight sums, duplicates, missing reasoning",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args validateLogicInput) (*mcp.CallToolResult, validateLogicOutput, error) {
		finish, err := s.begin(ctx, "validate_logic", args.SessionID)
		if err != nil {
			return nil, validateLogicOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		report, err := s.decisionSvc.ValidateLogic(ctx, &decision.ValidateLogicRequest{
			SessionID:  args.SessionID,
			StrictMode: args.StrictMode,
		})
		if err != nil {
			toolErr = err
			return nil, validateLogicOutput{}, err
		}

		verdict := "valid"
		if !report.IsValid {
			verdict = "invalid"
		}
		return textResult("Logic %s: %d error(s), %d warning(s), consistency %.2f",
			verdict, len(report.Errors), len(report.Warnings), report.Consistency), validateLogicOutput{Report: report}, nil
	})

	// analyze_bias
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_bias",
		Description: "Run heuristic bias detection: confirmation, anchoring, and availability patterns",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args analyzeBiasInput) (*mcp.CallToolResult, analyzeBiasOutput, error) {
		finish, err := s.begin(ctx, "analyze_bias", args.SessionID)
		if err != nil {
			return nil, analyzeBiasOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		report, err := s.decisionSvc.AnalyzeBias(ctx, &decision.AnalyzeBiasRequest{
			SessionID:         args.SessionID,
			IncludeMitigation: args.IncludeMitigation,
		})
		if err != nil {
			toolErr = err
			return nil, analyzeBiasOutput{}, err
		}

		return textResult("%d bias flag(s), score %.2f", len(report.Flags), report.Score),
			analyzeBiasOutput{Report: report}, nil
	})

	// assess_risks
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "assess_risks",
		Description: "Grade session risks from low-scoring options and unbalanced criteria weights",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args assessRisksInput) (*mcp.CallToolResult, assessRisksOutput, error) {
		finish, err := s.begin(ctx, "assess_risks", args.SessionID)
		if err != nil {
			return nil, assessRisksOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		report, err := s.decisionSvc.AssessRisks(ctx, &decision.AssessRisksRequest{
			SessionID:         args.SessionID,
			IncludeMitigation: args.IncludeMitigation,
		})
		if err != nil {
			toolErr = err
			return nil, assessRisksOutput{}, err
		}

		return textResult("%d risk(s) identified", len(report.Risks)),
			assessRisksOutput{Report: report}, nil
	})

	// generate_alternatives
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "generate_alternatives",
		Description: "Suggest alternative approaches beyond the options already on the table",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args generateAlternativesInput) (*mcp.CallToolResult, generateAlternativesOutput, error) {
		finish, err := s.begin(ctx, "generate_alternatives", args.SessionID)
		if err != nil {
			return nil, generateAlternativesOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		alts, err := s.decisionSvc.GenerateAlternatives(ctx, &decision.GenerateAlternativesRequest{
			SessionID:       args.SessionID,
			MaxAlternatives: args.MaxAlternatives,
			FocusAreas:      args.FocusAreas,
		})
		if err != nil {
			toolErr = err
			return nil, generateAlternativesOutput{}, err
		}

		return textResult("%d alternative(s) generated", len(alts)),
			generateAlternativesOutput{Alternatives: alts}, nil
	})

	// comprehensive_analysis
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "comprehensive_analysis",
		Description: "Run logic, bias, risk, and score analysis over one session snapshot",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args comprehensiveInput) (*mcp.CallToolResult, comprehensiveOutput, error) {
		finish, err := s.begin(ctx, "comprehensive_analysis", args.SessionID)
		if err != nil {
			return nil, comprehensiveOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		report, err := s.decisionSvc.Comprehensive(ctx, &decision.ComprehensiveRequest{
			SessionID:  args.SessionID,
			IncludeAll: args.IncludeAll,
		})
		if err != nil {
			toolErr = err
			return nil, comprehensiveOutput{}, err
		}

		return textResult("Comprehensive analysis for session %s complete", report.SessionID),
			comprehensiveOutput{Report: report}, nil
	})
}
