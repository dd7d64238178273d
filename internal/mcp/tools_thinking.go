package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fyrsmithlabs/decisiond/internal/thinking"
)

// ===== SEQUENTIAL THINKING TOOLS =====

type startThinkingInput struct {
	Problem     string `json:"problem" jsonschema:"required,Problem to reason about"`
	Context     string `json:"context,omitempty" jsonschema:"Background for the problem"`
	MaxThoughts int    `json:"max_thoughts,omitempty" jsonschema:"Cap on thoughts, 0 means unlimited"`
}

type startThinkingOutput struct {
	SessionID   string `json:"session_id" jsonschema:"Session identifier"`
	Status      string `json:"status" jsonschema:"Session status"`
	MaxThoughts int    `json:"max_thoughts" jsonschema:"Configured thought cap"`
}

type addThoughtInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session identifier"`
	Content   string `json:"content" jsonschema:"required,Thought text"`
	BranchID  string `json:"branch_id,omitempty" jsonschema:"Attach the thought to an existing branch"`
}

type thoughtOutput struct {
	ThoughtID string `json:"thought_id" jsonschema:"Thought identifier"`
	ParentID  string `json:"parent_id,omitempty" jsonschema:"Parent thought when branched"`
	BranchID  string `json:"branch_id,omitempty" jsonschema:"Branch the thought belongs to"`
	Revisions int    `json:"revisions" jsonschema:"Times this thought was revised"`
}

type reviseThoughtInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session identifier"`
	ThoughtID string `json:"thought_id" jsonschema:"required,Thought to revise"`
	Content   string `json:"content" jsonschema:"required,Replacement text"`
}

type branchInput struct {
	SessionID     string `json:"session_id" jsonschema:"required,Session identifier"`
	FromThoughtID string `json:"from_thought_id" jsonschema:"required,Thought to branch from"`
	Name          string `json:"name,omitempty" jsonschema:"Branch label"`
}

type branchOutput struct {
	BranchID      string `json:"branch_id" jsonschema:"Branch identifier"`
	FromThoughtID string `json:"from_thought_id" jsonschema:"Parent thought"`
	Name          string `json:"name,omitempty" jsonschema:"Branch label"`
}

type thinkingProgressInput struct {
	SessionID string `json:"session_id" jsonschema:"required,Session identifier"`
}

type thinkingProgressOutput struct {
	Report *thinking.ProgressReport `json:"report" jsonschema:"Counts, surfaced insights, and the overconfidence flag"`
}

type concludeThinkingInput struct {
	SessionID  string `json:"session_id" jsonschema:"required,Session identifier"`
	Conclusion string `json:"conclusion" jsonschema:"required,Conclusion text; completes the session"`
}

type concludeThinkingOutput struct {
	SessionID    string `json:"session_id" jsonschema:"Session identifier"`
	Status       string `json:"status" jsonschema:"Session status after concluding"`
	ThoughtCount int    `json:"thought_count" jsonschema:"Thoughts recorded before concluding"`
}

func (s *Server) registerThinkingTools() {
	// start_thinking
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "start_thinking",
		Description: "Start a sequential thinking session with an optional thought cap",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args startThinkingInput) (*mcp.CallToolResult, startThinkingOutput, error) {
		finish, err := s.begin(ctx, "start_thinking", "")
		if err != nil {
			return nil, startThinkingOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		t, err := s.thinkingSvc.Start(ctx, &thinking.StartRequest{
			Problem:     args.Problem,
			Context:     args.Context,
			MaxThoughts: args.MaxThoughts,
		})
		if err != nil {
			toolErr = err
			return nil, startThinkingOutput{}, err
		}

		return textResult("Thinking session started: %s", t.ID), startThinkingOutput{
			SessionID:   t.ID,
			Status:      string(t.Status),
			MaxThoughts: t.MaxThoughts,
		}, nil
	})

	// add_thought
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "add_thought",
		Description: "Append a thought to a thinking session, optionally on a branch",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args addThoughtInput) (*mcp.CallToolResult, thoughtOutput, error) {
		finish, err := s.begin(ctx, "add_thought", args.SessionID)
		if err != nil {
			return nil, thoughtOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		th, err := s.thinkingSvc.AddThought(ctx, &thinking.AddThoughtRequest{
			SessionID: args.SessionID,
			Content:   args.Content,
			BranchID:  args.BranchID,
		})
		if err != nil {
			toolErr = err
			return nil, thoughtOutput{}, err
		}

		return textResult("Thought recorded: %s", th.ID), thoughtOutput{
			ThoughtID: th.ID,
			ParentID:  th.ParentID,
			BranchID:  th.BranchID,
			Revisions: th.Revisions,
		}, nil
	})

	// revise_thought
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "revise_thought",
		Description: "Overwrite a thought's content, stamping the revision",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args reviseThoughtInput) (*mcp.CallToolResult, thoughtOutput, error) {
		finish, err := s.begin(ctx, "revise_thought", args.SessionID)
		if err != nil {
			return nil, thoughtOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		th, err := s.thinkingSvc.ReviseThought(ctx, &thinking.ReviseThoughtRequest{
			SessionID: args.SessionID,
			ThoughtID: args.ThoughtID,
			Content:   args.Content,
		})
		if err != nil {
			toolErr = err
			return nil, thoughtOutput{}, err
		}

		return textResult("Thought %s revised (%d revision(s))", th.ID, th.Revisions), thoughtOutput{
			ThoughtID: th.ID,
			ParentID:  th.ParentID,
			BranchID:  th.BranchID,
			Revisions: th.Revisions,
		}, nil
	})

	// branch_from_thought
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "branch_from_thought",
		Description: "Fork an alternative line of reasoning from an existing thought",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args branchInput) (*mcp.CallToolResult, branchOutput, error) {
		finish, err := s.begin(ctx, "branch_from_thought", args.SessionID)
		if err != nil {
			return nil, branchOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		b, err := s.thinkingSvc.Branch(ctx, &thinking.BranchRequest{
			SessionID:     args.SessionID,
			FromThoughtID: args.FromThoughtID,
			Name:          args.Name,
		})
		if err != nil {
			toolErr = err
			return nil, branchOutput{}, err
		}

		return textResult("Branch created: %s", b.ID), branchOutput{
			BranchID:      b.ID,
			FromThoughtID: b.FromThoughtID,
			Name:          b.Name,
		}, nil
	})

	// analyze_thinking_progress
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "analyze_thinking_progress",
		Description: "Summarize a thinking session: counts, surfaced insights, overconfidence",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args thinkingProgressInput) (*mcp.CallToolResult, thinkingProgressOutput, error) {
		finish, err := s.begin(ctx, "analyze_thinking_progress", args.SessionID)
		if err != nil {
			return nil, thinkingProgressOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		report, err := s.thinkingSvc.Progress(ctx, args.SessionID)
		if err != nil {
			toolErr = err
			return nil, thinkingProgressOutput{}, err
		}

		return textResult("%d thought(s), %d branch(es), %d insight(s)",
			report.ThoughtCount, report.BranchCount, len(report.Insights)), thinkingProgressOutput{Report: report}, nil
	})

	// conclude_thinking
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "conclude_thinking",
		Description: "Record the conclusion and complete the thinking session",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args concludeThinkingInput) (*mcp.CallToolResult, concludeThinkingOutput, error) {
		finish, err := s.begin(ctx, "conclude_thinking", args.SessionID)
		if err != nil {
			return nil, concludeThinkingOutput{}, err
		}
		var toolErr error
		defer func() { finish(toolErr) }()

		t, err := s.thinkingSvc.Conclude(ctx, &thinking.ConcludeRequest{
			SessionID:  args.SessionID,
			Conclusion: args.Conclusion,
		})
		if err != nil {
			toolErr = err
			return nil, concludeThinkingOutput{}, err
		}

		return textResult("Session %s concluded after %d thought(s)", t.ID, len(t.Thoughts)), concludeThinkingOutput{
			SessionID:    t.ID,
			Status:       string(t.Status),
			ThoughtCount: len(t.Thoughts),
		}, nil
	})
}
