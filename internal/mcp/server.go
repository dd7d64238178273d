// Package mcp exposes decisiond's session workflows as MCP tools.
//
// The server is a thin request/response boundary: each tool call
// validates arguments, checks the advisory rate limit, delegates to
// the injected service, and maps domain errors onto the response
// envelope. All state lives in the services and their session store.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/audit"
	"github.com/fyrsmithlabs/decisiond/internal/decision"
	"github.com/fyrsmithlabs/decisiond/internal/ratelimit"
	"github.com/fyrsmithlabs/decisiond/internal/session"
	"github.com/fyrsmithlabs/decisiond/internal/thinking"
)

// recentActivityLimit bounds the audit entries attached to list_sessions.
const recentActivityLimit = 10

// Server exposes decision and thinking services over MCP.
type Server struct {
	mcp         *mcp.Server
	decisionSvc decision.Service
	thinkingSvc thinking.Service
	limiter     *ratelimit.Limiter
	auditLog    *audit.Log
	metrics     *Metrics
	logger      *zap.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the server implementation name (default: "decisiond").
	Name string

	// Version is the server version (default: "1.0.0").
	Version string

	// Logger for structured logging.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Name:    "decisiond",
		Version: "1.0.0",
		Logger:  zap.NewNop(),
	}
}

// NewServer creates an MCP server with the given services. The limiter
// and audit log are optional; nil disables the respective feature.
func NewServer(
	cfg *Config,
	decisionSvc decision.Service,
	thinkingSvc thinking.Service,
	limiter *ratelimit.Limiter,
	auditLog *audit.Log,
) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if decisionSvc == nil {
		return nil, fmt.Errorf("decision service is required")
	}
	if thinkingSvc == nil {
		return nil, fmt.Errorf("thinking service is required")
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		},
		nil,
	)

	s := &Server{
		mcp:         mcpServer,
		decisionSvc: decisionSvc,
		thinkingSvc: thinkingSvc,
		limiter:     limiter,
		auditLog:    auditLog,
		metrics:     NewMetrics(cfg.Logger),
		logger:      cfg.Logger,
	}

	s.registerDecisionTools()
	s.registerAnalysisTools()
	s.registerThinkingTools()

	return s, nil
}

// Run starts the MCP server on the stdio transport.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio transport")
	transport := &mcp.StdioTransport{}
	if err := s.mcp.Run(ctx, transport); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}

// Close closes the server and all services.
func (s *Server) Close() error {
	s.logger.Info("closing MCP server and services")

	var errs []error
	if err := s.decisionSvc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("decision service close: %w", err))
	}
	if err := s.thinkingSvc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("thinking service close: %w", err))
	}
	if s.limiter != nil {
		if err := s.limiter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("limiter close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// begin charges the rate limiter and starts per-tool accounting. The
// returned finish func must be deferred with the tool's final error.
func (s *Server) begin(ctx context.Context, tool, sessionID string) (func(err error), error) {
	if s.limiter != nil {
		key := sessionID
		if key == "" {
			key = "global"
		}
		if err := s.limiter.Allow(ctx, key); err != nil {
			if s.auditLog != nil {
				s.auditLog.Record(tool, sessionID, "rate_limited", err.Error())
			}
			return nil, err
		}
	}

	finish := s.metrics.Track(ctx, tool)
	return func(err error) {
		finish(err)
		if s.auditLog == nil {
			return
		}
		outcome := "ok"
		detail := ""
		if err != nil {
			outcome = "error"
			detail = err.Error()
		}
		s.auditLog.Record(tool, sessionID, outcome, detail)
	}, nil
}

// fetchSession resolves an id against both session types. list_sessions
// returns ids of either type, so get_session must accept both. Exactly
// one of the returned snapshots is non-nil on success.
func (s *Server) fetchSession(ctx context.Context, id string) (*session.Decision, *session.Thinking, error) {
	d, err := s.decisionSvc.Get(ctx, id)
	if err == nil {
		return d, nil, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, nil, err
	}

	t, terr := s.thinkingSvc.Get(ctx, id)
	if terr == nil {
		return nil, t, nil
	}
	if errors.Is(terr, session.ErrNotFound) {
		return nil, nil, err
	}
	return nil, nil, terr
}

// recentActivity returns the newest audit entries, or nil when no audit
// log is configured.
func (s *Server) recentActivity() []audit.Entry {
	if s.auditLog == nil {
		return nil
	}
	return s.auditLog.Recent(recentActivityLimit)
}

// textResult wraps a short human-readable summary for the tool result.
func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}
