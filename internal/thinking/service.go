// Package thinking implements sequential-thinking sessions: an ordered
// list of free-text thoughts with optional branches and a terminal
// conclusion. The operations are deliberately simple bookkeeping; the
// value is in the recorded trail, not in any derived computation.
package thinking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/decisiond/internal/session"
	"github.com/fyrsmithlabs/decisiond/internal/store"
)

const instrumentationName = "github.com/fyrsmithlabs/decisiond/internal/thinking"

// minThoughtsForConclusion is the thought count below which a recorded
// conclusion raises the overconfidence flag.
const minThoughtsForConclusion = 5

// insightKeywords surface thoughts verbatim in progress analysis.
var insightKeywords = []string{"important", "key", "insight", "realize", "conclusion"}

// insightTruncateLen bounds surfaced insight text.
const insightTruncateLen = 160

// Service provides thinking session operations.
type Service interface {
	// Start creates a new thinking session.
	Start(ctx context.Context, req *StartRequest) (*session.Thinking, error)

	// Get retrieves a session by id.
	Get(ctx context.Context, id string) (*session.Thinking, error)

	// AddThought appends a thought. Rejected once MaxThoughts is hit.
	AddThought(ctx context.Context, req *AddThoughtRequest) (*session.Thought, error)

	// ReviseThought overwrites a thought's content in place, stamping
	// the revision in metadata.
	ReviseThought(ctx context.Context, req *ReviseThoughtRequest) (*session.Thought, error)

	// Branch forks an alternative line of thoughts from a parent.
	Branch(ctx context.Context, req *BranchRequest) (*session.Branch, error)

	// Progress reports counts and keyword-surfaced insights. Pure read.
	Progress(ctx context.Context, id string) (*ProgressReport, error)

	// Conclude records the conclusion and completes the session.
	// Irreversible.
	Conclude(ctx context.Context, req *ConcludeRequest) (*session.Thinking, error)

	// Close closes the service.
	Close() error
}

// StartRequest creates a new thinking session.
type StartRequest struct {
	Problem     string `validate:"required,max=4000"`
	Context     string `validate:"max=4000"`
	MaxThoughts int    `validate:"min=0,max=1000"`
}

// AddThoughtRequest appends a thought to a session.
type AddThoughtRequest struct {
	SessionID string `validate:"required"`
	Content   string `validate:"required,max=8000"`

	// BranchID attaches the thought to an existing branch.
	BranchID string
}

// ReviseThoughtRequest overwrites a thought's content.
type ReviseThoughtRequest struct {
	SessionID string `validate:"required"`
	ThoughtID string `validate:"required"`
	Content   string `validate:"required,max=8000"`
}

// BranchRequest forks a new branch from a parent thought.
type BranchRequest struct {
	SessionID     string `validate:"required"`
	FromThoughtID string `validate:"required"`
	Name          string `validate:"max=200"`
}

// ConcludeRequest records the session conclusion.
type ConcludeRequest struct {
	SessionID  string `validate:"required"`
	Conclusion string `validate:"required,max=8000"`
}

// ProgressReport summarizes a thinking session's trail.
type ProgressReport struct {
	SessionID    string   `json:"session_id"`
	ThoughtCount int      `json:"thought_count"`
	BranchCount  int      `json:"branch_count"`
	Revisions    int      `json:"revisions"`
	Insights     []string `json:"insights"`
	Concluded    bool     `json:"concluded"`

	// Overconfidence fires when a conclusion was recorded after fewer
	// than five thoughts.
	Overconfidence bool `json:"overconfidence"`
}

type service struct {
	sessions store.Store
	logger   *zap.Logger
	validate *validator.Validate

	tracer         trace.Tracer
	meter          metric.Meter
	thoughtCounter metric.Int64Counter
}

// NewService creates a thinking service backed by the given store.
func NewService(sessions store.Store, logger *zap.Logger) (Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		sessions: sessions,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   otel.Tracer(instrumentationName),
		meter:    otel.Meter(instrumentationName),
	}

	var err error
	s.thoughtCounter, err = s.meter.Int64Counter(
		"decisiond.thinking.thoughts_total",
		metric.WithDescription("Total number of thoughts recorded"),
		metric.WithUnit("{thought}"),
	)
	if err != nil {
		s.logger.Warn("failed to create thought counter", zap.Error(err))
	}

	return s, nil
}

// Start creates a new thinking session.
func (s *service) Start(ctx context.Context, req *StartRequest) (*session.Thinking, error) {
	ctx, span := s.tracer.Start(ctx, "thinking.start")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &session.Thinking{
		ID:          uuid.New().String(),
		Problem:     req.Problem,
		Context:     req.Context,
		Thoughts:    []session.Thought{},
		Branches:    []session.Branch{},
		Status:      session.StatusActive,
		MaxThoughts: req.MaxThoughts,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("session_id", t.ID))
	s.logger.Info("started thinking session",
		zap.String("id", t.ID),
		zap.Int("max_thoughts", t.MaxThoughts),
	)
	return t, nil
}

// Get retrieves a session by id.
func (s *service) Get(ctx context.Context, id string) (*session.Thinking, error) {
	ctx, span := s.tracer.Start(ctx, "thinking.get")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", id))
	return s.load(ctx, id)
}

// AddThought appends a thought to an active session.
func (s *service) AddThought(ctx context.Context, req *AddThoughtRequest) (*session.Thought, error) {
	ctx, span := s.tracer.Start(ctx, "thinking.add_thought")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	t, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if t.Status != session.StatusActive {
		return nil, session.ErrInvalidState
	}
	if t.MaxThoughts > 0 && len(t.Thoughts) >= t.MaxThoughts {
		return nil, fmt.Errorf("session %s holds %d thoughts: %w",
			t.ID, len(t.Thoughts), session.ErrThoughtLimit)
	}

	var parentID string
	if req.BranchID != "" {
		found := false
		for _, b := range t.Branches {
			if b.ID == req.BranchID {
				parentID = b.FromThoughtID
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("branch %s: %w", req.BranchID, session.ErrNotFound)
		}
	}

	th := session.Thought{
		ID:        uuid.New().String(),
		Content:   req.Content,
		Timestamp: time.Now(),
		ParentID:  parentID,
		BranchID:  req.BranchID,
	}
	t.Thoughts = append(t.Thoughts, th)
	t.UpdatedAt = time.Now()

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	if s.thoughtCounter != nil {
		s.thoughtCounter.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("branched", req.BranchID != ""),
		))
	}
	span.SetAttributes(
		attribute.String("session_id", t.ID),
		attribute.Int("thought_count", len(t.Thoughts)),
	)
	return &th, nil
}

// ReviseThought overwrites a thought's content in place.
func (s *service) ReviseThought(ctx context.Context, req *ReviseThoughtRequest) (*session.Thought, error) {
	ctx, span := s.tracer.Start(ctx, "thinking.revise_thought")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	t, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if t.Status != session.StatusActive {
		return nil, session.ErrInvalidState
	}

	th, ok := t.ThoughtByID(req.ThoughtID)
	if !ok {
		return nil, fmt.Errorf("thought %s: %w", req.ThoughtID, session.ErrNotFound)
	}

	th.Content = req.Content
	th.Revisions++
	th.RevisedAt = time.Now()
	t.UpdatedAt = time.Now()

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	s.logger.Info("revised thought",
		zap.String("session_id", t.ID),
		zap.String("thought_id", th.ID),
		zap.Int("revisions", th.Revisions),
	)
	span.SetAttributes(attribute.String("session_id", t.ID))
	return th, nil
}

// Branch forks an alternative line of thoughts from a parent thought.
func (s *service) Branch(ctx context.Context, req *BranchRequest) (*session.Branch, error) {
	ctx, span := s.tracer.Start(ctx, "thinking.branch")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	t, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if t.Status != session.StatusActive {
		return nil, session.ErrInvalidState
	}
	if _, ok := t.ThoughtByID(req.FromThoughtID); !ok {
		return nil, fmt.Errorf("parent thought %s: %w", req.FromThoughtID, session.ErrNotFound)
	}

	b := session.Branch{
		ID:            uuid.New().String(),
		Name:          req.Name,
		FromThoughtID: req.FromThoughtID,
		CreatedAt:     time.Now(),
	}
	t.Branches = append(t.Branches, b)
	t.UpdatedAt = time.Now()

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("session_id", t.ID),
		attribute.Int("branch_count", len(t.Branches)),
	)
	return &b, nil
}

// Progress reports counts and keyword-surfaced insights. Pure read.
func (s *service) Progress(ctx context.Context, id string) (*ProgressReport, error) {
	ctx, span := s.tracer.Start(ctx, "thinking.progress")
	defer span.End()

	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	report := &ProgressReport{
		SessionID:    t.ID,
		ThoughtCount: len(t.Thoughts),
		BranchCount:  len(t.Branches),
		Insights:     []string{},
		Concluded:    t.Conclusion != "",
	}
	for _, th := range t.Thoughts {
		report.Revisions += th.Revisions
		if insight, ok := extractInsight(th.Content); ok {
			report.Insights = append(report.Insights, insight)
		}
	}
	report.Overconfidence = report.Concluded && report.ThoughtCount < minThoughtsForConclusion

	span.SetAttributes(
		attribute.String("session_id", t.ID),
		attribute.Int("insight_count", len(report.Insights)),
	)
	return report, nil
}

// extractInsight surfaces a thought verbatim (truncated) when it
// contains one of the insight keywords.
func extractInsight(content string) (string, bool) {
	lower := strings.ToLower(content)
	for _, kw := range insightKeywords {
		if strings.Contains(lower, kw) {
			if len(content) > insightTruncateLen {
				return content[:insightTruncateLen] + "…", true
			}
			return content, true
		}
	}
	return "", false
}

// Conclude records the conclusion and completes the session.
func (s *service) Conclude(ctx context.Context, req *ConcludeRequest) (*session.Thinking, error) {
	ctx, span := s.tracer.Start(ctx, "thinking.conclude")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	t, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if t.Status != session.StatusActive {
		return nil, session.ErrInvalidState
	}

	t.Conclusion = req.Conclusion
	t.Status = session.StatusCompleted
	t.UpdatedAt = time.Now()

	if err := s.save(ctx, t); err != nil {
		return nil, err
	}

	if len(t.Thoughts) < minThoughtsForConclusion {
		s.logger.Warn("session concluded with few thoughts",
			zap.String("session_id", t.ID),
			zap.Int("thought_count", len(t.Thoughts)),
		)
	}
	s.logger.Info("concluded thinking session", zap.String("session_id", t.ID))
	span.SetAttributes(attribute.String("session_id", t.ID))
	return t, nil
}

// Close closes the service.
func (s *service) Close() error {
	return nil
}

func (s *service) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	verr := &session.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add("%s failed %q constraint", fe.Namespace(), fe.Tag())
	}
	return verr
}

func (s *service) load(ctx context.Context, id string) (*session.Thinking, error) {
	rec, err := s.sessions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, session.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if rec.Type != string(session.TypeThinking) {
		return nil, fmt.Errorf("session %s is not a thinking session: %w", id, session.ErrNotFound)
	}

	var t session.Thinking
	if err := json.Unmarshal(rec.Data, &t); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &t, nil
}

func (s *service) save(ctx context.Context, t *session.Thinking) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", t.ID, err)
	}

	rec := &store.Record{
		ID:        t.ID,
		Type:      string(session.TypeThinking),
		Status:    string(t.Status),
		Data:      data,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if err := s.sessions.Save(ctx, rec); err != nil {
		return fmt.Errorf("save session %s: %w", t.ID, err)
	}
	return nil
}
