package decision

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

const instrumentationName = "github.com/fyrsmithlabs/decisiond/internal/decision"

// Service provides decision session operations.
type Service interface {
	// Start creates a new decision session.
	Start(ctx context.Context, req *StartRequest) (*session.Decision, error)

	// Get retrieves a session by id.
	Get(ctx context.Context, id string) (*session.Decision, error)

	// List returns summaries of stored sessions, newest first.
	List(ctx context.Context, req *ListRequest) ([]SessionSummary, error)

	// AddCriteria appends criteria to an active session.
	AddCriteria(ctx context.Context, req *AddCriteriaRequest) (*session.Decision, error)

	// AddOption appends a candidate option to an active session.
	AddOption(ctx context.Context, req *AddOptionRequest) (*session.Decision, error)

	// Evaluate scores one option. Re-evaluating an option replaces
	// its prior evaluation.
	Evaluate(ctx context.Context, req *EvaluateRequest) (*session.Evaluation, error)

	// Analyze derives ranking, confidence, key factors, and risks
	// from the current snapshot. Pure read.
	Analyze(ctx context.Context, req *AnalyzeRequest) (*Analysis, error)

	// Recommend gates analysis on a confidence threshold and, on
	// success, completes the session. Irreversible.
	Recommend(ctx context.Context, req *RecommendRequest) (*Recommendation, error)

	// ValidateLogic runs the rule-based logic validator. Pure read.
	ValidateLogic(ctx context.Context, req *ValidateLogicRequest) (*LogicReport, error)

	// AnalyzeBias runs the heuristic bias detectors. Pure read.
	AnalyzeBias(ctx context.Context, req *AnalyzeBiasRequest) (*BiasReport, error)

	// AssessRisks runs the rule-based risk assessment. Pure read.
	AssessRisks(ctx context.Context, req *AssessRisksRequest) (*RiskReport, error)

	// GenerateAlternatives returns archetype alternatives.
	GenerateAlternatives(ctx context.Context, req *GenerateAlternativesRequest) ([]Alternative, error)

	// Comprehensive bundles all analyzers over one snapshot.
	Comprehensive(ctx context.Context, req *ComprehensiveRequest) (*ComprehensiveReport, error)

	// Close closes the service.
	Close() error
}

// Config configures the decision service.
type Config struct {
	// MaxOptions caps options per session (default: 100).
	MaxOptions int

	// MaxCriteria caps criteria per session (default: 50).
	MaxCriteria int

	// SessionTTL is the soft expiry reported by the logic validator
	// (default: 24h). Expired sessions are flagged, not deleted.
	SessionTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxOptions:  100,
		MaxCriteria: 50,
		SessionTTL:  24 * time.Hour,
	}
}

// AnalysisCache memoizes comprehensive reports per session revision.
type AnalysisCache interface {
	Get(key string) (*ComprehensiveReport, bool)
	Add(key string, report *ComprehensiveReport)
}

type service struct {
	config   *Config
	sessions store.Store
	cache    AnalysisCache
	logger   *zap.Logger
	validate *validator.Validate

	tracer           trace.Tracer
	meter            metric.Meter
	evaluateCounter  metric.Int64Counter
	recommendCounter metric.Int64Counter
}

// NewService creates a decision service backed by the given store.
// The cache is optional; pass nil to disable comprehensive-report
// memoization.
func NewService(cfg *Config, sessions store.Store, cache AnalysisCache, logger *zap.Logger) (Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &service{
		config:   cfg,
		sessions: sessions,
		cache:    cache,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		tracer:   otel.Tracer(instrumentationName),
		meter:    otel.Meter(instrumentationName),
	}
	s.initMetrics()

	return s, nil
}

func (s *service) initMetrics() {
	var err error

	s.evaluateCounter, err = s.meter.Int64Counter(
		"decisiond.decision.evaluations_total",
		metric.WithDescription("Total number of option evaluations recorded"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		s.logger.Warn("failed to create evaluation counter", zap.Error(err))
	}

	s.recommendCounter, err = s.meter.Int64Counter(
		"decisiond.decision.recommendations_total",
		metric.WithDescription("Total number of accepted recommendations"),
		metric.WithUnit("{recommendation}"),
	)
	if err != nil {
		s.logger.Warn("failed to create recommendation counter", zap.Error(err))
	}
}

// Start creates a new decision session.
func (s *service) Start(ctx context.Context, req *StartRequest) (*session.Decision, error) {
	ctx, span := s.tracer.Start(ctx, "decision.start")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now()
	d := &session.Decision{
		ID:          uuid.New().String(),
		Context:     req.Context,
		Description: req.Description,
		Deadline:    req.Deadline,
		Criteria:    []session.Criterion{},
		Options:     []session.Option{},
		Evaluations: []session.Evaluation{},
		Status:      session.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("session_id", d.ID))
	s.logger.Info("started decision session",
		zap.String("id", d.ID),
		zap.String("context", d.Context),
	)
	return d, nil
}

// Get retrieves a session by id.
func (s *service) Get(ctx context.Context, id string) (*session.Decision, error) {
	ctx, span := s.tracer.Start(ctx, "decision.get")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", id))
	return s.load(ctx, id)
}

// List returns summaries of stored sessions, newest first.
func (s *service) List(ctx context.Context, req *ListRequest) ([]SessionSummary, error) {
	ctx, span := s.tracer.Start(ctx, "decision.list")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	recs, err := s.sessions.List(ctx, store.Filter{Type: req.Type, Status: req.Status})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]SessionSummary, 0, len(recs))
	for _, rec := range recs {
		sum := SessionSummary{
			ID:        rec.ID,
			Type:      rec.Type,
			Status:    rec.Status,
			CreatedAt: rec.CreatedAt.Format(time.RFC3339),
			UpdatedAt: rec.UpdatedAt.Format(time.RFC3339),
		}
		if rec.Type == string(session.TypeDecision) {
			var d session.Decision
			if err := json.Unmarshal(rec.Data, &d); err == nil {
				sum.Context = d.Context
			}
		}
		out = append(out, sum)
	}

	span.SetAttributes(attribute.Int("result_count", len(out)))
	return out, nil
}

// AddCriteria appends criteria to an active session.
func (s *service) AddCriteria(ctx context.Context, req *AddCriteriaRequest) (*session.Decision, error) {
	ctx, span := s.tracer.Start(ctx, "decision.add_criteria")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if d.Status == session.StatusCompleted {
		return nil, session.ErrInvalidState
	}

	verr := &session.ValidationError{}
	if len(d.Criteria)+len(req.Criteria) > s.config.MaxCriteria {
		verr.Add("criteria limit exceeded (max %d)", s.config.MaxCriteria)
	}
	for i, in := range req.Criteria {
		if d.HasCriterionNamed(in.Name) {
			verr.Add("duplicate criterion name %q", in.Name)
			continue
		}
		// Duplicates inside one request count too.
		for j := 0; j < i; j++ {
			if strings.EqualFold(req.Criteria[j].Name, in.Name) {
				verr.Add("duplicate criterion name %q in request", in.Name)
			}
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	for _, in := range req.Criteria {
		d.Criteria = append(d.Criteria, session.Criterion{
			ID:          uuid.New().String(),
			Name:        in.Name,
			Description: in.Description,
			Weight:      in.Weight,
			Type:        session.CriterionType(in.Type),
		})
	}
	d.UpdatedAt = time.Now()

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	if sum := d.WeightSum(); sum < 0.9 || sum > 1.1 {
		s.logger.Warn("criteria weights do not sum to 1.0",
			zap.String("session_id", d.ID),
			zap.Float64("weight_sum", sum),
		)
	}

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.Int("criteria_count", len(d.Criteria)),
	)
	return d, nil
}

// AddOption appends a candidate option to an active session.
func (s *service) AddOption(ctx context.Context, req *AddOptionRequest) (*session.Decision, error) {
	ctx, span := s.tracer.Start(ctx, "decision.add_option")
	defer span.End()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	d, err := s.load(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if d.Status == session.StatusCompleted {
		return nil, session.ErrInvalidState
	}
	if len(d.Options) >= s.config.MaxOptions {
		verr := &session.ValidationError{}
		verr.Add("option limit exceeded (max %d)", s.config.MaxOptions)
		return nil, verr
	}

	d.Options = append(d.Options, session.Option{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Description:   req.Description,
		Pros:          req.Pros,
		Cons:          req.Cons,
		Risks:         req.Risks,
		EstimatedCost: req.EstimatedCost,
		EstimatedTime: req.EstimatedTime,
	})
	d.UpdatedAt = time.Now()

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("session_id", d.ID),
		attribute.Int("option_count", len(d.Options)),
	)
	return d, nil
}

// Close closes the service.
func (s *service) Close() error {
	return nil
}

// validateRequest maps validator violations into a ValidationError so
// callers see every field problem at once.
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

// load fetches and decodes a decision session.
func (s *service) load(ctx context.Context, id string) (*session.Decision, error) {
	rec, err := s.sessions.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, session.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if rec.Type != string(session.TypeDecision) {
		return nil, fmt.Errorf("session %s is not a decision session: %w", id, session.ErrNotFound)
	}

	var d session.Decision
	if err := json.Unmarshal(rec.Data, &d); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &d, nil
}

// save encodes and persists a decision session. Last write wins.
func (s *service) save(ctx context.Context, d *session.Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", d.ID, err)
	}

	rec := &store.Record{
		ID:        d.ID,
		Type:      string(session.TypeDecision),
		Status:    string(d.Status),
		Data:      data,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if err := s.sessions.Save(ctx, rec); err != nil {
		return fmt.Errorf("save session %s: %w", d.ID, err)
	}
	return nil
}

// revisionKey keys cached analysis by session id and update time, so a
// stale report is never served after a mutation.
func revisionKey(d *session.Decision) string {
	return d.ID + "@" + d.UpdatedAt.UTC().Format(time.RFC3339Nano)
}
