package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/nutriwise/backend/internal/archive"
	"github.com/pageza/nutriwise/backend/internal/extract"
	"github.com/pageza/nutriwise/backend/internal/logging"
	"github.com/pageza/nutriwise/backend/internal/models"
	"github.com/pageza/nutriwise/backend/internal/oracle"
	"github.com/pageza/nutriwise/backend/internal/prompt"
	"github.com/pageza/nutriwise/backend/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	msgAnalysisFailed = "Failed to analyze food item. Please try again later."
	msgMealPlanFailed = "Failed to generate meal plan. Please try again later."
)

// Generation settings per request type.
var (
	analysisOptions = []oracle.CallOption{oracle.WithTemperature(0.2), oracle.WithMaxOutputTokens(1024)}
	mealPlanOptions = []oracle.CallOption{oracle.WithTemperature(0.4), oracle.WithMaxOutputTokens(8192)}
)

// DietService runs the prompt, oracle, extraction and history steps for
// both food analysis and meal planning.
type DietService struct {
	oracle    oracle.Client
	extractor *extract.Extractor
	history   HistoryStore
	archive   archive.Archive
	logger    *zap.Logger
	timeout   time.Duration

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	metrics        *dietMetrics
}

var (
	_ NutritionService = (*DietService)(nil)
	_ MealPlanService  = (*DietService)(nil)
)

type DietOption func(*DietService)

// WithArchive stores raw text that failed extraction.
func WithArchive(a archive.Archive) DietOption {
	return func(s *DietService) { s.archive = a }
}

// WithTimeout bounds each oracle call.
func WithTimeout(d time.Duration) DietOption {
	return func(s *DietService) { s.timeout = d }
}

func WithMeterProvider(mp metric.MeterProvider) DietOption {
	return func(s *DietService) { s.meterProvider = mp }
}

func WithTracerProvider(tp trace.TracerProvider) DietOption {
	return func(s *DietService) { s.tracerProvider = tp }
}

func NewDietService(client oracle.Client, store HistoryStore, logger *zap.Logger, opts ...DietOption) (*DietService, error) {
	s := &DietService{
		oracle:         client,
		history:        store,
		archive:        archive.Nop{},
		logger:         logger.Named("diet"),
		meterProvider:  otel.GetMeterProvider(),
		tracerProvider: otel.GetTracerProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.extractor = extract.New(s.logger)
	s.tracer = s.tracerProvider.Tracer(telemetry.InstrumentationName)

	m, err := newDietMetrics(s.meterProvider.Meter(telemetry.InstrumentationName))
	if err != nil {
		return nil, err
	}
	s.metrics = m
	return s, nil
}

// Analyze asks the oracle for the nutrition facts of foodName.
func (s *DietService) Analyze(ctx context.Context, userID uuid.UUID, foodName string) (*extract.NutritionRecord, *extract.Failure) {
	text, err := prompt.Nutrition(foodName)
	if err != nil {
		return nil, extract.NewFailure(extract.InputFailure, "Food name is required", err.Error())
	}
	food := prompt.NormalizeFood(foodName)

	return runDiet(ctx, s, userID, dietRequest{
		promptType: models.PromptTypeFoodAnalysis,
		shape:      extract.ShapeNutrition,
		subject:    food,
		text:       text,
		opts:       analysisOptions,
		message:    msgAnalysisFailed,
	}, func(raw string) extract.Result[extract.NutritionRecord] {
		return s.extractor.Nutrition(raw, food)
	})
}

// GenerateMealPlan asks the oracle for a weekly plan matching prefs.
func (s *DietService) GenerateMealPlan(ctx context.Context, userID uuid.UUID, prefs prompt.Preferences) (*extract.MealPlan, *extract.Failure) {
	text, err := prompt.MealPlan(prefs)
	if err != nil {
		return nil, extract.NewFailure(extract.InputFailure, msgMealPlanFailed, err.Error())
	}

	return runDiet(ctx, s, userID, dietRequest{
		promptType: models.PromptTypeMealPlan,
		shape:      extract.ShapeMealPlan,
		text:       text,
		opts:       mealPlanOptions,
		message:    msgMealPlanFailed,
	}, s.extractor.MealPlan)
}

type dietRequest struct {
	promptType models.PromptType
	shape      extract.Shape
	subject    string
	text       string
	opts       []oracle.CallOption
	message    string
}

func runDiet[T any](ctx context.Context, s *DietService, userID uuid.UUID, req dietRequest, extractFn func(string) extract.Result[T]) (*T, *extract.Failure) {
	shapeAttr := attribute.String("shape", string(req.shape))
	ctx, span := s.tracer.Start(ctx, "diet."+string(req.shape),
		trace.WithAttributes(shapeAttr, attribute.String("user.id", userID.String())))
	defer span.End()
	log := logging.For(ctx, s.logger).With(zap.String("shape", string(req.shape)), zap.String("user_id", userID.String()))

	// History is best effort: a failed insert must not block the answer.
	rec, err := s.history.Create(ctx, userID, req.promptType, req.subject, req.text)
	if err != nil {
		log.Warn("failed to record prompt", zap.Error(err))
		rec = nil
	}

	resp, err := s.generate(ctx, req, shapeAttr)
	if err != nil {
		f := oracle.TransportFailure(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, f.Message)
		s.metrics.failures.Add(ctx, 1, metric.WithAttributes(shapeAttr))
		s.recordOutcome(ctx, shapeAttr, extract.TransportFailure.String())
		log.Error("oracle request failed", zap.Error(err))
		s.finish(ctx, log, rec, userID, f.JSON(), models.PromptStatusFailed)
		return nil, f
	}
	span.SetAttributes(attribute.Bool("oracle.cached", resp.Cached), attribute.Int("oracle.total_tokens", resp.Usage.TotalTokens))

	res := extractFn(resp.Text)
	if !res.OK() {
		f := res.Failure
		span.SetStatus(codes.Error, f.Message)
		s.recordOutcome(ctx, shapeAttr, f.Kind.String())
		log.Warn("extraction failed", zap.String("kind", f.Kind.String()), zap.String("message", f.Message))
		s.finish(ctx, log, rec, userID, f.JSON(), models.PromptStatusFailed)
		s.archiveFailure(ctx, log, rec, userID, req.shape, resp.Text, f)
		if inv, ok := s.oracle.(oracle.Invalidator); ok {
			if err := inv.Invalidate(ctx, req.text, req.opts...); err != nil {
				log.Warn("failed to drop cached response", zap.Error(err))
			}
		}
		return nil, f.WithMessage(req.message)
	}

	s.recordOutcome(ctx, shapeAttr, "ok")
	s.finish(ctx, log, rec, userID, string(res.Raw), models.PromptStatusCompleted)
	return res.Value, nil
}

func (s *DietService) generate(ctx context.Context, req dietRequest, shapeAttr attribute.KeyValue) (*oracle.Response, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.oracle.Generate(ctx, req.text, req.opts...)
	s.metrics.requests.Add(ctx, 1, metric.WithAttributes(shapeAttr))
	s.metrics.latency.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(shapeAttr))
	return resp, err
}

func (s *DietService) recordOutcome(ctx context.Context, shapeAttr attribute.KeyValue, outcome string) {
	s.metrics.outcomes.Add(ctx, 1, metric.WithAttributes(shapeAttr, attribute.String("outcome", outcome)))
}

func (s *DietService) finish(ctx context.Context, log *zap.Logger, rec *models.Prompt, userID uuid.UUID, response string, status models.PromptStatus) {
	if rec == nil {
		return
	}
	if err := s.history.UpdateResponse(ctx, rec.ID, userID, response, status); err != nil {
		log.Warn("failed to record response", zap.String("prompt_id", rec.ID.String()), zap.Error(err))
	}
}

func (s *DietService) archiveFailure(ctx context.Context, log *zap.Logger, rec *models.Prompt, userID uuid.UUID, shape extract.Shape, raw string, f *extract.Failure) {
	entry := archive.FailedExtraction{UserID: userID, Shape: shape, Raw: raw, Failure: f}
	if rec != nil {
		entry.PromptID = rec.ID
	}
	key, err := s.archive.Put(ctx, entry)
	if err != nil {
		log.Warn("failed to archive raw response", zap.Error(err))
		return
	}
	if key != "" {
		log.Debug("archived raw response", zap.String("key", key))
	}
}
