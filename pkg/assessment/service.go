package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/common/models"
	"github.com/riskwatch/platform/pkg/observability/metrics"
	"github.com/riskwatch/platform/pkg/patientapi"
	"github.com/riskwatch/platform/pkg/scoring"
	"gorm.io/datatypes"
)

// Event types published for finished runs.
const (
	EventRequested = "assessment.requested"
	EventCompleted = "assessment.completed"
	EventFailed    = "assessment.failed"

	eventSource = "riskwatch"
)

// PatientSource is the remote API as seen by the service.
type PatientSource interface {
	FetchAllPatients(ctx context.Context, limit, maxPages int) (*models.FetchResult, error)
	SubmitAssessment(ctx context.Context, req models.SubmitRequest) (*patientapi.SubmitResponse, error)
}

type Store interface {
	Create(ctx context.Context, run *Run) error
	Update(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	Recent(ctx context.Context, limit int) ([]Run, error)
	CleanupExpired(ctx context.Context, ttl time.Duration) error
}

type RunCache interface {
	Put(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	Latest(ctx context.Context) (*Run, error)
}

type Publisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

// Service runs assessments. Store, cache and publisher are optional; failures
// in them are logged and never fail a run.
type Service struct {
	source          PatientSource
	store           Store
	cache           RunCache
	publisher       Publisher
	defaultLimit    int
	defaultMaxPages int
	retention       time.Duration
	now             func() time.Time
}

type ServiceOption func(*Service)

func WithStore(store Store) ServiceOption {
	return func(s *Service) { s.store = store }
}

func WithCache(cache RunCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithDefaults(limit, maxPages int) ServiceOption {
	return func(s *Service) {
		s.defaultLimit = limit
		s.defaultMaxPages = maxPages
	}
}

func WithRetention(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.retention = ttl }
}

func NewService(source PatientSource, opts ...ServiceOption) *Service {
	s := &Service{
		source:          source,
		defaultLimit:    5,
		defaultMaxPages: 10,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches every patient page, classifies the records and, when requested,
// submits the alert sets. The returned run is populated even when err != nil.
func (s *Service) Run(ctx context.Context, req Request) (*Run, error) {
	if req.Limit == 0 {
		req.Limit = s.defaultLimit
	}
	if req.MaxPages < 1 {
		req.MaxPages = s.defaultMaxPages
	}

	run := &Run{
		ID:          uuid.New().String(),
		Status:      StatusRunning,
		Limit:       patientapi.ClampLimit(req.Limit),
		MaxPages:    req.MaxPages,
		RequestedBy: req.RequestedBy,
		Alerts:      datatypes.NewJSONType(models.AlertSets{}),
	}
	log := logger.Log.WithField("run_id", run.ID)

	if s.store != nil {
		if err := s.store.Create(ctx, run); err != nil {
			log.WithError(err).Warn("failed to persist assessment run")
		}
	}

	result, err := s.source.FetchAllPatients(ctx, run.Limit, run.MaxPages)
	if err != nil {
		return run, s.fail(ctx, run, fmt.Errorf("fetching patients: %w", err))
	}

	sets := scoring.Classify(result.Records)
	run.PagesFetched = result.PagesFetched
	run.TotalPages = result.TotalPages
	run.RecordCount = len(result.Records)
	run.TotalPatientsSeen = sets.TotalPatientsSeen
	run.Alerts = datatypes.NewJSONType(sets)
	metrics.ObserveAlertSets(len(sets.HighRisk), len(sets.Fever), len(sets.DataQualityIssues), sets.TotalPatientsSeen)

	if result.Partial() {
		log.WithFields(map[string]interface{}{
			"pages_fetched": result.PagesFetched,
			"total_pages":   result.TotalPages,
		}).Warn("assessment based on partial patient list")
	}

	if req.Submit {
		resp, err := s.source.SubmitAssessment(ctx, sets.SubmitRequest())
		if resp != nil {
			run.SubmissionStatus = resp.StatusCode
			run.SubmissionResponse = string(resp.Body)
		}
		if err != nil {
			return run, s.fail(ctx, run, fmt.Errorf("submitting assessment: %w", err))
		}
		run.Submitted = true
	}

	completed := s.now().UTC()
	run.Status = StatusCompleted
	run.CompletedAt = &completed
	s.finish(ctx, run, EventCompleted)

	log.WithFields(map[string]interface{}{
		"patients":    sets.TotalPatientsSeen,
		"high_risk":   len(sets.HighRisk),
		"fever":       len(sets.Fever),
		"data_issues": len(sets.DataQualityIssues),
		"submitted":   run.Submitted,
	}).Info("assessment run completed")

	return run, nil
}

func (s *Service) fail(ctx context.Context, run *Run, err error) error {
	completed := s.now().UTC()
	run.Status = StatusFailed
	run.Error = err.Error()
	run.CompletedAt = &completed
	s.finish(ctx, run, EventFailed)

	logger.Log.WithError(err).WithField("run_id", run.ID).Error("assessment run failed")
	return err
}

func (s *Service) finish(ctx context.Context, run *Run, eventType string) {
	metrics.RecordRun(run.Status)
	log := logger.Log.WithField("run_id", run.ID)

	if s.store != nil {
		if err := s.store.Update(ctx, run); err != nil {
			log.WithError(err).Warn("failed to update assessment run")
		}
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, run); err != nil {
			log.WithError(err).Warn("failed to cache assessment run")
		}
	}
	if s.publisher != nil {
		sets := run.AlertSets()
		payload := map[string]interface{}{
			"run_id":              run.ID,
			"status":              run.Status,
			"pages_fetched":       run.PagesFetched,
			"total_pages":         run.TotalPages,
			"total_patients_seen": run.TotalPatientsSeen,
			"high_risk_patients":  sets.HighRisk,
			"fever_patients":      sets.Fever,
			"data_quality_issues": sets.DataQualityIssues,
			"submitted":           run.Submitted,
			"error":               run.Error,
		}
		if err := s.publisher.PublishEvent(ctx, eventType, eventSource, payload); err != nil {
			log.WithError(err).Warn("failed to publish assessment event")
		}
	}
}

// Get looks a run up in the cache first and the store second.
func (s *Service) Get(ctx context.Context, id string) (*Run, error) {
	if s.cache != nil {
		run, err := s.cache.Get(ctx, id)
		if err == nil {
			return run, nil
		}
		if !errors.Is(err, ErrNotFound) {
			logger.Log.WithError(err).WithField("run_id", id).Warn("assessment cache lookup failed")
		}
	}
	if s.store != nil {
		return s.store.Get(ctx, id)
	}
	return nil, ErrNotFound
}

// Latest returns the most recently finished run known to the cache.
func (s *Service) Latest(ctx context.Context) (*Run, error) {
	if s.cache == nil {
		return nil, ErrNotFound
	}
	return s.cache.Latest(ctx)
}

// Recent lists stored runs, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Run, error) {
	if s.store == nil {
		return []Run{}, nil
	}
	return s.store.Recent(ctx, limit)
}

// Cleanup drops stored runs older than the retention window.
func (s *Service) Cleanup(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.CleanupExpired(ctx, s.retention)
}
