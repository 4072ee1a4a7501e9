package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/profpocket/pocket-api/internal/insight"
	"github.com/profpocket/pocket-api/internal/models"
	appErrors "github.com/profpocket/pocket-api/pkg/errors"
)

// LedgerReader fetches a user's full change ledger.
type LedgerReader interface {
	ListAll(ctx context.Context, userID string) ([]models.ChangeRow, error)
}

// InsightService serves the optional online insight endpoints by
// materializing entity snapshots from the change ledger and running the
// same engine the client runs locally. The boolean results indicate
// whether data originated from cache.
type InsightService struct {
	ledger  LedgerReader
	engine  *insight.Engine
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewInsightService constructs an InsightService.
func NewInsightService(ledger LedgerReader, engine *insight.Engine, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *InsightService {
	if engine == nil {
		engine = insight.New(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightService{ledger: ledger, engine: engine, cache: cache, metrics: metrics, logger: logger}
}

// Project runs the smoothed score projection. Pure passthrough; nothing
// to cache.
func (s *InsightService) Project(req models.ProjectionRequest) models.ProjectionResult {
	return insight.Project(req.Evolutions)
}

// ClassReport materializes the user's entities and summarises one class.
func (s *InsightService) ClassReport(ctx context.Context, userID, classID string) (*models.ClassReport, bool, error) {
	cacheKey := "report:" + userID + ":" + classID
	var cached models.ClassReport
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	rows, err := s.ledger.ListAll(ctx, userID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read ledger")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("insight_materialize", time.Since(start))
	}

	snap := materialize(rows)
	class, ok := snap.classes[classID]
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "class not found in ledger")
	}

	notes := make([]models.LessonLog, 0)
	for _, log := range snap.logs {
		if log.ClassID == classID {
			notes = append(notes, log)
		}
	}
	students := make([]models.Student, 0, len(snap.students))
	for _, st := range snap.students {
		students = append(students, st)
	}

	report := s.engine.ClassReport(classID, class.Name, notes, students)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, report, 0); err != nil {
			s.logger.Warn("cache class report", zap.Error(err))
		}
	}
	return &report, false, nil
}

// snapshot is the fold of a ledger: the latest upsert per entity id,
// minus deletes.
type snapshot struct {
	classes  map[string]models.ClassGroup
	students map[string]models.Student
	logs     map[string]models.LessonLog
}

func materialize(rows []models.ChangeRow) snapshot {
	snap := snapshot{
		classes:  map[string]models.ClassGroup{},
		students: map[string]models.Student{},
		logs:     map[string]models.LessonLog{},
	}

	for _, row := range rows {
		switch models.EntityKind(row.Entity) {
		case models.EntityClass:
			applyChange(snap.classes, row)
		case models.EntityStudent:
			applyChange(snap.students, row)
		case models.EntityLessonLog:
			applyChange(snap.logs, row)
		}
	}
	return snap
}

func applyChange[T any](dest map[string]T, row models.ChangeRow) {
	if models.ChangeOp(row.Op) == models.OpDelete {
		delete(dest, row.EntityID)
		return
	}
	var value T
	if err := json.Unmarshal(row.Payload, &value); err != nil {
		return
	}
	dest[row.EntityID] = value
}
