package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/profpocket/pocket-api/internal/models"
	appErrors "github.com/profpocket/pocket-api/pkg/errors"
)

// ChangeLedger is the persistence surface required by SyncService.
type ChangeLedger interface {
	Append(ctx context.Context, rows []models.ChangeRow) error
	ListSince(ctx context.Context, userID string, since int64) ([]models.ChangeRow, error)
}

// SyncService implements the server half of the change-log protocol.
// The ledger is append-only: push never deduplicates, validates
// referential integrity or merges conflicting updates; the last write
// simply becomes the next row.
type SyncService struct {
	ledger  ChangeLedger
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewSyncService constructs a SyncService.
func NewSyncService(ledger ChangeLedger, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		ledger:  ledger,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	if now != nil {
		s.now = now
	}
	return s
}

// Push appends the client's pending changes to the user's ledger and
// returns the identifiers it accepted. Changes with an unknown entity or
// op are skipped, not rejected wholesale, so a partially valid batch
// still drains the valid part of the client queue.
func (s *SyncService) Push(ctx context.Context, userID string, req models.PushRequest) (*models.PushResponse, error) {
	accepted := make([]string, 0, len(req.Changes))
	rows := make([]models.ChangeRow, 0, len(req.Changes))
	createdAt := s.now().UTC()

	for _, change := range req.Changes {
		if !change.Entity.Valid() || !change.Op.Valid() || change.EntityID == "" || change.UpdatedAt <= 0 {
			s.logger.Warn("skipping malformed change",
				zap.String("entity", string(change.Entity)),
				zap.String("entity_id", change.EntityID),
				zap.String("op", string(change.Op)))
			continue
		}
		rows = append(rows, models.ChangeRow{
			ID:        uuid.NewString(),
			UserID:    userID,
			Entity:    string(change.Entity),
			EntityID:  change.EntityID,
			Op:        string(change.Op),
			Payload:   change.Payload,
			UpdatedAt: change.UpdatedAt,
			CreatedAt: createdAt,
		})
		accepted = append(accepted, change.AcceptedID())
	}

	if err := s.ledger.Append(ctx, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append changes")
	}

	if s.metrics != nil {
		s.metrics.AddChangesPushed(len(rows))
	}
	if s.cache != nil {
		// Stored entities changed, so any materialized report is stale.
		if err := s.cache.Invalidate(ctx, reportCachePattern(userID)); err != nil {
			s.logger.Warn("report cache invalidation failed", zap.Error(err))
		}
	}

	return &models.PushResponse{AcceptedIDs: accepted}, nil
}

// Pull returns every ledger row newer than the watermark plus the server
// clock. Clients advance their watermark to ServerNow, not to the last
// row's timestamp, so clock skew cannot make them re-request rows equal
// to the watermark under the strict > filter. The result is the complete
// backlog: a fresh device pulling from zero gets the whole ledger.
func (s *SyncService) Pull(ctx context.Context, userID string, since int64) (*models.PullResponse, error) {
	start := s.now()
	rows, err := s.ledger.ListSince(ctx, userID, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read ledger")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("sync_pull", time.Since(start))
		s.metrics.AddChangesPulled(len(rows))
	}

	changes := make([]models.PulledChange, 0, len(rows))
	for _, row := range rows {
		changes = append(changes, models.PulledChange{
			Entity:    models.EntityKind(row.Entity),
			EntityID:  row.EntityID,
			Op:        models.ChangeOp(row.Op),
			Payload:   row.Payload,
			UpdatedAt: row.UpdatedAt,
		})
	}

	return &models.PullResponse{
		Changes:   changes,
		ServerNow: s.now().UnixMilli(),
	}, nil
}

func reportCachePattern(userID string) string {
	return "report:" + userID + ":*"
}
