package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/planner"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// PlannerService serves the read-side calendar and department views. Month
// views are cached in redis and invalidated whenever any ticket mutates;
// the projections themselves live in the planner package.
type PlannerService struct {
	tickets  repository.TicketRepository
	assets   repository.AssetRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewPlannerService creates the service. cache may be nil, in which case
// every view is computed from the repository.
func NewPlannerService(tickets repository.TicketRepository, assets repository.AssetRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *PlannerService {
	return &PlannerService{
		tickets:  tickets,
		assets:   assets,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// RegisterInvalidationHandlers drops cached month views on every ticket
// mutation event. Invalidation is coarse (flush all cached months): ticket
// mutations are rare next to planner reads.
func (s *PlannerService) RegisterInvalidationHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	types := []events.EventType{
		events.EventTicketCreated,
		events.EventTicketScheduled,
		events.EventTicketProgressRecorded,
		events.EventTicketCompleted,
		events.EventTicketCanceled,
		events.EventTicketDeleted,
	}
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, s.invalidate)
	}
}

func (s *PlannerService) invalidate(ctx context.Context, _ events.Event) error {
	if s.cache == nil {
		return nil
	}
	iter := s.cache.Scan(ctx, 0, monthViewKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn("planner cache delete failed", zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("planner cache scan failed", zap.Error(err))
	}
	return nil
}

const monthViewKeyPrefix = "planner:view:"

func monthViewKey(year int, month time.Month) string {
	return fmt.Sprintf("%s%04d-%02d", monthViewKeyPrefix, year, int(month))
}

// MonthView returns the calendar projection for one month, cached when redis
// is available.
func (s *PlannerService) MonthView(ctx context.Context, year int, month time.Month) (*planner.MonthView, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.NewValidationError("month out of range", map[string]any{"month": int(month)})
	}

	key := monthViewKey(year, month)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var view planner.MonthView
			if err := json.Unmarshal(cached, &view); err == nil {
				return &view, nil
			}
			// Corrupt entry; fall through and recompute.
			_ = s.cache.Del(ctx, key).Err()
		}
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Nanosecond)
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		ScheduledFrom: &from,
		ScheduledTo:   &to,
		Limit:         1000,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	view := planner.ProjectMonth(tickets, year, month)
	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("planner cache set failed", zap.Error(err))
			}
		}
	}
	return &view, nil
}

// DepartmentGrid returns assets grouped by department with open ticket
// counts.
func (s *PlannerService) DepartmentGrid(ctx context.Context) ([]planner.DepartmentGroup, error) {
	assets, err := s.assets.List(ctx, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repository.TicketFilter{
		Statuses: []domain.TicketStatus{
			domain.TicketStatusPending,
			domain.TicketStatusAssigned,
			domain.TicketStatusInProgress,
		},
		Limit: 1000,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return planner.GroupByDepartment(assets, tickets), nil
}
