package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/workflow"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// SchedulingService commits technicians and dates to tickets.
type SchedulingService struct {
	tickets    repository.TicketRepository
	accounts   repository.AccountRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// SchedulingDependencies bundles collaborators.
type SchedulingDependencies struct {
	TicketRepo  repository.TicketRepository
	AccountRepo repository.AccountRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Clock       func() time.Time
}

// NewSchedulingService creates the service.
func NewSchedulingService(deps SchedulingDependencies) *SchedulingService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &SchedulingService{
		tickets:    deps.TicketRepo,
		accounts:   deps.AccountRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// AssignTicket schedules a Pending ticket or re-schedules an Assigned one.
// Admin only. The technician is optional; when supplied it must be an active
// technician account.
func (s *SchedulingService) AssignTicket(ctx context.Context, principal *auth.Principal, ticketID string, input workflow.AssignInput) (*domain.Ticket, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	input.TechnicianID = workflow.NormalizeTechnician(input.TechnicianID)
	if input.TechnicianID != nil {
		technician, err := s.accounts.GetByID(ctx, *input.TechnicianID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": *input.TechnicianID})
			}
			return nil, apperrors.MapError(err)
		}
		if technician.Role != domain.RoleTechnician {
			return nil, apperrors.NewValidationError("account is not a technician", map[string]any{"technician_id": technician.ID})
		}
		if !technician.Active {
			return nil, apperrors.NewConflict("technician inactive", map[string]any{"technician_id": technician.ID})
		}
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}

	reassigned := ticket.Status == domain.TicketStatusAssigned
	oldTechnician := ticket.TechnicianID
	oldSchedule := ticket.ScheduledDate
	if err := workflow.Assign(ticket, input, s.now()); err != nil {
		return nil, mapWorkflowError(err)
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapWorkflowError(err)
	}

	if s.history != nil {
		entry := &domain.TicketHistory{
			TicketID:   ticket.ID,
			ChangeType: domain.ChangeTypeSchedule,
			OldValue: map[string]any{
				"technician_id":  oldTechnician,
				"scheduled_date": oldSchedule,
			},
			NewValue: map[string]any{
				"technician_id":  ticket.TechnicianID,
				"scheduled_date": ticket.ScheduledDate,
				"status":         ticket.Status,
			},
		}
		if principal.Account != nil {
			entry.ChangedByID = &principal.Account.ID
		}
		_ = s.history.Create(ctx, entry)
	}

	publishEvent(ctx, s.dispatcher, principal, events.Event{
		Type:     events.EventTicketScheduled,
		TicketID: ticket.ID,
		Payload: events.TicketScheduledPayload{
			TechnicianID:  ticket.TechnicianID,
			ScheduledDate: *ticket.ScheduledDate,
			Reassigned:    reassigned,
		},
	}, s.now)
	return ticket, nil
}
