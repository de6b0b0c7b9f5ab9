package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
	"github.com/spec-kit/maintenance-service/internal/workflow"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// TicketService coordinates the maintenance ticket lifecycle.
type TicketService struct {
	tickets    repository.TicketRepository
	assets     repository.AssetRepository
	accounts   repository.AccountRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	AssetRepo   repository.AssetRepository
	AccountRepo repository.AccountRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
	Clock       func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	AssetID            string
	TroubleDescription string
	Priority           domain.TicketPriority
	ProblemImage       *string
}

// TicketListInput describes listing parameters before principal scoping.
type TicketListInput struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	SearchTerm *string
	Page       int
	PageSize   int
}

// TicketPage is the single paginated envelope for ticket listings.
type TicketPage struct {
	Items      []domain.Ticket
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		assets:     deps.AssetRepo,
		accounts:   deps.AccountRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CreateTicket registers a new Pending ticket reported by the caller.
func (s *TicketService) CreateTicket(ctx context.Context, principal *auth.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	if principal == nil || principal.Account == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if strings.TrimSpace(input.TroubleDescription) == "" {
		return nil, apperrors.NewMissingField("trouble description is required", map[string]any{"field": "trouble_description"})
	}
	asset, err := s.assets.GetByID(ctx, input.AssetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("asset", map[string]any{"asset_id": input.AssetID})
		}
		return nil, apperrors.MapError(err)
	}
	if !asset.Active {
		return nil, apperrors.NewConflict("asset inactive", map[string]any{"asset_id": asset.ID})
	}

	ticket := &domain.Ticket{
		TicketNumber:       generateTicketNumber(),
		Status:             domain.TicketStatusPending,
		Priority:           input.Priority,
		TroubleDescription: strings.TrimSpace(input.TroubleDescription),
		EmployeeID:         principal.Account.ID,
		AssetID:            asset.ID,
		ProblemImage:       input.ProblemImage,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.recordHistory(ctx, principal, ticket.ID, domain.ChangeTypeCreated, nil, map[string]any{
		"ticket_number": ticket.TicketNumber,
		"status":        ticket.Status,
	})
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			AssetID:      ticket.AssetID,
			EmployeeID:   ticket.EmployeeID,
			Priority:     ticket.Priority,
		},
	})
	return ticket, nil
}

// ListTickets returns one page of tickets visible to the caller.
// Technicians see tickets assigned to them, employees their own reports,
// admins everything.
func (s *TicketService) ListTickets(ctx context.Context, principal *auth.Principal, input TicketListInput) (*TicketPage, error) {
	if principal == nil || principal.Account == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	filter := repository.TicketFilter{
		Statuses:   input.Statuses,
		Priorities: input.Priorities,
		SearchTerm: input.SearchTerm,
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	scopeFilter(&filter, principal)

	total, err := s.tickets.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	items, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}
	return &TicketPage{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// GetTicket fetches a ticket ensuring the caller may see it.
func (s *TicketService) GetTicket(ctx context.Context, principal *auth.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canAccessTicket(principal, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// RecordProgress applies technician findings, moving the ticket to
// In_Progress (or keeping it there on updates).
func (s *TicketService) RecordProgress(ctx context.Context, principal *auth.Principal, ticketID string, input workflow.ProgressInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireTechnicianOnTicket(principal, ticket); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if err := workflow.Progress(ticket, input, s.now()); err != nil {
		return nil, mapWorkflowError(err)
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapWorkflowError(err)
	}
	s.recordHistory(ctx, principal, ticket.ID, domain.ChangeTypeProgress,
		map[string]any{"status": oldStatus},
		map[string]any{"status": ticket.Status, "analysis_description": ticket.AnalysisDescription})
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketProgressRecorded,
		TicketID: ticket.ID,
		Payload: events.TicketProgressRecordedPayload{
			TechnicianID:    ticket.TechnicianID,
			ActualCheckDate: *ticket.ActualCheckDate,
			HasAction:       ticket.HasAction(),
		},
	})
	return ticket, nil
}

// CloseTicket completes an In_Progress ticket.
func (s *TicketService) CloseTicket(ctx context.Context, principal *auth.Principal, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := requireTechnicianOnTicket(principal, ticket); err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if err := workflow.Close(ticket, s.now()); err != nil {
		return nil, mapWorkflowError(err)
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapWorkflowError(err)
	}
	s.recordHistory(ctx, principal, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": ticket.Status, "completed_date": ticket.CompletedDate})
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketCompleted,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// CancelTicket aborts any non-terminal ticket. Admin only.
func (s *TicketService) CancelTicket(ctx context.Context, principal *auth.Principal, ticketID string) (*domain.Ticket, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	if err := workflow.Cancel(ticket, s.now()); err != nil {
		return nil, mapWorkflowError(err)
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, mapWorkflowError(err)
	}
	s.recordHistory(ctx, principal, ticket.ID, domain.ChangeTypeStatus,
		map[string]any{"status": oldStatus},
		map[string]any{"status": ticket.Status})
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketCanceled,
		TicketID: ticket.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// DeleteTicket removes an unscheduled ticket. A ticket with a committed
// schedule is refused so planned technician work never silently vanishes.
func (s *TicketService) DeleteTicket(ctx context.Context, principal *auth.Principal, ticketID string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := workflow.CanDelete(ticket); err != nil {
		return mapWorkflowError(err)
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.recordHistory(ctx, principal, ticket.ID, domain.ChangeTypeDeleted,
		map[string]any{"status": ticket.Status}, nil)
	s.publishEvent(ctx, principal, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Payload:  events.TicketDeletedPayload{TicketNumber: ticket.TicketNumber},
	})
	return nil
}

// ListHistory returns the audit trail for a ticket the caller may see.
func (s *TicketService) ListHistory(ctx context.Context, principal *auth.Principal, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !canAccessTicket(principal, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	entries, err := s.history.ListByTicket(ctx, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) recordHistory(ctx context.Context, principal *auth.Principal, ticketID string, changeType domain.TicketChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	entry := &domain.TicketHistory{
		TicketID:   ticketID,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if principal != nil && principal.Account != nil {
		entry.ChangedByID = &principal.Account.ID
	}
	_ = s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, principal *auth.Principal, event events.Event) {
	publishEvent(ctx, s.dispatcher, principal, event, s.now)
}

// scopeFilter narrows a listing filter to what the principal may see.
func scopeFilter(filter *repository.TicketFilter, principal *auth.Principal) {
	switch principal.Role() {
	case domain.RoleAdmin:
	case domain.RoleTechnician:
		filter.TechnicianID = &principal.Account.ID
	default:
		filter.EmployeeID = &principal.Account.ID
	}
}

func canAccessTicket(principal *auth.Principal, ticket *domain.Ticket) bool {
	if principal == nil || principal.Account == nil {
		return false
	}
	switch principal.Account.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleTechnician:
		return ticket.TechnicianID != nil && *ticket.TechnicianID == principal.Account.ID
	default:
		return ticket.EmployeeID == principal.Account.ID
	}
}

func requireAdmin(principal *auth.Principal) error {
	if principal == nil || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if !principal.IsAdmin() {
		return apperrors.NewForbidden("administrator role required")
	}
	return nil
}

// requireTechnicianOnTicket allows the assigned technician or an admin.
func requireTechnicianOnTicket(principal *auth.Principal, ticket *domain.Ticket) error {
	if principal == nil || principal.Account == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if principal.IsAdmin() {
		return nil
	}
	if principal.Account.Role != domain.RoleTechnician {
		return apperrors.NewForbidden("technician role required")
	}
	if ticket.TechnicianID == nil || *ticket.TechnicianID != principal.Account.ID {
		return apperrors.NewForbidden("ticket assigned to another technician")
	}
	return nil
}

func generateTicketNumber() string {
	return "MT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, principal *auth.Principal, event events.Event, now func() time.Time) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	if principal != nil && principal.Account != nil {
		event.ActorID = &principal.Account.ID
	}
	_ = dispatcher.Publish(ctx, event)
}
