package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	"github.com/spec-kit/maintenance-service/internal/workflow"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets    *service.TicketService
	scheduling *service.SchedulingService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, scheduling *service.SchedulingService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, scheduling: scheduling}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssetID == "" || strings.TrimSpace(req.TroubleDescription) == "" {
		return apperrors.NewValidationError("asset_id and trouble_description required", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), principal, service.TicketCreateInput{
		AssetID:            req.AssetID,
		TroubleDescription: req.TroubleDescription,
		Priority:           req.Priority,
		ProblemImage:       req.ProblemImage,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": TicketResponse(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	page, err := h.tickets.ListTickets(c.Context(), principal, parseTicketListQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, TicketResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.PageMeta{
			Page:       page.Page,
			PageSize:   page.PageSize,
			Total:      page.Total,
			TotalPages: page.TotalPages,
		},
	})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.GetTicket(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": TicketResponse(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	scheduled, err := parseDate(req.ScheduledDate)
	if err != nil {
		return apperrors.NewMissingField("scheduled_date required as ISO-8601 date", map[string]any{"field": "scheduled_date"})
	}

	ticket, err := h.scheduling.AssignTicket(c.Context(), principal, c.Params("id"), workflow.AssignInput{
		TechnicianID:  req.TechnicianID,
		ScheduledDate: scheduled,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": TicketResponse(ticket)})
}

// Progress POST /tickets/:id/progress.
func (h *TicketsHandler) Progress(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	checkDate, err := parseDate(req.ActualCheckDate)
	if err != nil {
		return apperrors.NewMissingField("actual_check_date required as ISO-8601 date", map[string]any{"field": "actual_check_date"})
	}

	ticket, err := h.tickets.RecordProgress(c.Context(), principal, c.Params("id"), workflow.ProgressInput{
		AnalysisDescription: req.AnalysisDescription,
		ActionDescription:   req.ActionDescription,
		ActualCheckDate:     checkDate,
		AnalysisImage:       req.AnalysisImage,
		ActionImage:         req.ActionImage,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": TicketResponse(ticket)})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.CloseTicket(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": TicketResponse(ticket)})
}

// Cancel POST /tickets/:id/cancel.
func (h *TicketsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.CancelTicket(c.Context(), principal, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": TicketResponse(ticket)})
}

// Delete DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.tickets.DeleteTicket(c.Context(), principal, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "ticket deleted"}})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit := parseIntQuery(c.Query("limit"), 50)
	offset := parseIntQuery(c.Query("offset"), 0)
	entries, err := h.tickets.ListHistory(c.Context(), principal, c.Params("id"), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.TicketHistoryResponse{
			ID:          entry.ID,
			ChangedByID: entry.ChangedByID,
			ChangeType:  entry.ChangeType,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketListQuery(c *fiber.Ctx) service.TicketListInput {
	input := service.TicketListInput{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			input.Statuses = append(input.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			input.Priorities = append(input.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		input.SearchTerm = &q
	}
	input.Page = parseIntQuery(c.Query("page"), 1)
	input.PageSize = parseIntQuery(c.Query("page_size"), 20)
	return input
}

// parseDate accepts both bare dates and full RFC3339 timestamps.
func parseDate(val string) (time.Time, error) {
	val = strings.TrimSpace(val)
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", val)
}

func parseIntQuery(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

// TicketResponse maps a domain ticket onto the wire shape, including the
// shared status badge color.
func TicketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:                  ticket.ID,
		TicketNumber:        ticket.TicketNumber,
		Status:              ticket.Status,
		StatusBadge:         domain.StatusBadge(ticket.Status),
		Priority:            ticket.Priority,
		TroubleDescription:  ticket.TroubleDescription,
		EmployeeID:          ticket.EmployeeID,
		AssetID:             ticket.AssetID,
		TechnicianID:        ticket.TechnicianID,
		ScheduledDate:       ticket.ScheduledDate,
		AnalysisDescription: ticket.AnalysisDescription,
		ActionDescription:   ticket.ActionDescription,
		ActualCheckDate:     ticket.ActualCheckDate,
		ProblemImage:        ticket.ProblemImage,
		AnalysisImage:       ticket.AnalysisImage,
		ActionImage:         ticket.ActionImage,
		CompletedDate:       ticket.CompletedDate,
		Revision:            ticket.Revision,
		CreatedAt:           ticket.CreatedAt,
		UpdatedAt:           ticket.UpdatedAt,
	}
}
