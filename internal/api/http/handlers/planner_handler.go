package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// PlannerHandler serves the read-side calendar and department grid.
type PlannerHandler struct {
	planner *service.PlannerService
}

// NewPlannerHandler constructs handler.
func NewPlannerHandler(planner *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{planner: planner}
}

// Calendar GET /planner/calendar?year=&month=.
func (h *PlannerHandler) Calendar(c *fiber.Ctx) error {
	now := time.Now()
	year := parseIntQuery(c.Query("year"), now.Year())
	month := parseIntQuery(c.Query("month"), int(now.Month()))
	if month < 1 || month > 12 {
		return apperrors.NewValidationError("month out of range", map[string]any{"month": month})
	}

	view, err := h.planner.MonthView(c.Context(), year, time.Month(month))
	if err != nil {
		return err
	}

	days := make([]dto.CalendarDayResponse, 0, len(view.Days))
	for _, day := range view.Days {
		tickets := make([]dto.TicketResponse, 0, len(day.Tickets))
		for i := range day.Tickets {
			tickets = append(tickets, TicketResponse(&day.Tickets[i]))
		}
		days = append(days, dto.CalendarDayResponse{Day: day.Day, Tickets: tickets})
	}
	return c.JSON(fiber.Map{"data": dto.CalendarResponse{
		Year:  view.Year,
		Month: int(view.Month),
		Days:  days,
	}})
}

// Departments GET /planner/departments.
func (h *PlannerHandler) Departments(c *fiber.Ctx) error {
	groups, err := h.planner.DepartmentGrid(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.DepartmentGroupResponse, 0, len(groups))
	for _, group := range groups {
		assets := make([]dto.AssetResponse, 0, len(group.Assets))
		for _, asset := range group.Assets {
			assets = append(assets, AssetResponse(&asset))
		}
		items = append(items, dto.DepartmentGroupResponse{
			DepartmentID:   group.DepartmentID,
			DepartmentName: group.DepartmentName,
			Assets:         assets,
			OpenTickets:    group.OpenTickets,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
