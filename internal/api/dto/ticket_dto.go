package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	AssetID            string                `json:"asset_id"`
	TroubleDescription string                `json:"trouble_description"`
	Priority           domain.TicketPriority `json:"priority"`
	ProblemImage       *string               `json:"problem_image"`
}

// AssignTicketRequest payload. A missing or "none" technician means
// schedule-without-technician.
type AssignTicketRequest struct {
	TechnicianID  *string `json:"technician_id"`
	ScheduledDate string  `json:"scheduled_date"`
}

// ProgressRequest payload.
type ProgressRequest struct {
	AnalysisDescription string  `json:"analysis_description"`
	ActionDescription   string  `json:"action_description"`
	ActualCheckDate     string  `json:"actual_check_date"`
	AnalysisImage       *string `json:"analysis_image"`
	ActionImage         *string `json:"action_image"`
}

// TicketResponse is the full wire representation of a ticket.
type TicketResponse struct {
	ID                  string                `json:"id"`
	TicketNumber        string                `json:"ticket_number"`
	Status              domain.TicketStatus   `json:"status"`
	StatusBadge         string                `json:"status_badge"`
	Priority            domain.TicketPriority `json:"priority"`
	TroubleDescription  string                `json:"trouble_description"`
	EmployeeID          string                `json:"employee_id"`
	AssetID             string                `json:"asset_id"`
	TechnicianID        *string               `json:"technician_id"`
	ScheduledDate       *time.Time            `json:"scheduled_date"`
	AnalysisDescription *string               `json:"analysis_description"`
	ActionDescription   *string               `json:"action_description"`
	ActualCheckDate     *time.Time            `json:"actual_check_date"`
	ProblemImage        *string               `json:"problem_image"`
	AnalysisImage       *string               `json:"analysis_image"`
	ActionImage         *string               `json:"action_image"`
	CompletedDate       *time.Time            `json:"completed_date"`
	Revision            int64                 `json:"revision"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// PageMeta describes one page of a listing.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID          string                  `json:"id"`
	ChangedByID *string                 `json:"changed_by_id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	OldValue    map[string]any          `json:"old_value"`
	NewValue    map[string]any          `json:"new_value"`
	CreatedAt   time.Time               `json:"created_at"`
}
