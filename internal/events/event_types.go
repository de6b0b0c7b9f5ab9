package events

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated          EventType = "ticket_created"
	EventTicketScheduled        EventType = "ticket_scheduled"
	EventTicketProgressRecorded EventType = "ticket_progress_recorded"
	EventTicketCompleted        EventType = "ticket_completed"
	EventTicketCanceled         EventType = "ticket_canceled"
	EventTicketDeleted          EventType = "ticket_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber string                `json:"ticket_number"`
	AssetID      string                `json:"asset_id"`
	EmployeeID   string                `json:"employee_id"`
	Priority     domain.TicketPriority `json:"priority"`
}

// TicketScheduledPayload payload.
type TicketScheduledPayload struct {
	TechnicianID  *string   `json:"technician_id,omitempty"`
	ScheduledDate time.Time `json:"scheduled_date"`
	Reassigned    bool      `json:"reassigned"`
}

// TicketProgressRecordedPayload payload.
type TicketProgressRecordedPayload struct {
	TechnicianID    *string   `json:"technician_id,omitempty"`
	ActualCheckDate time.Time `json:"actual_check_date"`
	HasAction       bool      `json:"has_action"`
}

// TicketStatusChangedPayload payload for completion and cancellation.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketNumber string `json:"ticket_number"`
}
