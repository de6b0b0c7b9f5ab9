package domain

import "time"

// TicketStatus enumerates lifecycle states for maintenance tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "Pending"
	TicketStatusAssigned   TicketStatus = "Assigned"
	TicketStatusInProgress TicketStatus = "In_Progress"
	TicketStatusCompleted  TicketStatus = "Completed"
	TicketStatusCanceled   TicketStatus = "Canceled"
)

// Terminal reports whether no further transitions are possible.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCanceled
}

// TicketPriority enumerates urgency. Informational only; it never gates
// workflow transitions.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// Ticket is the aggregate for maintenance requests. ScheduledDate,
// TechnicianID and CompletedDate are tied to Status: a ticket carries a
// schedule exactly when it has left Pending, and a completion date exactly
// when Completed.
type Ticket struct {
	ID                  string
	TicketNumber        string
	Status              TicketStatus
	Priority            TicketPriority
	TroubleDescription  string
	EmployeeID          string
	AssetID             string
	TechnicianID        *string
	ScheduledDate       *time.Time
	AnalysisDescription *string
	ActionDescription   *string
	ActualCheckDate     *time.Time
	ProblemImage        *string
	AnalysisImage       *string
	ActionImage         *string
	CompletedDate       *time.Time
	Revision            int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasAnalysis reports whether technician work has been recorded. Once true,
// reassignment is blocked.
func (t *Ticket) HasAnalysis() bool {
	return t.AnalysisDescription != nil && *t.AnalysisDescription != ""
}

// HasAction reports whether a resolution action has been recorded, which is
// the precondition for closing.
func (t *Ticket) HasAction() bool {
	return t.ActionDescription != nil && *t.ActionDescription != ""
}

// statusBadges is the single source of truth for status presentation colors,
// replacing per-consumer switch statements.
var statusBadges = map[TicketStatus]string{
	TicketStatusPending:    "gray",
	TicketStatusAssigned:   "blue",
	TicketStatusInProgress: "yellow",
	TicketStatusCompleted:  "green",
	TicketStatusCanceled:   "red",
}

// StatusBadge returns the presentation color for a status.
func StatusBadge(s TicketStatus) string {
	if color, ok := statusBadges[s]; ok {
		return color
	}
	return "gray"
}
