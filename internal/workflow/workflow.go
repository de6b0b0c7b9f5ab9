// Package workflow holds the pure transition rules for the maintenance
// ticket lifecycle. Nothing here touches persistence or transport; callers
// load the ticket, run a transition against it, and commit the mutated copy
// with a revision check.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// Reason identifies why a transition was refused.
type Reason string

const (
	ReasonInvalidDate  Reason = "INVALID_DATE"
	ReasonMissingField Reason = "MISSING_REQUIRED_FIELD"
	ReasonIllegalState Reason = "ILLEGAL_STATE_FOR_OPERATION"
	ReasonNotDeletable Reason = "NOT_DELETABLE"
)

// RuleError is a refused transition with a machine-readable reason.
type RuleError struct {
	Reason  Reason
	Field   string
	Message string
}

func (e *RuleError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Reason, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func refuse(reason Reason, field, message string) error {
	return &RuleError{Reason: reason, Field: field, Message: message}
}

// transitions lists the legal status edges. Cancel edges are implied by
// Terminal() and handled in Cancel.
var transitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPending:    {domain.TicketStatusAssigned, domain.TicketStatusCanceled},
	domain.TicketStatusAssigned:   {domain.TicketStatusAssigned, domain.TicketStatusInProgress, domain.TicketStatusCanceled},
	domain.TicketStatusInProgress: {domain.TicketStatusInProgress, domain.TicketStatusCompleted, domain.TicketStatusCanceled},
	domain.TicketStatusCompleted:  {},
	domain.TicketStatusCanceled:   {},
}

// CanTransition reports whether the edge current→next exists.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range transitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// DateOnly truncates a timestamp to midnight in its own location. All
// scheduling comparisons are date-only so a same-day schedule is never
// rejected over clock skew.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NormalizeTechnician maps the UI sentinel values for "no technician" to
// nil. A nil result on assignment means "scheduled but unassigned".
func NormalizeTechnician(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return nil
	}
	return &trimmed
}

// AssignInput carries the schedule commitment.
type AssignInput struct {
	TechnicianID  *string
	ScheduledDate time.Time
}

// Assign schedules a ticket, moving Pending→Assigned or overwriting the
// schedule of an Assigned ticket. Reassignment is blocked once analysis has
// been recorded so a technician cannot be swapped out after work started.
func Assign(t *domain.Ticket, in AssignInput, now time.Time) error {
	switch t.Status {
	case domain.TicketStatusPending:
	case domain.TicketStatusAssigned:
		if t.HasAnalysis() {
			return refuse(ReasonIllegalState, "", "work already started; reassignment blocked")
		}
	default:
		return refuse(ReasonIllegalState, "", fmt.Sprintf("cannot assign ticket in status %s", t.Status))
	}

	if in.ScheduledDate.IsZero() {
		return refuse(ReasonMissingField, "scheduled_date", "schedule date is required")
	}
	if DateOnly(in.ScheduledDate).Before(DateOnly(now)) {
		return refuse(ReasonInvalidDate, "scheduled_date", "schedule date must not be in the past")
	}

	scheduled := in.ScheduledDate
	t.TechnicianID = NormalizeTechnician(in.TechnicianID)
	t.ScheduledDate = &scheduled
	t.Status = domain.TicketStatusAssigned
	return nil
}

// ProgressInput carries the technician's findings.
type ProgressInput struct {
	AnalysisDescription string
	ActionDescription   string
	ActualCheckDate     time.Time
	AnalysisImage       *string
	ActionImage         *string
}

// Progress records analysis and action details, moving Assigned→In_Progress.
// It is re-entrant: an In_Progress ticket accepts updated findings without a
// status change.
func Progress(t *domain.Ticket, in ProgressInput, now time.Time) error {
	if t.Status != domain.TicketStatusAssigned && t.Status != domain.TicketStatusInProgress {
		return refuse(ReasonIllegalState, "", fmt.Sprintf("cannot record progress in status %s", t.Status))
	}

	analysis := strings.TrimSpace(in.AnalysisDescription)
	if analysis == "" {
		return refuse(ReasonMissingField, "analysis_description", "analysis description is required")
	}
	if in.ActualCheckDate.IsZero() {
		return refuse(ReasonMissingField, "actual_check_date", "actual check date is required")
	}
	if DateOnly(in.ActualCheckDate).Before(DateOnly(now)) {
		return refuse(ReasonInvalidDate, "actual_check_date", "actual check date must not be in the past")
	}

	checkDate := in.ActualCheckDate
	t.AnalysisDescription = &analysis
	if action := strings.TrimSpace(in.ActionDescription); action != "" {
		t.ActionDescription = &action
	}
	t.ActualCheckDate = &checkDate
	if in.AnalysisImage != nil {
		t.AnalysisImage = in.AnalysisImage
	}
	if in.ActionImage != nil {
		t.ActionImage = in.ActionImage
	}
	t.Status = domain.TicketStatusInProgress
	return nil
}

// Close completes an In_Progress ticket. A recorded action description is
// required; closing is refused otherwise rather than silently proceeding.
func Close(t *domain.Ticket, now time.Time) error {
	if t.Status != domain.TicketStatusInProgress {
		return refuse(ReasonIllegalState, "", fmt.Sprintf("cannot close ticket in status %s", t.Status))
	}
	if !t.HasAction() {
		return refuse(ReasonMissingField, "action_description", "action description is required before closing")
	}
	completed := now
	t.CompletedDate = &completed
	t.Status = domain.TicketStatusCompleted
	return nil
}

// Cancel aborts a ticket from any non-terminal state.
func Cancel(t *domain.Ticket, now time.Time) error {
	if t.Status.Terminal() {
		return refuse(ReasonIllegalState, "", fmt.Sprintf("cannot cancel ticket in status %s", t.Status))
	}
	t.Status = domain.TicketStatusCanceled
	t.UpdatedAt = now
	return nil
}

// CanDelete guards hard deletion. A ticket with a committed schedule is
// never deletable: a scheduled technician must not have work vanish.
func CanDelete(t *domain.Ticket) error {
	if t.ScheduledDate != nil {
		return refuse(ReasonNotDeletable, "", "ticket has a committed schedule")
	}
	return nil
}

// ReasonOf extracts the refusal reason from an error, if it is a RuleError.
func ReasonOf(err error) (Reason, bool) {
	if err == nil {
		return "", false
	}
	ruleErr, ok := err.(*RuleError)
	if !ok {
		return "", false
	}
	return ruleErr.Reason, true
}
