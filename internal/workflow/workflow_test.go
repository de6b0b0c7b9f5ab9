package workflow

import (
	"testing"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

var testNow = time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

func strPtr(s string) *string {
	return &s
}

func pendingTicket() *domain.Ticket {
	return &domain.Ticket{
		ID:                 "tk-1",
		TicketNumber:       "MT-0001",
		Status:             domain.TicketStatusPending,
		Priority:           domain.TicketPriorityMedium,
		TroubleDescription: "screen flickers",
		EmployeeID:         "emp-1",
		AssetID:            "asset-1",
	}
}

func assignedTicket() *domain.Ticket {
	t := pendingTicket()
	scheduled := testNow.AddDate(0, 0, 1)
	t.Status = domain.TicketStatusAssigned
	t.TechnicianID = strPtr("tech-1")
	t.ScheduledDate = &scheduled
	return t
}

func inProgressTicket() *domain.Ticket {
	t := assignedTicket()
	check := testNow
	t.Status = domain.TicketStatusInProgress
	t.AnalysisDescription = strPtr("loose cable")
	t.ActionDescription = strPtr("reseated connector")
	t.ActualCheckDate = &check
	return t
}

func wantReason(t *testing.T, err error, want Reason) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s refusal, got nil", want)
	}
	got, ok := ReasonOf(err)
	if !ok {
		t.Fatalf("expected RuleError, got %T: %v", err, err)
	}
	if got != want {
		t.Fatalf("reason = %s, want %s", got, want)
	}
}

func TestAssignFromPending(t *testing.T) {
	ticket := pendingTicket()
	in := AssignInput{TechnicianID: strPtr("tech-1"), ScheduledDate: testNow.AddDate(0, 0, 2)}
	if err := Assign(ticket, in, testNow); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if ticket.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want Assigned", ticket.Status)
	}
	if ticket.ScheduledDate == nil {
		t.Error("scheduled date not set")
	}
	if ticket.TechnicianID == nil || *ticket.TechnicianID != "tech-1" {
		t.Errorf("technician = %v, want tech-1", ticket.TechnicianID)
	}
}

func TestAssignSameDay(t *testing.T) {
	// A schedule earlier today is still "today" date-only and must pass.
	ticket := pendingTicket()
	earlierToday := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	if err := Assign(ticket, AssignInput{ScheduledDate: earlierToday}, testNow); err != nil {
		t.Fatalf("Assign same day: %v", err)
	}
	if ticket.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want Assigned", ticket.Status)
	}
}

func TestAssignPastDateRejected(t *testing.T) {
	ticket := pendingTicket()
	err := Assign(ticket, AssignInput{ScheduledDate: testNow.AddDate(0, 0, -1)}, testNow)
	wantReason(t, err, ReasonInvalidDate)
	if ticket.Status != domain.TicketStatusPending {
		t.Errorf("status changed on rejected assign: %s", ticket.Status)
	}
	if ticket.ScheduledDate != nil {
		t.Error("scheduled date set on rejected assign")
	}
}

func TestAssignMissingDateRejected(t *testing.T) {
	ticket := pendingTicket()
	err := Assign(ticket, AssignInput{TechnicianID: strPtr("tech-1")}, testNow)
	wantReason(t, err, ReasonMissingField)
}

func TestAssignWithoutTechnician(t *testing.T) {
	// "none" and empty sentinels mean scheduled-but-unassigned.
	for _, sentinel := range []*string{nil, strPtr(""), strPtr("none"), strPtr("None")} {
		ticket := pendingTicket()
		in := AssignInput{TechnicianID: sentinel, ScheduledDate: testNow.AddDate(0, 0, 1)}
		if err := Assign(ticket, in, testNow); err != nil {
			t.Fatalf("Assign with sentinel %v: %v", sentinel, err)
		}
		if ticket.Status != domain.TicketStatusAssigned {
			t.Errorf("status = %s, want Assigned", ticket.Status)
		}
		if ticket.TechnicianID != nil {
			t.Errorf("technician = %q, want nil", *ticket.TechnicianID)
		}
	}
}

func TestReassignBeforeWorkStarts(t *testing.T) {
	ticket := assignedTicket()
	in := AssignInput{TechnicianID: strPtr("tech-2"), ScheduledDate: testNow.AddDate(0, 0, 3)}
	if err := Assign(ticket, in, testNow); err != nil {
		t.Fatalf("Reassign: %v", err)
	}
	if *ticket.TechnicianID != "tech-2" {
		t.Errorf("technician = %s, want tech-2", *ticket.TechnicianID)
	}
	if ticket.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want Assigned", ticket.Status)
	}
}

func TestReassignBlockedOnceAnalysisExists(t *testing.T) {
	ticket := assignedTicket()
	ticket.AnalysisDescription = strPtr("diagnosed already")
	err := Assign(ticket, AssignInput{TechnicianID: strPtr("tech-2"), ScheduledDate: testNow.AddDate(0, 0, 3)}, testNow)
	wantReason(t, err, ReasonIllegalState)
	if *ticket.TechnicianID != "tech-1" {
		t.Error("technician overwritten by rejected reassign")
	}
}

func TestAssignIllegalStates(t *testing.T) {
	for _, status := range []domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusCompleted, domain.TicketStatusCanceled} {
		ticket := pendingTicket()
		ticket.Status = status
		err := Assign(ticket, AssignInput{ScheduledDate: testNow.AddDate(0, 0, 1)}, testNow)
		wantReason(t, err, ReasonIllegalState)
	}
}

func TestProgressMovesToInProgress(t *testing.T) {
	ticket := assignedTicket()
	in := ProgressInput{
		AnalysisDescription: "faulty PSU",
		ActionDescription:   "replaced unit",
		ActualCheckDate:     testNow,
		AnalysisImage:       strPtr("img/analysis.jpg"),
	}
	if err := Progress(ticket, in, testNow); err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want In_Progress", ticket.Status)
	}
	if !ticket.HasAnalysis() || !ticket.HasAction() {
		t.Error("findings not recorded")
	}
	if ticket.ActualCheckDate == nil {
		t.Error("actual check date not set")
	}
	if ticket.AnalysisImage == nil || *ticket.AnalysisImage != "img/analysis.jpg" {
		t.Error("analysis image not recorded")
	}
}

func TestProgressEmptyAnalysisRejected(t *testing.T) {
	ticket := assignedTicket()
	err := Progress(ticket, ProgressInput{AnalysisDescription: "   ", ActualCheckDate: testNow}, testNow)
	wantReason(t, err, ReasonMissingField)
	if ticket.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want Assigned", ticket.Status)
	}
}

func TestProgressPastCheckDateRejected(t *testing.T) {
	ticket := assignedTicket()
	in := ProgressInput{AnalysisDescription: "ok", ActualCheckDate: testNow.AddDate(0, 0, -2)}
	wantReason(t, Progress(ticket, in, testNow), ReasonInvalidDate)
}

func TestProgressReentrant(t *testing.T) {
	ticket := inProgressTicket()
	in := ProgressInput{
		AnalysisDescription: "revised analysis",
		ActualCheckDate:     testNow.AddDate(0, 0, 1),
	}
	if err := Progress(ticket, in, testNow); err != nil {
		t.Fatalf("Progress update: %v", err)
	}
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want In_Progress", ticket.Status)
	}
	if *ticket.AnalysisDescription != "revised analysis" {
		t.Errorf("analysis = %q, want revised", *ticket.AnalysisDescription)
	}
	// Action description from the earlier pass survives an update that omits it.
	if !ticket.HasAction() {
		t.Error("action description lost on update")
	}
}

func TestProgressIllegalStates(t *testing.T) {
	for _, status := range []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusCompleted, domain.TicketStatusCanceled} {
		ticket := pendingTicket()
		ticket.Status = status
		in := ProgressInput{AnalysisDescription: "x", ActualCheckDate: testNow}
		wantReason(t, Progress(ticket, in, testNow), ReasonIllegalState)
	}
}

func TestCloseCompletesTicket(t *testing.T) {
	ticket := inProgressTicket()
	if err := Close(ticket, testNow); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if ticket.Status != domain.TicketStatusCompleted {
		t.Errorf("status = %s, want Completed", ticket.Status)
	}
	if ticket.CompletedDate == nil || !ticket.CompletedDate.Equal(testNow) {
		t.Errorf("completed date = %v, want %v", ticket.CompletedDate, testNow)
	}
}

func TestCloseNeverStartedRejected(t *testing.T) {
	wantReason(t, Close(assignedTicket(), testNow), ReasonIllegalState)
}

func TestCloseWithoutActionRejected(t *testing.T) {
	ticket := inProgressTicket()
	ticket.ActionDescription = nil
	err := Close(ticket, testNow)
	wantReason(t, err, ReasonMissingField)
	if ticket.Status != domain.TicketStatusInProgress {
		t.Errorf("status = %s, want In_Progress", ticket.Status)
	}
	if ticket.CompletedDate != nil {
		t.Error("completed date set on rejected close")
	}
}

func TestCancelFromNonTerminal(t *testing.T) {
	for _, ticket := range []*domain.Ticket{pendingTicket(), assignedTicket(), inProgressTicket()} {
		if err := Cancel(ticket, testNow); err != nil {
			t.Fatalf("Cancel from %s: %v", ticket.Status, err)
		}
		if ticket.Status != domain.TicketStatusCanceled {
			t.Errorf("status = %s, want Canceled", ticket.Status)
		}
	}
}

func TestCancelTerminalRejected(t *testing.T) {
	done := inProgressTicket()
	if err := Close(done, testNow); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wantReason(t, Cancel(done, testNow), ReasonIllegalState)
}

func TestDeleteGuard(t *testing.T) {
	if err := CanDelete(pendingTicket()); err != nil {
		t.Fatalf("CanDelete pending: %v", err)
	}
	for _, ticket := range []*domain.Ticket{assignedTicket(), inProgressTicket()} {
		wantReason(t, CanDelete(ticket), ReasonNotDeletable)
	}
}

func TestScheduleInvariantAfterTransitions(t *testing.T) {
	// Assigned/In_Progress/Completed imply a schedule; Pending implies none.
	ticket := pendingTicket()
	if ticket.ScheduledDate != nil {
		t.Fatal("pending ticket carries a schedule")
	}
	if err := Assign(ticket, AssignInput{ScheduledDate: testNow.AddDate(0, 0, 1)}, testNow); err != nil {
		t.Fatal(err)
	}
	if err := Progress(ticket, ProgressInput{AnalysisDescription: "a", ActionDescription: "b", ActualCheckDate: testNow}, testNow); err != nil {
		t.Fatal(err)
	}
	if err := Close(ticket, testNow); err != nil {
		t.Fatal(err)
	}
	if ticket.ScheduledDate == nil {
		t.Error("schedule cleared during lifecycle")
	}
	if ticket.Status != domain.TicketStatusCompleted || ticket.CompletedDate == nil {
		t.Error("completed ticket missing completion date")
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to domain.TicketStatus
		want     bool
	}{
		{domain.TicketStatusPending, domain.TicketStatusAssigned, true},
		{domain.TicketStatusPending, domain.TicketStatusInProgress, false},
		{domain.TicketStatusAssigned, domain.TicketStatusInProgress, true},
		{domain.TicketStatusAssigned, domain.TicketStatusAssigned, true},
		{domain.TicketStatusInProgress, domain.TicketStatusCompleted, true},
		{domain.TicketStatusCompleted, domain.TicketStatusInProgress, false},
		{domain.TicketStatusCanceled, domain.TicketStatusAssigned, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
