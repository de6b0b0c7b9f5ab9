package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/workflow"
)

type schedulingFixture struct {
	service   *SchedulingService
	tickets   *fakeTicketRepo
	accounts  *fakeAccountRepo
	history   *fakeHistoryRepo
	published *[]events.Event
}

func newSchedulingFixture() *schedulingFixture {
	tickets := newFakeTicketRepo()
	accounts := newFakeAccountRepo()
	history := &fakeHistoryRepo{}
	dispatcher := events.NewInMemoryDispatcher()

	published := &[]events.Event{}
	dispatcher.Subscribe(events.EventTicketScheduled, func(_ context.Context, event events.Event) error {
		*published = append(*published, event)
		return nil
	})

	service := NewSchedulingService(SchedulingDependencies{
		TicketRepo:  tickets,
		AccountRepo: accounts,
		HistoryRepo: history,
		Dispatcher:  dispatcher,
		Clock:       fixedClock,
	})
	return &schedulingFixture{
		service:   service,
		tickets:   tickets,
		accounts:  accounts,
		history:   history,
		published: published,
	}
}

func (fx *schedulingFixture) addTechnician(id string) {
	fx.accounts.accounts[id] = domain.Account{ID: id, Name: "Tech " + id, Role: domain.RoleTechnician, Active: true}
}

func TestAssignTicketSchedulesPending(t *testing.T) {
	fx := newSchedulingFixture()
	fx.addTechnician("tech-1")
	fx.tickets.put(domain.Ticket{ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusPending, EmployeeID: "emp-1"})

	ticket, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
		TechnicianID:  strPtr("tech-1"),
		ScheduledDate: testNow,
	})
	if err != nil {
		t.Fatalf("AssignTicket: %v", err)
	}
	if ticket.Status != domain.TicketStatusAssigned {
		t.Errorf("status = %s, want Assigned", ticket.Status)
	}
	if ticket.TechnicianID == nil || *ticket.TechnicianID != "tech-1" {
		t.Errorf("technician = %v, want tech-1", ticket.TechnicianID)
	}
	if ticket.ScheduledDate == nil || !ticket.ScheduledDate.Equal(testNow) {
		t.Errorf("scheduled date = %v, want %v", ticket.ScheduledDate, testNow)
	}
	if len(fx.history.entries) != 1 || fx.history.entries[0].ChangeType != domain.ChangeTypeSchedule {
		t.Errorf("expected one SCHEDULE_CHANGE entry, got %+v", fx.history.entries)
	}
	if len(*fx.published) != 1 {
		t.Fatalf("expected one scheduled event, got %d", len(*fx.published))
	}
	payload, ok := (*fx.published)[0].Payload.(events.TicketScheduledPayload)
	if !ok {
		t.Fatalf("payload type = %T", (*fx.published)[0].Payload)
	}
	if payload.Reassigned {
		t.Error("first assignment must not be flagged as reassignment")
	}
}

func TestAssignTicketAcceptsSentinelTechnician(t *testing.T) {
	fx := newSchedulingFixture()
	fx.tickets.put(domain.Ticket{ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusPending, EmployeeID: "emp-1"})

	for _, sentinel := range []*string{nil, strPtr(""), strPtr("  "), strPtr("none"), strPtr("NONE")} {
		ticket, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
			TechnicianID:  sentinel,
			ScheduledDate: testNow.AddDate(0, 0, 1),
		})
		if err != nil {
			t.Fatalf("AssignTicket(%v): %v", sentinel, err)
		}
		if ticket.TechnicianID != nil {
			t.Errorf("sentinel %v should leave technician unset, got %q", sentinel, *ticket.TechnicianID)
		}
	}
}

func TestAssignTicketRejectsPastDate(t *testing.T) {
	fx := newSchedulingFixture()
	fx.tickets.put(domain.Ticket{ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusPending, EmployeeID: "emp-1"})

	_, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
		ScheduledDate: testNow.AddDate(0, 0, -1),
	})
	if code := errCode(t, err); code != "INVALID_DATE" {
		t.Errorf("code = %s, want INVALID_DATE", code)
	}
	stored, _ := fx.tickets.GetByID(context.Background(), "t1")
	if stored.Status != domain.TicketStatusPending || stored.ScheduledDate != nil {
		t.Errorf("rejected assignment must leave ticket unchanged, got %+v", stored)
	}
}

func TestAssignTicketRejectsNonTechnicianAccount(t *testing.T) {
	fx := newSchedulingFixture()
	fx.accounts.accounts["emp-9"] = domain.Account{ID: "emp-9", Role: domain.RoleEmployee, Active: true}
	fx.tickets.put(domain.Ticket{ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusPending, EmployeeID: "emp-1"})

	_, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
		TechnicianID:  strPtr("emp-9"),
		ScheduledDate: testNow,
	})
	if code := errCode(t, err); code != "VALIDATION_FAILED" {
		t.Errorf("code = %s, want VALIDATION_FAILED", code)
	}
}

func TestAssignTicketRejectsInactiveTechnician(t *testing.T) {
	fx := newSchedulingFixture()
	fx.accounts.accounts["tech-9"] = domain.Account{ID: "tech-9", Role: domain.RoleTechnician, Active: false}
	fx.tickets.put(domain.Ticket{ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusPending, EmployeeID: "emp-1"})

	_, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
		TechnicianID:  strPtr("tech-9"),
		ScheduledDate: testNow,
	})
	if code := errCode(t, err); code != "CONFLICT" {
		t.Errorf("code = %s, want CONFLICT", code)
	}
}

func TestAssignTicketUnknownTechnician(t *testing.T) {
	fx := newSchedulingFixture()
	fx.tickets.put(domain.Ticket{ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusPending, EmployeeID: "emp-1"})

	_, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
		TechnicianID:  strPtr("ghost"),
		ScheduledDate: testNow,
	})
	if code := errCode(t, err); code != "NOT_FOUND" {
		t.Errorf("code = %s, want NOT_FOUND", code)
	}
}

func TestAssignTicketAdminOnly(t *testing.T) {
	fx := newSchedulingFixture()
	fx.tickets.put(domain.Ticket{ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusPending, EmployeeID: "emp-1"})

	_, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleTechnician, "tech-1"), "t1", workflow.AssignInput{
		ScheduledDate: testNow,
	})
	if code := errCode(t, err); code != "FORBIDDEN" {
		t.Errorf("code = %s, want FORBIDDEN", code)
	}
}

func TestReassignBeforeWorkStarted(t *testing.T) {
	fx := newSchedulingFixture()
	fx.addTechnician("tech-1")
	fx.addTechnician("tech-2")
	scheduled := testNow.AddDate(0, 0, 1)
	fx.tickets.put(domain.Ticket{
		ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusAssigned,
		EmployeeID: "emp-1", TechnicianID: strPtr("tech-1"), ScheduledDate: &scheduled,
	})

	ticket, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
		TechnicianID:  strPtr("tech-2"),
		ScheduledDate: testNow.AddDate(0, 0, 3),
	})
	if err != nil {
		t.Fatalf("AssignTicket: %v", err)
	}
	if ticket.TechnicianID == nil || *ticket.TechnicianID != "tech-2" {
		t.Errorf("technician = %v, want tech-2", ticket.TechnicianID)
	}
	payload := (*fx.published)[0].Payload.(events.TicketScheduledPayload)
	if !payload.Reassigned {
		t.Error("schedule change on an Assigned ticket must be flagged as reassignment")
	}
}

func TestReassignBlockedAfterAnalysis(t *testing.T) {
	fx := newSchedulingFixture()
	fx.addTechnician("tech-2")
	scheduled := testNow.AddDate(0, 0, 1)
	fx.tickets.put(domain.Ticket{
		ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusAssigned,
		EmployeeID: "emp-1", TechnicianID: strPtr("tech-1"), ScheduledDate: &scheduled,
		AnalysisDescription: strPtr("already diagnosed"),
	})

	_, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
		TechnicianID:  strPtr("tech-2"),
		ScheduledDate: testNow.AddDate(0, 0, 3),
	})
	if code := errCode(t, err); code != "ILLEGAL_STATE_FOR_OPERATION" {
		t.Errorf("code = %s, want ILLEGAL_STATE_FOR_OPERATION", code)
	}
}

func TestAssignCompletedTicketRefused(t *testing.T) {
	fx := newSchedulingFixture()
	completed := testNow
	fx.tickets.put(domain.Ticket{
		ID: "t1", TicketNumber: "MT-A", Status: domain.TicketStatusCompleted,
		EmployeeID: "emp-1", CompletedDate: &completed,
	})

	_, err := fx.service.AssignTicket(context.Background(), principalFor(domain.RoleAdmin, "adm-1"), "t1", workflow.AssignInput{
		ScheduledDate: testNow.Add(48 * time.Hour),
	})
	if code := errCode(t, err); code != "ILLEGAL_STATE_FOR_OPERATION" {
		t.Errorf("code = %s, want ILLEGAL_STATE_FOR_OPERATION", code)
	}
}
