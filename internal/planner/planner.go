// Package planner derives read-only calendar and department views from
// ticket and asset collections. Views are recomputed from current state on
// every call; nothing here is stored.
package planner

import (
	"sort"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// DayGroup is the set of tickets scheduled on one calendar day.
type DayGroup struct {
	Day     int
	Tickets []domain.Ticket
}

// MonthView is the calendar projection for one month.
type MonthView struct {
	Year  int
	Month time.Month
	Days  []DayGroup
}

// ProjectMonth groups tickets by the calendar day of their scheduled date.
// Tickets without a schedule or scheduled outside the month are skipped.
// Days with no tickets are omitted; day groups come back in ascending order.
func ProjectMonth(tickets []domain.Ticket, year int, month time.Month) MonthView {
	byDay := make(map[int][]domain.Ticket)
	for _, ticket := range tickets {
		if ticket.ScheduledDate == nil {
			continue
		}
		scheduled := *ticket.ScheduledDate
		if scheduled.Year() != year || scheduled.Month() != month {
			continue
		}
		day := scheduled.Day()
		byDay[day] = append(byDay[day], ticket)
	}

	days := make([]DayGroup, 0, len(byDay))
	for day, group := range byDay {
		sort.Slice(group, func(i, j int) bool {
			return group[i].TicketNumber < group[j].TicketNumber
		})
		days = append(days, DayGroup{Day: day, Tickets: group})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day < days[j].Day
	})
	return MonthView{Year: year, Month: month, Days: days}
}

// DepartmentGroup lists the assets of one department together with how many
// open tickets concern them.
type DepartmentGroup struct {
	DepartmentID   string
	DepartmentName string
	Assets         []domain.Asset
	OpenTickets    int
}

// GroupByDepartment builds the planner grid: assets per department with the
// count of non-terminal tickets touching each department's assets.
// Departments come back sorted by name.
func GroupByDepartment(assets []domain.Asset, tickets []domain.Ticket) []DepartmentGroup {
	assetDept := make(map[string]string, len(assets))
	byDept := make(map[string]*DepartmentGroup)
	for _, asset := range assets {
		assetDept[asset.ID] = asset.DepartmentID
		group, ok := byDept[asset.DepartmentID]
		if !ok {
			group = &DepartmentGroup{DepartmentID: asset.DepartmentID, DepartmentName: asset.DepartmentName}
			byDept[asset.DepartmentID] = group
		}
		group.Assets = append(group.Assets, asset)
	}

	for _, ticket := range tickets {
		if ticket.Status.Terminal() {
			continue
		}
		deptID, ok := assetDept[ticket.AssetID]
		if !ok {
			continue
		}
		byDept[deptID].OpenTickets++
	}

	groups := make([]DepartmentGroup, 0, len(byDept))
	for _, group := range byDept {
		sort.Slice(group.Assets, func(i, j int) bool {
			return group.Assets[i].AssetTag < group.Assets[j].AssetTag
		})
		groups = append(groups, *group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].DepartmentName < groups[j].DepartmentName
	})
	return groups
}
