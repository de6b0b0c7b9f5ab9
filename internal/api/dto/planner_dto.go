package dto

// CalendarDayResponse is one day of the month view.
type CalendarDayResponse struct {
	Day     int              `json:"day"`
	Tickets []TicketResponse `json:"tickets"`
}

// CalendarResponse is the month projection.
type CalendarResponse struct {
	Year  int                   `json:"year"`
	Month int                   `json:"month"`
	Days  []CalendarDayResponse `json:"days"`
}

// DepartmentGroupResponse is one cell row of the planner grid.
type DepartmentGroupResponse struct {
	DepartmentID   string          `json:"department_id"`
	DepartmentName string          `json:"department_name"`
	Assets         []AssetResponse `json:"assets"`
	OpenTickets    int             `json:"open_tickets"`
}
