package domain

import "time"

// Asset is the physical item a ticket concerns.
type Asset struct {
	ID             string
	AssetTag       string
	Name           string
	DepartmentID   string
	DepartmentName string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
