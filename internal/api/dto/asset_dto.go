package dto

import "time"

// CreateAssetRequest payload.
type CreateAssetRequest struct {
	AssetTag       string `json:"asset_tag"`
	Name           string `json:"name"`
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

// AssetResponse wire representation.
type AssetResponse struct {
	ID             string    `json:"id"`
	AssetTag       string    `json:"asset_tag"`
	Name           string    `json:"name"`
	DepartmentID   string    `json:"department_id"`
	DepartmentName string    `json:"department_name"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
