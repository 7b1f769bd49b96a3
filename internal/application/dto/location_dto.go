package dto

// CreateLocationRequest alta de ubicación.
type CreateLocationRequest struct {
	Name         string `json:"name" validate:"required"`
	Usage        string `json:"usage" validate:"required,oneof=internal procurement supplier customer correction bundle"`
	DepartmentID *int64 `json:"department_id"`
}

// LocationResponse vista de una ubicación.
type LocationResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Usage        string `json:"usage"`
	DepartmentID *int64 `json:"department_id,omitempty"`
	Active       bool   `json:"active"`
}
