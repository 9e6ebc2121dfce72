package employee

type CreateEmployeeRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Rank     string `json:"rank" binding:"required"`
	HireDate string `json:"hire_date"`
}

type UpdateEmployeeRequest struct {
	Name string `json:"name" binding:"required"`
	Rank string `json:"rank" binding:"required"`
}

type EmployeeResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Rank     string `json:"rank"`
	HireDate string `json:"hire_date,omitempty"`
}

// RosterEntry is the management aggregate view: the roster row joined with
// the externally maintained allowance and the management-scope usage count.
type RosterEntry struct {
	EmployeeResponse
	TotalLeave     int `json:"total_leave"`
	UsedLeave      int `json:"used_leave"`
	RemainingLeave int `json:"remaining_leave"`
}
