package leave

type SubmitLeaveRequest struct {
	Kind  string   `json:"kind" binding:"required,oneof=ANNUAL HALF_DAY OVERSEAS"`
	Dates []string `json:"dates" binding:"required,min=1"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING APPROVED REJECTED"`
}

type LeaveResponse struct {
	ID           string `json:"id"`
	BatchID      string `json:"batch_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	EmployeeRank string `json:"employee_rank,omitempty"`
	Title        string `json:"title"`
	Kind         string `json:"kind"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Status       string `json:"status"`
	DecidedBy    string `json:"decided_by,omitempty"`
	CreatedAt    string `json:"created_at"`
}

// SubmitLeaveResponse reports the whole batch. Resubmitted marks an edit of
// an existing request, which re-enters the approval queue for non
// auto-approved ranks even if it had already been approved.
type SubmitLeaveResponse struct {
	BatchID     string          `json:"batch_id"`
	Status      string          `json:"status"`
	Resubmitted bool            `json:"resubmitted"`
	Entries     []LeaveResponse `json:"entries"`
}

type BalanceResponse struct {
	EmployeeID string `json:"employee_id"`
	// Capped is false for top-tier ranks, which have no balance panel.
	// Total, Used and Remaining are zero when Capped is false.
	Capped    bool `json:"capped"`
	Total     int  `json:"total"`
	Used      int  `json:"used"`
	Remaining int  `json:"remaining"`
}
