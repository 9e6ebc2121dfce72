package events

import "time"

const (
	LeaveSubmittedTopic = "pharmacy.leave.lifecycle.v1"
	LeaveDecidedTopic   = "pharmacy.leave.decision.v1"
)

// LeaveSubmittedEvent is emitted once per submission batch, not per day row.
type LeaveSubmittedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	BatchID    string    `json:"batch_id"`
	EmployeeID string    `json:"employee_id"`
	Kind       string    `json:"kind"`
	Dates      []string  `json:"dates"`
	Status     string    `json:"status"`
	Resubmit   bool      `json:"resubmit"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LeaveDecidedEvent is emitted when an approver sets or reverts a status.
type LeaveDecidedEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id"`
	LeaveID    string    `json:"leave_id"`
	EmployeeID string    `json:"employee_id"`
	DecidedBy  string    `json:"decided_by"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}
