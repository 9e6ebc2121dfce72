package schedule

type EntryResponse struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	EmployeeRank string `json:"employee_rank"`
	Title        string `json:"title"`
	Kind         string `json:"kind"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

type DayScheduleResponse struct {
	Date    string          `json:"date"`
	Entries []EntryResponse `json:"entries"`
}

type RangeScheduleResponse struct {
	Start string                     `json:"start"`
	End   string                     `json:"end"`
	Days  map[string][]EntryResponse `json:"days"`
}

// UsedDatesResponse lists the calendar days shaded on the annual overview,
// sorted ascending.
type UsedDatesResponse struct {
	EmployeeID string   `json:"employee_id"`
	Dates      []string `json:"dates"`
}
