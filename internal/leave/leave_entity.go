package leave

import (
	"time"

	"github.com/google/uuid"
)

// Leave is one calendar day of requested leave. A multi-date submission is
// stored as N rows sharing a BatchID, each with StartDate == EndDate. The
// range columns exist so readers keep working if ranged rows are ever
// introduced.
type Leave struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BatchID    uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_batch"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leaves_employee_dates"`

	Title     string    `gorm:"type:varchar(120);not null"`
	Kind      string    `gorm:"type:varchar(20);not null;default:'ANNUAL'"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leaves_employee_dates"`

	Status    string     `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DecidedBy *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
