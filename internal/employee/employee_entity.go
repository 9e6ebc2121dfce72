package employee

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string     `gorm:"type:varchar(100);not null"`
	Email    string     `gorm:"type:varchar(255);uniqueIndex:uq_employee_email;not null"`
	Rank     string     `gorm:"type:varchar(30);not null;index"`
	HireDate *time.Time `gorm:"type:date"`

	// AuthID links to the account row used for login. Nullable so an
	// employee can exist on the roster before credentials are issued.
	AuthID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
