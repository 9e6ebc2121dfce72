package auth

import (
	"time"

	"github.com/google/uuid"
)

// Account is a login credential bound to exactly one employee. The display
// name is denormalized from the employee row at registration time because
// sign-in uses the name, not the email.
type Account struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name       string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email      string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password   string    `gorm:"type:varchar(255);not null"`
	IsActive   bool      `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Account) TableName() string {
	return "accounts"
}
