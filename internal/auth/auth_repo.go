package auth

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_repo.go -destination=mock/auth_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByName(ctx context.Context, name string) (*Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)
	EmployeeRank(ctx context.Context, employeeID uuid.UUID) (string, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, account *Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) GetByName(ctx context.Context, name string) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Where("is_active = ?", true).
		First(&account).Error
	return &account, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	var account Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	return &account, err
}

// EmployeeRank reads the current rank from the employee row so tokens carry
// the live rank even after a promotion.
func (r *repository) EmployeeRank(ctx context.Context, employeeID uuid.UUID) (string, error) {
	var empRank string
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("rank").
		Where("id = ?", employeeID).
		Take(&empRank).Error
	return empRank, err
}
