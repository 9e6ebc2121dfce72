package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entry is an approved leave row joined with its owner, as consumed by the
// calendar views. The range columns are carried so the overlap queries stay
// correct if ranged rows are ever introduced.
type Entry struct {
	ID           uuid.UUID
	EmployeeID   uuid.UUID
	EmployeeName string
	EmployeeRank string
	Title        string
	Kind         string
	StartDate    time.Time
	EndDate      time.Time
}

//go:generate mockgen -source=schedule_repo.go -destination=mock/schedule_repo_mock.go -package=mock
type Repository interface {
	ApprovedOverlapping(ctx context.Context, date time.Time) ([]Entry, error)
	ApprovedOverlappingRange(ctx context.Context, start, end time.Time) ([]Entry, error)
	ApprovedByEmployee(ctx context.Context, employeeID string, kinds []string) ([]Entry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

const approvedJoin = "leaves.id, leaves.employee_id, employees.name AS employee_name, " +
	"employees.rank AS employee_rank, leaves.title, leaves.kind, leaves.start_date, leaves.end_date"

func (r *repository) ApprovedOverlapping(ctx context.Context, date time.Time) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Table("leaves").
		Select(approvedJoin).
		Joins("LEFT JOIN employees ON employees.id = leaves.employee_id").
		Where("leaves.status = ?", "APPROVED").
		Where("leaves.start_date <= ? AND leaves.end_date >= ?", date, date).
		Order("leaves.start_date ASC").
		Scan(&entries).Error
	return entries, err
}

func (r *repository) ApprovedOverlappingRange(ctx context.Context, start, end time.Time) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Table("leaves").
		Select(approvedJoin).
		Joins("LEFT JOIN employees ON employees.id = leaves.employee_id").
		Where("leaves.status = ?", "APPROVED").
		Where("leaves.start_date <= ? AND leaves.end_date >= ?", end, start).
		Order("leaves.start_date ASC").
		Scan(&entries).Error
	return entries, err
}

func (r *repository) ApprovedByEmployee(ctx context.Context, employeeID string, kinds []string) ([]Entry, error) {
	var entries []Entry
	err := r.db.WithContext(ctx).
		Table("leaves").
		Select(approvedJoin).
		Joins("LEFT JOIN employees ON employees.id = leaves.employee_id").
		Where("leaves.employee_id = ?", employeeID).
		Where("leaves.status = ?", "APPROVED").
		Where("leaves.kind IN ?", kinds).
		Order("leaves.start_date ASC").
		Scan(&entries).Error
	return entries, err
}
