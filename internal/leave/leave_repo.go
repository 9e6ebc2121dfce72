package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisibleLeave is a leave row joined with its owner's name and rank, for the
// approval queue and the merged schedule views.
type VisibleLeave struct {
	ID           uuid.UUID
	BatchID      uuid.UUID
	EmployeeID   uuid.UUID
	Title        string
	Kind         string
	StartDate    time.Time
	EndDate      time.Time
	Status       string
	DecidedBy    *uuid.UUID
	CreatedAt    time.Time
	EmployeeName string
	EmployeeRank string
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// Writes run through the bound transaction when one is set, so a
	// failed batch leaves no partial rows behind.
	InsertBatch(ctx context.Context, rows []*Leave) error
	DeleteByID(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id, status string, decidedBy *uuid.UUID) error

	FindByID(ctx context.Context, id string) (*Leave, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error)
	FindVisibleByEmployees(ctx context.Context, employeeIDs []string) ([]VisibleLeave, error)

	EmployeeInfo(ctx context.Context, employeeID string) (name, empRank string, err error)
	EmployeeIDsByRanks(ctx context.Context, ranks []string) ([]string, error)

	CountApproved(ctx context.Context, employeeID string, kinds []string) (int64, error)
	ApprovedUsage(ctx context.Context, kinds []string) (map[string]int, error)
	AllowanceFor(ctx context.Context, employeeID string) (int, error)
	Allowances(ctx context.Context) (map[string]int, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) InsertBatch(ctx context.Context, rows []*Leave) error {
	const query = `
INSERT INTO leaves (
	id, batch_id, employee_id, title, kind, start_date, end_date, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
`
	for _, l := range rows {
		_, err := r.execer().ExecContext(
			ctx, query,
			l.ID, l.BatchID, l.EmployeeID, l.Title, l.Kind, l.StartDate, l.EndDate, l.Status,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.execer().ExecContext(ctx, `DELETE FROM leaves WHERE id = $1`, id)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id, status string, decidedBy *uuid.UUID) error {
	const query = `
UPDATE leaves
SET status = $2, decided_by = $3, updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, id, status, decidedBy)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Leave, error) {
	var l Leave
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	var leaves []Leave
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date DESC").
		Find(&leaves).Error
	return leaves, err
}

func (r *repository) FindVisibleByEmployees(ctx context.Context, employeeIDs []string) ([]VisibleLeave, error) {
	var rows []VisibleLeave
	err := r.db.WithContext(ctx).
		Table("leaves").
		Select("leaves.*, employees.name AS employee_name, employees.rank AS employee_rank").
		Joins("LEFT JOIN employees ON employees.id = leaves.employee_id").
		Where("leaves.employee_id IN ?", employeeIDs).
		Order("leaves.created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) EmployeeInfo(ctx context.Context, employeeID string) (string, string, error) {
	var row struct {
		Name string
		Rank string
	}
	err := r.db.WithContext(ctx).
		Table("employees").
		Select("name, rank").
		Where("id = ?", employeeID).
		Take(&row).Error
	return row.Name, row.Rank, err
}

func (r *repository) EmployeeIDsByRanks(ctx context.Context, ranks []string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Table("employees").
		Where("rank IN ?", ranks).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) CountApproved(ctx context.Context, employeeID string, kinds []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Where("kind IN ?", kinds).
		Count(&count).Error
	return count, err
}

func (r *repository) ApprovedUsage(ctx context.Context, kinds []string) (map[string]int, error) {
	var rows []struct {
		EmployeeID string
		Used       int
	}
	err := r.db.WithContext(ctx).
		Model(&Leave{}).
		Select("employee_id::text AS employee_id, COUNT(*) AS used").
		Where("status = ?", StatusApproved).
		Where("kind IN ?", kinds).
		Group("employee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	usage := make(map[string]int, len(rows))
	for _, row := range rows {
		usage[row.EmployeeID] = row.Used
	}
	return usage, nil
}

// AllowanceFor reads the externally maintained annual allowance. A missing
// row means zero; the allowance is trusted as-is, no accrual is computed.
func (r *repository) AllowanceFor(ctx context.Context, employeeID string) (int, error) {
	var total int
	err := r.db.WithContext(ctx).
		Table("leave_allowances").
		Select("COALESCE(SUM(total_allowed), 0)").
		Where("employee_id = ?", employeeID).
		Scan(&total).Error
	return total, err
}

func (r *repository) Allowances(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		EmployeeID string
		Total      int
	}
	err := r.db.WithContext(ctx).
		Table("leave_allowances").
		Select("employee_id::text AS employee_id, total_allowed AS total").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	allowances := make(map[string]int, len(rows))
	for _, row := range rows {
		allowances[row.EmployeeID] = row.Total
	}
	return allowances, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return failingExecer{err: err}
	}
	return sqlDB
}

type failingExecer struct{ err error }

func (f failingExecer) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, f.err
}
