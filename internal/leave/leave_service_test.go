package leave

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/sa99080/pharmacy-hub/internal/employee"
	leaveerrors "github.com/sa99080/pharmacy-hub/internal/leave/errors"
	"github.com/sa99080/pharmacy-hub/internal/messaging/kafka"
	"github.com/sa99080/pharmacy-hub/internal/rank"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	insertBatchFn            func(ctx context.Context, rows []*Leave) error
	deleteByIDFn             func(ctx context.Context, id string) error
	updateStatusFn           func(ctx context.Context, id, status string, decidedBy *uuid.UUID) error
	findByIDFn               func(ctx context.Context, id string) (*Leave, error)
	findByEmployeeFn         func(ctx context.Context, employeeID string) ([]Leave, error)
	findVisibleByEmployeesFn func(ctx context.Context, employeeIDs []string) ([]VisibleLeave, error)
	employeeInfoFn           func(ctx context.Context, employeeID string) (string, string, error)
	employeeIDsByRanksFn     func(ctx context.Context, ranks []string) ([]string, error)
	countApprovedFn          func(ctx context.Context, employeeID string, kinds []string) (int64, error)
	approvedUsageFn          func(ctx context.Context, kinds []string) (map[string]int, error)
	allowanceForFn           func(ctx context.Context, employeeID string) (int, error)
	allowancesFn             func(ctx context.Context) (map[string]int, error)
}

func (f *fakeRepository) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepository) InsertBatch(ctx context.Context, rows []*Leave) error {
	return f.insertBatchFn(ctx, rows)
}

func (f *fakeRepository) DeleteByID(ctx context.Context, id string) error {
	return f.deleteByIDFn(ctx, id)
}

func (f *fakeRepository) UpdateStatus(ctx context.Context, id, status string, decidedBy *uuid.UUID) error {
	return f.updateStatusFn(ctx, id, status, decidedBy)
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*Leave, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepository) FindByEmployee(ctx context.Context, employeeID string) ([]Leave, error) {
	return f.findByEmployeeFn(ctx, employeeID)
}

func (f *fakeRepository) FindVisibleByEmployees(ctx context.Context, employeeIDs []string) ([]VisibleLeave, error) {
	return f.findVisibleByEmployeesFn(ctx, employeeIDs)
}

func (f *fakeRepository) EmployeeInfo(ctx context.Context, employeeID string) (string, string, error) {
	return f.employeeInfoFn(ctx, employeeID)
}

func (f *fakeRepository) EmployeeIDsByRanks(ctx context.Context, ranks []string) ([]string, error) {
	return f.employeeIDsByRanksFn(ctx, ranks)
}

func (f *fakeRepository) CountApproved(ctx context.Context, employeeID string, kinds []string) (int64, error) {
	return f.countApprovedFn(ctx, employeeID, kinds)
}

func (f *fakeRepository) ApprovedUsage(ctx context.Context, kinds []string) (map[string]int, error) {
	return f.approvedUsageFn(ctx, kinds)
}

func (f *fakeRepository) AllowanceFor(ctx context.Context, employeeID string) (int, error) {
	return f.allowanceForFn(ctx, employeeID)
}

func (f *fakeRepository) Allowances(ctx context.Context) (map[string]int, error) {
	return f.allowancesFn(ctx)
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
	err     error
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error           { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id, reason string) error { return nil }

func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestSubmit_PendingForRegularRank(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	employeeID := uuid.NewString()
	var inserted []*Leave
	repo := &fakeRepository{
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "Hana", string(rank.Pharmacist), nil
		},
		insertBatchFn: func(ctx context.Context, rows []*Leave) error {
			inserted = rows
			return nil
		},
	}
	outbox := &fakeOutbox{}
	svc := NewServiceWithOutbox(db, repo, outbox)

	resp, err := svc.Submit(context.Background(), employeeID, SubmitLeaveRequest{
		Kind:  KindAnnual,
		Dates: []string{"2025-03-12", "2025-03-10", "2025-03-11"},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)
	assert.False(t, resp.Resubmitted)
	require.Len(t, inserted, 3)

	// Dates come back sorted ascending and one row per day.
	assert.Equal(t, "2025-03-10", inserted[0].StartDate.Format("2006-01-02"))
	assert.Equal(t, "2025-03-11", inserted[1].StartDate.Format("2006-01-02"))
	assert.Equal(t, "2025-03-12", inserted[2].StartDate.Format("2006-01-02"))
	for _, row := range inserted {
		assert.Equal(t, resp.BatchID, row.BatchID.String())
		assert.Equal(t, StatusPending, row.Status)
		assert.Equal(t, row.StartDate, row.EndDate)
	}

	require.Len(t, outbox.created, 1)
	assert.Equal(t, "leave_submitted", outbox.created[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_AutoApprovedForTopTier(t *testing.T) {
	for _, topRank := range []rank.Rank{rank.Director, rank.DeputyDirector} {
		t.Run(string(topRank), func(t *testing.T) {
			db, mock := newTxDB(t)
			mock.ExpectBegin()
			mock.ExpectCommit()

			repo := &fakeRepository{
				employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
					return "Boss", string(topRank), nil
				},
				insertBatchFn: func(ctx context.Context, rows []*Leave) error { return nil },
			}
			svc := NewService(db, repo)

			resp, err := svc.Submit(context.Background(), uuid.NewString(), SubmitLeaveRequest{
				Kind:  KindOverseas,
				Dates: []string{"2025-07-01"},
			})

			require.NoError(t, err)
			assert.Equal(t, StatusApproved, resp.Status)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmit_EmptyDatesRejectedBeforeTx(t *testing.T) {
	db, mock := newTxDB(t)
	// No Begin expected: validation fails before any database work.

	repo := &fakeRepository{}
	svc := NewService(db, repo)

	_, err := svc.Submit(context.Background(), uuid.NewString(), SubmitLeaveRequest{
		Kind:  KindAnnual,
		Dates: []string{},
	})

	assert.ErrorIs(t, err, leaveerrors.ErrEmptyDateSet)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmit_InvalidDateFormat(t *testing.T) {
	db, _ := newTxDB(t)
	svc := NewService(db, &fakeRepository{})

	_, err := svc.Submit(context.Background(), uuid.NewString(), SubmitLeaveRequest{
		Kind:  KindAnnual,
		Dates: []string{"2025/03/10"},
	})

	assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
}

func TestSubmit_OverseasForbiddenBelowTopTier(t *testing.T) {
	db, _ := newTxDB(t)
	repo := &fakeRepository{
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "Hana", string(rank.Pharmacist), nil
		},
	}
	svc := NewService(db, repo)

	_, err := svc.Submit(context.Background(), uuid.NewString(), SubmitLeaveRequest{
		Kind:  KindOverseas,
		Dates: []string{"2025-07-01"},
	})

	assert.ErrorIs(t, err, leaveerrors.ErrOverseasNotAllowed)
}

func TestSubmit_RollbackOnInsertFailure(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeRepository{
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "Hana", string(rank.DispensaryAssistant), nil
		},
		insertBatchFn: func(ctx context.Context, rows []*Leave) error {
			return errors.New("insert failed on second row")
		},
	}
	outbox := &fakeOutbox{}
	svc := NewServiceWithOutbox(db, repo, outbox)

	_, err := svc.Submit(context.Background(), uuid.NewString(), SubmitLeaveRequest{
		Kind:  KindAnnual,
		Dates: []string{"2025-03-10", "2025-03-11"},
	})

	require.Error(t, err)
	assert.Empty(t, outbox.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResubmit_ApprovedReturnsToPending(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	owner := uuid.New()
	oldID := uuid.New()
	deleted := ""
	var inserted []*Leave
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Leave, error) {
			return &Leave{ID: oldID, EmployeeID: owner, Status: StatusApproved}, nil
		},
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "Hana", string(rank.Pharmacist), nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
		insertBatchFn: func(ctx context.Context, rows []*Leave) error {
			inserted = rows
			return nil
		},
	}
	outbox := &fakeOutbox{}
	svc := NewServiceWithOutbox(db, repo, outbox)

	resp, err := svc.Resubmit(context.Background(), owner.String(), oldID.String(), SubmitLeaveRequest{
		Kind:  KindHalfDay,
		Dates: []string{"2025-04-01"},
	})

	require.NoError(t, err)
	assert.Equal(t, oldID.String(), deleted)
	assert.True(t, resp.Resubmitted)
	assert.Equal(t, StatusPending, resp.Status)
	require.Len(t, inserted, 1)
	assert.NotEqual(t, oldID, inserted[0].ID)

	require.Len(t, outbox.created, 1)
	assert.Equal(t, "leave_submitted", outbox.created[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResubmit_NotOwner(t *testing.T) {
	db, _ := newTxDB(t)
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Leave, error) {
			return &Leave{ID: uuid.New(), EmployeeID: uuid.New(), Status: StatusPending}, nil
		},
	}
	svc := NewService(db, repo)

	_, err := svc.Resubmit(context.Background(), uuid.NewString(), uuid.NewString(), SubmitLeaveRequest{
		Kind:  KindAnnual,
		Dates: []string{"2025-04-01"},
	})

	assert.ErrorIs(t, err, leaveerrors.ErrNotOwner)
}

func TestResubmit_NotFound(t *testing.T) {
	db, _ := newTxDB(t)
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Leave, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewService(db, repo)

	_, err := svc.Resubmit(context.Background(), uuid.NewString(), uuid.NewString(), SubmitLeaveRequest{
		Kind:  KindAnnual,
		Dates: []string{"2025-04-01"},
	})

	assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
}

func TestDelete_OnlyPending(t *testing.T) {
	db, _ := newTxDB(t)
	owner := uuid.New()
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Leave, error) {
			return &Leave{ID: uuid.New(), EmployeeID: owner, Status: StatusApproved}, nil
		},
	}
	svc := NewService(db, repo)

	err := svc.Delete(context.Background(), owner.String(), uuid.NewString())
	assert.ErrorIs(t, err, leaveerrors.ErrDeleteNotPending)
}

func TestDelete_Pending(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	owner := uuid.New()
	deleted := ""
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Leave, error) {
			return &Leave{ID: uuid.New(), EmployeeID: owner, Status: StatusPending}, nil
		},
		deleteByIDFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := NewService(db, repo)

	id := uuid.NewString()
	err := svc.Delete(context.Background(), owner.String(), id)

	require.NoError(t, err)
	assert.Equal(t, id, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus_ApproveSetsDecider(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	actor := uuid.New()
	owner := uuid.New()
	ranks := map[string]string{
		actor.String(): string(rank.DispensaryManager),
		owner.String(): string(rank.DispensaryAssistant),
	}
	var gotStatus string
	var gotDecider *uuid.UUID
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Leave, error) {
			return &Leave{ID: uuid.New(), BatchID: uuid.New(), EmployeeID: owner, Status: StatusPending}, nil
		},
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "x", ranks[id], nil
		},
		updateStatusFn: func(ctx context.Context, id, status string, decidedBy *uuid.UUID) error {
			gotStatus = status
			gotDecider = decidedBy
			return nil
		},
	}
	outbox := &fakeOutbox{}
	svc := NewServiceWithOutbox(db, repo, outbox)

	resp, err := svc.SetStatus(context.Background(), actor.String(), uuid.NewString(), StatusApproved)

	require.NoError(t, err)
	assert.Equal(t, StatusApproved, gotStatus)
	require.NotNil(t, gotDecider)
	assert.Equal(t, actor, *gotDecider)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.Equal(t, actor.String(), resp.DecidedBy)

	require.Len(t, outbox.created, 1)
	assert.Equal(t, "leave_decided", outbox.created[0].EventType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus_RevertToPendingClearsDecider(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	actor := uuid.New()
	owner := uuid.New()
	ranks := map[string]string{
		actor.String(): string(rank.Director),
		owner.String(): string(rank.DeputyDirector),
	}
	decidedBy := uuid.New()
	var gotDecider *uuid.UUID = &decidedBy
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Leave, error) {
			return &Leave{ID: uuid.New(), EmployeeID: owner, Status: StatusApproved, DecidedBy: &decidedBy}, nil
		},
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "x", ranks[id], nil
		},
		updateStatusFn: func(ctx context.Context, id, status string, db *uuid.UUID) error {
			gotDecider = db
			return nil
		},
	}
	svc := NewService(db, repo)

	resp, err := svc.SetStatus(context.Background(), actor.String(), uuid.NewString(), StatusPending)

	require.NoError(t, err)
	assert.Nil(t, gotDecider)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Empty(t, resp.DecidedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatus_RankOutsideScope(t *testing.T) {
	db, _ := newTxDB(t)
	actor := uuid.New()
	owner := uuid.New()
	ranks := map[string]string{
		actor.String(): string(rank.DispensaryManager),
		owner.String(): string(rank.SystemsAssistant),
	}
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Leave, error) {
			return &Leave{ID: uuid.New(), EmployeeID: owner, Status: StatusPending}, nil
		},
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "x", ranks[id], nil
		},
	}
	svc := NewService(db, repo)

	_, err := svc.SetStatus(context.Background(), actor.String(), uuid.NewString(), StatusApproved)
	assert.ErrorIs(t, err, leaveerrors.ErrCannotApproveRank)
}

func TestSetStatus_UnknownStatus(t *testing.T) {
	db, _ := newTxDB(t)
	svc := NewService(db, &fakeRepository{})

	_, err := svc.SetStatus(context.Background(), uuid.NewString(), uuid.NewString(), "CANCELLED")
	assert.ErrorIs(t, err, leaveerrors.ErrUnknownStatus)
}

func TestGetVisible_NoApprovableRanks(t *testing.T) {
	db, _ := newTxDB(t)
	repo := &fakeRepository{
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "Hana", string(rank.Pharmacist), nil
		},
		// The list and id lookups must not run for a rank without scope.
		employeeIDsByRanksFn: func(ctx context.Context, ranks []string) ([]string, error) {
			t.Fatal("unexpected EmployeeIDsByRanks call")
			return nil, nil
		},
	}
	svc := NewService(db, repo)

	resp, err := svc.GetVisible(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestGetVisible_NoSubordinates(t *testing.T) {
	db, _ := newTxDB(t)
	repo := &fakeRepository{
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "Mgr", string(rank.SystemsManager), nil
		},
		employeeIDsByRanksFn: func(ctx context.Context, ranks []string) ([]string, error) {
			assert.Equal(t, []string{string(rank.SystemsAssistant)}, ranks)
			return nil, nil
		},
	}
	svc := NewService(db, repo)

	resp, err := svc.GetVisible(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.Empty(t, resp)
}

func TestGetVisible_ReturnsJoinedRows(t *testing.T) {
	db, _ := newTxDB(t)
	subordinate := uuid.New()
	repo := &fakeRepository{
		employeeInfoFn: func(ctx context.Context, id string) (string, string, error) {
			return "Dir", string(rank.Director), nil
		},
		employeeIDsByRanksFn: func(ctx context.Context, ranks []string) ([]string, error) {
			return []string{subordinate.String()}, nil
		},
		findVisibleByEmployeesFn: func(ctx context.Context, ids []string) ([]VisibleLeave, error) {
			return []VisibleLeave{{
				ID:           uuid.New(),
				BatchID:      uuid.New(),
				EmployeeID:   subordinate,
				EmployeeName: "Hana",
				EmployeeRank: string(rank.Pharmacist),
				Kind:         KindAnnual,
				StartDate:    time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
				EndDate:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
				Status:       StatusPending,
			}}, nil
		},
	}
	svc := NewService(db, repo)

	resp, err := svc.GetVisible(context.Background(), uuid.NewString())

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "Hana", resp[0].EmployeeName)
	assert.Equal(t, string(rank.Pharmacist), resp[0].EmployeeRank)
}

// The balance service also serves the employee roster aggregate.
var _ employee.UsageProvider = (BalanceService)(nil)
