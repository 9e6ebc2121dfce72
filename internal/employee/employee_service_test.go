package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	employeeerrors "github.com/sa99080/pharmacy-hub/internal/employee/errors"
	"github.com/sa99080/pharmacy-hub/internal/rank"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createFn   func(ctx context.Context, e *Employee) error
	findAllFn  func(ctx context.Context) ([]Employee, error)
	findByIDFn func(ctx context.Context, id string) (*Employee, error)
	updateFn   func(ctx context.Context, e *Employee) error
	deleteFn   func(ctx context.Context, id string) error
}

func (f *fakeRepository) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, e *Employee) error {
	return f.createFn(ctx, e)
}

func (f *fakeRepository) FindAll(ctx context.Context) ([]Employee, error) {
	return f.findAllFn(ctx)
}

func (f *fakeRepository) FindByID(ctx context.Context, id string) (*Employee, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepository) Update(ctx context.Context, e *Employee) error {
	return f.updateFn(ctx, e)
}

func (f *fakeRepository) Delete(ctx context.Context, id string) error {
	return f.deleteFn(ctx, id)
}

type fakeUsageProvider struct {
	allowances map[string]int
	usage      map[string]int
}

func (f *fakeUsageProvider) Allowances(ctx context.Context) (map[string]int, error) {
	return f.allowances, nil
}

func (f *fakeUsageProvider) ManagementUsage(ctx context.Context) (map[string]int, error) {
	return f.usage, nil
}

func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func hire(v string) *time.Time {
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		panic(err)
	}
	return &d
}

func TestCreate_RequiresManagementRank(t *testing.T) {
	db, _ := newTxDB(t)
	svc := NewService(db, &fakeRepository{}, &fakeUsageProvider{}, nil)

	for _, actor := range []rank.Rank{rank.Pharmacist, rank.DispensaryAssistant, rank.SystemsAssistant} {
		_, err := svc.Create(context.Background(), string(actor), CreateEmployeeRequest{
			Name: "New", Email: "new@pharmacy.local", Rank: string(rank.Pharmacist),
		})
		assert.ErrorIs(t, err, employeeerrors.ErrRosterManagementForbidden, actor)
	}
}

func TestCreate_Success(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel(OptionsCacheKey).SetVal(1)

	var created *Employee
	repo := &fakeRepository{
		createFn: func(ctx context.Context, e *Employee) error {
			created = e
			return nil
		},
	}
	svc := NewService(db, repo, &fakeUsageProvider{}, rdb)

	resp, err := svc.Create(context.Background(), string(rank.Director), CreateEmployeeRequest{
		Name:     "Hana",
		Email:    "hana@pharmacy.local",
		Rank:     string(rank.Pharmacist),
		HireDate: "2024-02-01",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "Hana", created.Name)
	assert.Equal(t, "2024-02-01", resp.HireDate)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestCreate_InvalidRank(t *testing.T) {
	db, _ := newTxDB(t)
	svc := NewService(db, &fakeRepository{}, &fakeUsageProvider{}, nil)

	_, err := svc.Create(context.Background(), string(rank.Director), CreateEmployeeRequest{
		Name: "X", Email: "x@pharmacy.local", Rank: "INTERN",
	})
	assert.ErrorIs(t, err, employeeerrors.ErrInvalidRank)
}

func TestCreate_InvalidHireDate(t *testing.T) {
	db, _ := newTxDB(t)
	svc := NewService(db, &fakeRepository{}, &fakeUsageProvider{}, nil)

	_, err := svc.Create(context.Background(), string(rank.Director), CreateEmployeeRequest{
		Name: "X", Email: "x@pharmacy.local", Rank: string(rank.Pharmacist), HireDate: "02/01/2024",
	})
	assert.ErrorIs(t, err, employeeerrors.ErrInvalidHireDate)
}

func TestGetRoster_SortsByRankOrderThenHireDate(t *testing.T) {
	db, _ := newTxDB(t)

	director := Employee{ID: uuid.New(), Name: "Dir", Rank: string(rank.Director), HireDate: hire("2010-01-01")}
	seniorPharm := Employee{ID: uuid.New(), Name: "Senior", Rank: string(rank.Pharmacist), HireDate: hire("2015-06-01")}
	juniorPharm := Employee{ID: uuid.New(), Name: "Junior", Rank: string(rank.Pharmacist), HireDate: hire("2022-03-01")}

	repo := &fakeRepository{
		findAllFn: func(ctx context.Context) ([]Employee, error) {
			return []Employee{juniorPharm, director, seniorPharm}, nil
		},
	}
	usage := &fakeUsageProvider{
		allowances: map[string]int{seniorPharm.ID.String(): 15},
		usage:      map[string]int{seniorPharm.ID.String(): 4},
	}
	svc := NewService(db, repo, usage, nil)

	entries, err := svc.GetRoster(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Dir", entries[0].Name)
	assert.Equal(t, "Senior", entries[1].Name)
	assert.Equal(t, "Junior", entries[2].Name)

	assert.Equal(t, 15, entries[1].TotalLeave)
	assert.Equal(t, 4, entries[1].UsedLeave)
	assert.Equal(t, 11, entries[1].RemainingLeave)

	// Employees with no allowance row stay at zero.
	assert.Zero(t, entries[0].TotalLeave)
}

func TestGetOptions_ServesFromCache(t *testing.T) {
	db, _ := newTxDB(t)

	cached := []EmployeeResponse{{ID: uuid.NewString(), Name: "Cached", Rank: string(rank.Pharmacist)}}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(OptionsCacheKey).SetVal(string(payload))

	repo := &fakeRepository{
		findAllFn: func(ctx context.Context) ([]Employee, error) {
			t.Fatal("unexpected FindAll call on cache hit")
			return nil, nil
		},
	}
	svc := NewService(db, repo, &fakeUsageProvider{}, rdb)

	resp, err := svc.GetOptions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cached, resp)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestGetOptions_MissQueriesAndFillsCache(t *testing.T) {
	db, _ := newTxDB(t)

	emp := Employee{ID: uuid.New(), Name: "Hana", Email: "hana@pharmacy.local", Rank: string(rank.Pharmacist)}
	expected, err := json.Marshal([]EmployeeResponse{{
		ID: emp.ID.String(), Name: emp.Name, Email: emp.Email, Rank: emp.Rank,
	}})
	require.NoError(t, err)

	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(OptionsCacheKey).RedisNil()
	redisMock.ExpectSet(OptionsCacheKey, expected, time.Hour).SetVal("OK")

	repo := &fakeRepository{
		findAllFn: func(ctx context.Context) ([]Employee, error) {
			return []Employee{emp}, nil
		},
	}
	svc := NewService(db, repo, &fakeUsageProvider{}, rdb)

	resp, err := svc.GetOptions(context.Background())

	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, "Hana", resp[0].Name)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, id string) (*Employee, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewService(db, repo, &fakeUsageProvider{}, nil)

	_, err := svc.Update(context.Background(), string(rank.DeputyDirector), uuid.NewString(), UpdateEmployeeRequest{
		Name: "X", Rank: string(rank.Pharmacist),
	})

	assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_Success(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	id := uuid.New()
	deleted := ""
	repo := &fakeRepository{
		findByIDFn: func(ctx context.Context, s string) (*Employee, error) {
			return &Employee{ID: id}, nil
		},
		deleteFn: func(ctx context.Context, s string) error {
			deleted = s
			return nil
		},
	}
	svc := NewService(db, repo, &fakeUsageProvider{}, nil)

	err := svc.Delete(context.Background(), string(rank.Director), id.String())

	require.NoError(t, err)
	assert.Equal(t, id.String(), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
