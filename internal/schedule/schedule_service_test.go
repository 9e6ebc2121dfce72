package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/sa99080/pharmacy-hub/internal/leave"
	scheduleerrors "github.com/sa99080/pharmacy-hub/internal/schedule/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	approvedOverlappingFn      func(ctx context.Context, date time.Time) ([]Entry, error)
	approvedOverlappingRangeFn func(ctx context.Context, start, end time.Time) ([]Entry, error)
	approvedByEmployeeFn       func(ctx context.Context, employeeID string, kinds []string) ([]Entry, error)
}

func (f *fakeRepository) ApprovedOverlapping(ctx context.Context, date time.Time) ([]Entry, error) {
	return f.approvedOverlappingFn(ctx, date)
}

func (f *fakeRepository) ApprovedOverlappingRange(ctx context.Context, start, end time.Time) ([]Entry, error) {
	return f.approvedOverlappingRangeFn(ctx, start, end)
}

func (f *fakeRepository) ApprovedByEmployee(ctx context.Context, employeeID string, kinds []string) ([]Entry, error) {
	return f.approvedByEmployeeFn(ctx, employeeID, kinds)
}

func day(v string) time.Time {
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		panic(err)
	}
	return d
}

func singleDay(v string) Entry {
	return Entry{
		ID:         uuid.New(),
		EmployeeID: uuid.New(),
		Kind:       leave.KindAnnual,
		StartDate:  day(v),
		EndDate:    day(v),
	}
}

func TestForDate(t *testing.T) {
	repo := &fakeRepository{
		approvedOverlappingFn: func(ctx context.Context, date time.Time) ([]Entry, error) {
			assert.Equal(t, day("2025-03-10"), date)
			return []Entry{singleDay("2025-03-10")}, nil
		},
	}
	svc := NewService(repo)

	resp, err := svc.ForDate(context.Background(), "2025-03-10")

	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", resp.Date)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, "2025-03-10", resp.Entries[0].StartDate)
}

func TestForDate_InvalidFormat(t *testing.T) {
	svc := NewService(&fakeRepository{})

	_, err := svc.ForDate(context.Background(), "10-03-2025")
	assert.ErrorIs(t, err, scheduleerrors.ErrInvalidDate)
}

func TestForRange_BucketsByDay(t *testing.T) {
	repo := &fakeRepository{
		approvedOverlappingRangeFn: func(ctx context.Context, start, end time.Time) ([]Entry, error) {
			return []Entry{singleDay("2025-03-10"), singleDay("2025-03-10"), singleDay("2025-03-12")}, nil
		},
	}
	svc := NewService(repo)

	resp, err := svc.ForRange(context.Background(), "2025-03-09", "2025-03-12")

	require.NoError(t, err)
	assert.Len(t, resp.Days["2025-03-10"], 2)
	assert.Len(t, resp.Days["2025-03-12"], 1)
	assert.NotContains(t, resp.Days, "2025-03-11")
}

func TestForRange_RangedRowFansOutWithinWindow(t *testing.T) {
	ranged := Entry{
		ID:         uuid.New(),
		EmployeeID: uuid.New(),
		Kind:       leave.KindAnnual,
		StartDate:  day("2025-03-08"),
		EndDate:    day("2025-03-11"),
	}
	repo := &fakeRepository{
		approvedOverlappingRangeFn: func(ctx context.Context, start, end time.Time) ([]Entry, error) {
			return []Entry{ranged}, nil
		},
	}
	svc := NewService(repo)

	resp, err := svc.ForRange(context.Background(), "2025-03-10", "2025-03-12")

	require.NoError(t, err)
	// Days before the window are clipped even though the row overlaps.
	assert.NotContains(t, resp.Days, "2025-03-08")
	assert.NotContains(t, resp.Days, "2025-03-09")
	assert.Len(t, resp.Days["2025-03-10"], 1)
	assert.Len(t, resp.Days["2025-03-11"], 1)
}

func TestForRange_EndBeforeStart(t *testing.T) {
	svc := NewService(&fakeRepository{})

	_, err := svc.ForRange(context.Background(), "2025-03-12", "2025-03-10")
	assert.ErrorIs(t, err, scheduleerrors.ErrInvalidRange)
}

func TestUsedDates_SingleDayRow(t *testing.T) {
	repo := &fakeRepository{
		approvedByEmployeeFn: func(ctx context.Context, employeeID string, kinds []string) ([]Entry, error) {
			assert.Equal(t, leave.SelfConsumingKinds, kinds)
			return []Entry{singleDay("2025-01-01")}, nil
		},
	}
	svc := NewService(repo)

	resp, err := svc.UsedDates(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-01"}, resp.Dates)
}

func TestUsedDates_RangedRowAcrossMonthBoundary(t *testing.T) {
	ranged := Entry{
		ID:         uuid.New(),
		EmployeeID: uuid.New(),
		Kind:       leave.KindAnnual,
		StartDate:  day("2025-01-30"),
		EndDate:    day("2025-02-01"),
	}
	repo := &fakeRepository{
		approvedByEmployeeFn: func(ctx context.Context, employeeID string, kinds []string) ([]Entry, error) {
			return []Entry{ranged}, nil
		},
	}
	svc := NewService(repo)

	resp, err := svc.UsedDates(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-01-30", "2025-01-31", "2025-02-01"}, resp.Dates)
}

func TestUsedDates_DeduplicatesAndSorts(t *testing.T) {
	repo := &fakeRepository{
		approvedByEmployeeFn: func(ctx context.Context, employeeID string, kinds []string) ([]Entry, error) {
			return []Entry{
				singleDay("2025-05-02"),
				singleDay("2025-05-01"),
				singleDay("2025-05-02"),
			}, nil
		},
	}
	svc := NewService(repo)

	resp, err := svc.UsedDates(context.Background(), uuid.NewString())

	require.NoError(t, err)
	assert.Equal(t, []string{"2025-05-01", "2025-05-02"}, resp.Dates)
}
