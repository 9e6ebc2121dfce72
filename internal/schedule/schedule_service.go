package schedule

import (
	"context"
	"sort"
	"time"

	"github.com/sa99080/pharmacy-hub/internal/leave"
	scheduleerrors "github.com/sa99080/pharmacy-hub/internal/schedule/errors"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

//go:generate mockgen -source=schedule_service.go -destination=mock/schedule_service_mock.go -package=mock
type Service interface {
	ForDate(ctx context.Context, date string) (DayScheduleResponse, error)
	ForRange(ctx context.Context, start, end string) (RangeScheduleResponse, error)
	UsedDates(ctx context.Context, employeeID string) (UsedDatesResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("schedule.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("schedule.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) ForDate(ctx context.Context, date string) (DayScheduleResponse, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return DayScheduleResponse{}, scheduleerrors.ErrInvalidDate
	}

	entries, err := s.repo.ApprovedOverlapping(ctx, day)
	if err != nil {
		s.logger.Error("schedule for date failed", zap.String("date", date), zap.Error(err))
		return DayScheduleResponse{}, err
	}

	return DayScheduleResponse{Date: date, Entries: mapEntries(entries)}, nil
}

// ForRange buckets overlapping entries under every contained day. With
// single-day rows each entry lands in exactly one bucket; ranged rows would
// fan out across their span.
func (s *service) ForRange(ctx context.Context, start, end string) (RangeScheduleResponse, error) {
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return RangeScheduleResponse{}, scheduleerrors.ErrInvalidDate
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return RangeScheduleResponse{}, scheduleerrors.ErrInvalidDate
	}
	if to.Before(from) {
		return RangeScheduleResponse{}, scheduleerrors.ErrInvalidRange
	}

	entries, err := s.repo.ApprovedOverlappingRange(ctx, from, to)
	if err != nil {
		s.logger.Error("schedule for range failed",
			zap.String("start", start),
			zap.String("end", end),
			zap.Error(err),
		)
		return RangeScheduleResponse{}, err
	}

	days := make(map[string][]EntryResponse)
	for _, e := range entries {
		for _, d := range expandDays(e.StartDate, e.EndDate) {
			if d.Before(from) || d.After(to) {
				continue
			}
			key := d.Format(dateLayout)
			days[key] = append(days[key], mapEntry(e))
		}
	}

	return RangeScheduleResponse{Start: start, End: end, Days: days}, nil
}

// UsedDates expands each approved leave-consuming row into its calendar days
// for the annual overview. Overseas days are not shaded; they do not consume
// the personal allowance.
func (s *service) UsedDates(ctx context.Context, employeeID string) (UsedDatesResponse, error) {
	entries, err := s.repo.ApprovedByEmployee(ctx, employeeID, leave.SelfConsumingKinds)
	if err != nil {
		s.logger.Error("used dates failed", zap.String("employee_id", employeeID), zap.Error(err))
		return UsedDatesResponse{}, err
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		for _, d := range expandDays(e.StartDate, e.EndDate) {
			seen[d.Format(dateLayout)] = struct{}{}
		}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	return UsedDatesResponse{EmployeeID: employeeID, Dates: dates}, nil
}

// expandDays walks from start to end inclusive using calendar-date arithmetic
// so the expansion stays correct across DST transitions.
func expandDays(start, end time.Time) []time.Time {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func mapEntry(e Entry) EntryResponse {
	return EntryResponse{
		ID:           e.ID.String(),
		EmployeeID:   e.EmployeeID.String(),
		EmployeeName: e.EmployeeName,
		EmployeeRank: e.EmployeeRank,
		Title:        e.Title,
		Kind:         e.Kind,
		StartDate:    e.StartDate.Format(dateLayout),
		EndDate:      e.EndDate.Format(dateLayout),
	}
}

func mapEntries(entries []Entry) []EntryResponse {
	resp := make([]EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = mapEntry(e)
	}
	return resp
}
