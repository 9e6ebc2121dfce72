package employee

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"time"

	employeeerrors "github.com/sa99080/pharmacy-hub/internal/employee/errors"
	"github.com/sa99080/pharmacy-hub/internal/rank"
	"github.com/sa99080/pharmacy-hub/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const OptionsCacheKey = "employees:options"

// UsageProvider supplies the externally maintained allowance totals and the
// management-scope approved usage counts, keyed by employee id. Implemented
// by the leave balance service; declared here so the roster aggregate does
// not import the leave package.
type UsageProvider interface {
	Allowances(ctx context.Context) (map[string]int, error)
	ManagementUsage(ctx context.Context) (map[string]int, error)
}

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorRank string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetRoster(ctx context.Context) ([]RosterEntry, error)
	GetOptions(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, actorRank, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, actorRank, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	usage  UsageProvider
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, usage UsageProvider, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		usage:  usage,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, actorRank string, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("rank", req.Rank),
		zap.String("email", req.Email),
	)

	if !rank.PolicyFor(rank.Rank(actorRank)).ManagesEmployees {
		return EmployeeResponse{}, employeeerrors.ErrRosterManagementForbidden
	}
	if !rank.Valid(req.Rank) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidRank
	}

	var hireDate *time.Time
	if req.HireDate != "" {
		d, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			s.logger.Warn("create employee invalid hire_date",
				zap.String("hire_date", req.HireDate),
				zap.Error(err),
			)
			return EmployeeResponse{}, employeeerrors.ErrInvalidHireDate
		}
		hireDate = &d
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e := &Employee{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Rank:     req.Rank,
		HireDate: hireDate,
	}

	if err := qtx.Create(ctx, e); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create employee commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", e.ID.String()),
	)

	return mapToResponse(*e), nil
}

// GetRoster returns every employee joined with their allowance and the
// management-scope used count, sorted by rank order then hire date. The
// management scope counts approved overseas days too, unlike the
// self-service balance.
func (s *service) GetRoster(ctx context.Context) ([]RosterEntry, error) {
	emps, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	allowances, err := s.usage.Allowances(ctx)
	if err != nil {
		return nil, err
	}
	used, err := s.usage.ManagementUsage(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]RosterEntry, len(emps))
	for i, e := range emps {
		id := e.ID.String()
		total := allowances[id]
		u := used[id]
		entries[i] = RosterEntry{
			EmployeeResponse: mapToResponse(e),
			TotalLeave:       total,
			UsedLeave:        u,
			RemainingLeave:   total - u,
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		oi := rank.PolicyFor(rank.Rank(entries[i].Rank)).Order
		oj := rank.PolicyFor(rank.Rank(entries[j].Rank)).Order
		if oi != oj {
			return oi < oj
		}
		return entries[i].HireDate < entries[j].HireDate
	})

	return entries, nil
}

// GetOptions serves the lightweight name/rank listing used by pickers. The
// result is cached in Redis and concurrent misses collapse to one query.
func (s *service) GetOptions(ctx context.Context) ([]EmployeeResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, OptionsCacheKey).Result(); err == nil {
			var resp []EmployeeResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(OptionsCacheKey, func() (interface{}, error) {
		emps, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := mapToListResponse(emps)

		if s.rdb != nil {
			if jsonData, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, OptionsCacheKey, jsonData, time.Hour)
			}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]EmployeeResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}
	return mapToResponse(*e), nil
}

func (s *service) Update(ctx context.Context, actorRank, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	if !rank.PolicyFor(rank.Rank(actorRank)).ManagesEmployees {
		return EmployeeResponse{}, employeeerrors.ErrRosterManagementForbidden
	}
	if !rank.Valid(req.Rank) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidRank
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	e, err := qtx.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EmployeeResponse{}, err
	}

	e.Name = req.Name
	e.Rank = req.Rank

	if err := qtx.Update(ctx, e); err != nil {
		s.logger.Error("update employee persist failed",
			zap.String("employee_id", id),
			zap.Error(err),
		)
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return EmployeeResponse{}, err
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*e), nil
}

// Delete removes the roster row. Leave history is deliberately left in
// place; a departed employee's past rows still feed the aggregate views.
func (s *service) Delete(ctx context.Context, actorRank, id string) error {
	if !rank.PolicyFor(rank.Rank(actorRank)).ManagesEmployees {
		return employeeerrors.ErrRosterManagementForbidden
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := qtx.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return employeeerrors.ErrEmployeeNotFound
		}
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateOptionsCache(ctx)
	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, OptionsCacheKey).Err(); err != nil {
		s.logger.Error("invalidate employee options cache failed",
			zap.Error(err),
			zap.String("key", OptionsCacheKey),
		)
	}
}

func mapToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:    e.ID.String(),
		Name:  e.Name,
		Email: e.Email,
		Rank:  e.Rank,
	}
	if e.HireDate != nil {
		resp.HireDate = e.HireDate.Format("2006-01-02")
	}
	return resp
}

func mapToListResponse(emps []Employee) []EmployeeResponse {
	resp := make([]EmployeeResponse, len(emps))
	for i, e := range emps {
		resp[i] = mapToResponse(e)
	}
	return resp
}
