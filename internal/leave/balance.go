package leave

import (
	"context"
	"errors"

	leaveerrors "github.com/sa99080/pharmacy-hub/internal/leave/errors"
	"github.com/sa99080/pharmacy-hub/internal/rank"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=balance.go -destination=mock/balance_service_mock.go -package=mock
type BalanceService interface {
	Balance(ctx context.Context, employeeID string) (BalanceResponse, error)
	Allowances(ctx context.Context) (map[string]int, error)
	ManagementUsage(ctx context.Context) (map[string]int, error)
}

type balanceService struct {
	repo   Repository
	logger *zap.Logger
}

func NewBalanceService(repo Repository, logger ...*zap.Logger) BalanceService {
	l := zap.L().Named("leave.balance")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.balance")
	}
	return &balanceService{repo: repo, logger: l}
}

// Balance computes the self-service panel numbers. Overseas days never count
// against the personal allowance, and top-tier ranks carry no cap at all so
// the panel is suppressed for them.
func (s *balanceService) Balance(ctx context.Context, employeeID string) (BalanceResponse, error) {
	_, empRank, err := s.repo.EmployeeInfo(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		return BalanceResponse{}, err
	}

	if !rank.PolicyFor(rank.Rank(empRank)).ShowsBalance {
		return BalanceResponse{EmployeeID: employeeID, Capped: false}, nil
	}

	total, err := s.repo.AllowanceFor(ctx, employeeID)
	if err != nil {
		return BalanceResponse{}, err
	}
	used, err := s.repo.CountApproved(ctx, employeeID, SelfConsumingKinds)
	if err != nil {
		return BalanceResponse{}, err
	}

	resp := BalanceResponse{
		EmployeeID: employeeID,
		Capped:     true,
		Total:      total,
		Used:       int(used),
		Remaining:  total - int(used),
	}

	s.logger.Debug("balance computed",
		zap.String("employee_id", employeeID),
		zap.Int("total", resp.Total),
		zap.Int("used", resp.Used),
	)
	return resp, nil
}

func (s *balanceService) Allowances(ctx context.Context) (map[string]int, error) {
	return s.repo.Allowances(ctx)
}

// ManagementUsage counts approved days in the administration scope, which
// includes overseas leave unlike the personal panel.
func (s *balanceService) ManagementUsage(ctx context.Context) (map[string]int, error) {
	return s.repo.ApprovedUsage(ctx, ManagementKinds)
}
