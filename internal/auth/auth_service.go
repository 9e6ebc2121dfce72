package auth

import (
	"context"
	"os"
	"time"

	autherrors "github.com/sa99080/pharmacy-hub/internal/auth/errors"
	"github.com/sa99080/pharmacy-hub/internal/employee"
	employeeerrors "github.com/sa99080/pharmacy-hub/internal/employee/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, name, password string) (accessToken, refreshToken string, resp AuthResponse, err error)
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)
	GetMe(ctx context.Context, accountID string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
}

type service struct {
	repo         Repository
	employeeRepo employee.Repository
	logger       *zap.Logger
}

func NewService(repo Repository, employeeRepo employee.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, employeeRepo: employeeRepo, logger: l}
}

func (s *service) Login(ctx context.Context, name, password string) (string, string, AuthResponse, error) {
	account, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	empRank, err := s.repo.EmployeeRank(ctx, account.EmployeeID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrAccountNotFound
	}

	accessToken, err := s.generateToken(account, empRank, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	refreshToken, err := s.generateToken(account, empRank, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	s.logger.Info("login success",
		zap.String("account_id", account.ID.String()),
		zap.String("rank", empRank),
	)

	return accessToken, refreshToken, AuthResponse{
		ID:         account.ID.String(),
		EmployeeID: account.EmployeeID.String(),
		Name:       account.Name,
		Email:      account.Email,
		Rank:       empRank,
	}, nil
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}

	accountIDStr, ok := claims["user_id"].(string)
	if !ok {
		return "", "", AuthResponse{}, autherrors.ErrInvalidToken
	}
	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidAccountID
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrAccountNotFound
	}

	empRank, err := s.repo.EmployeeRank(ctx, account.EmployeeID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrAccountNotFound
	}

	newAccess, err := s.generateToken(account, empRank, accessTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}
	newRefresh, err := s.generateToken(account, empRank, refreshTokenTTL)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed
	}

	return newAccess, newRefresh, AuthResponse{
		ID:         account.ID.String(),
		EmployeeID: account.EmployeeID.String(),
		Name:       account.Name,
		Email:      account.Email,
		Rank:       empRank,
	}, nil
}

func (s *service) GetMe(ctx context.Context, accountID string) (*AuthResponse, error) {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return nil, autherrors.ErrInvalidAccountID
	}

	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrAccountNotFound
	}

	empRank, err := s.repo.EmployeeRank(ctx, account.EmployeeID)
	if err != nil {
		return nil, autherrors.ErrAccountNotFound
	}

	return &AuthResponse{
		ID:         account.ID.String(),
		EmployeeID: account.EmployeeID.String(),
		Name:       account.Name,
		Email:      account.Email,
		Rank:       empRank,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResponse{}, err
	}

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AuthResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	emp, err := s.employeeRepo.FindByID(ctx, employeeID.String())
	if err != nil {
		return AuthResponse{}, employeeerrors.ErrEmployeeNotFound
	}

	account := &Account{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Name:       emp.Name,
		Email:      req.Email,
		Password:   string(hashed),
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
	}

	s.logger.Info("register success",
		zap.String("account_id", account.ID.String()),
		zap.String("employee_id", employeeID.String()),
	)

	return AuthResponse{
		ID:         account.ID.String(),
		EmployeeID: account.EmployeeID.String(),
		Name:       account.Name,
		Email:      account.Email,
		Rank:       emp.Rank,
	}, nil
}

func (s *service) generateToken(account *Account, empRank string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     account.ID.String(),
		"employee_id": account.EmployeeID.String(),
		"name":        account.Name,
		"rank":        empRank,
		"exp":         time.Now().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
