package employeeerrors

import (
	"net/http"

	"github.com/sa99080/pharmacy-hub/internal/shared/apperror"
)

var (
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidRank = apperror.New(
		apperror.CodeInvalidInput,
		"unknown rank",
		http.StatusBadRequest,
	)
	ErrInvalidHireDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid hire_date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrEmailAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"an employee with this email already exists",
		http.StatusConflict,
	)
	ErrRosterManagementForbidden = apperror.New(
		apperror.CodeForbidden,
		"only top-tier ranks may manage the roster",
		http.StatusForbidden,
	)
)
