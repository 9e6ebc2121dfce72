package leaveerrors

import (
	"net/http"

	"github.com/sa99080/pharmacy-hub/internal/shared/apperror"
)

var (
	ErrEmptyDateSet = apperror.New(
		apperror.CodeInvalidInput,
		"at least one date is required",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrUnknownKind = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave kind",
		http.StatusBadRequest,
	)
	ErrUnknownStatus = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave status",
		http.StatusBadRequest,
	)
	ErrOverseasNotAllowed = apperror.New(
		apperror.CodeInvalidInput,
		"the overseas kind is reserved for top-tier ranks",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrNotOwner = apperror.New(
		apperror.CodeForbidden,
		"only the owner may modify this request",
		http.StatusForbidden,
	)
	ErrCannotApproveRank = apperror.New(
		apperror.CodeForbidden,
		"your rank cannot decide requests for this employee",
		http.StatusForbidden,
	)
	ErrDeleteNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending requests can be deleted",
		http.StatusConflict,
	)
)
