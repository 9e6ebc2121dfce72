package scheduleerrors

import (
	"net/http"

	"github.com/sa99080/pharmacy-hub/internal/shared/apperror"
)

var (
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidInput,
		"range end must not precede range start",
		http.StatusBadRequest,
	)
)
