package holiday

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sa99080/pharmacy-hub/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// GetYear lists the non-working dates for a year. The calendar is advisory;
// nothing in the leave flow rejects a holiday date.
func (h *Handler) GetYear(c *gin.Context) {
	yearParam := c.Query("year")
	year := time.Now().Year()
	if yearParam != "" {
		parsed, err := strconv.Atoi(yearParam)
		if err != nil || parsed < 1 {
			response.Error(c, http.StatusBadRequest, "INVALID_INPUT", "invalid year", nil)
			return
		}
		year = parsed
	}

	response.Success(c, http.StatusOK, gin.H{
		"year":  year,
		"dates": Dates(year),
	}, nil)
}

func (h *Handler) Check(c *gin.Context) {
	date := c.Query("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_INPUT", "invalid date, expected YYYY-MM-DD", nil)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"date":    date,
		"holiday": IsHoliday(date),
	}, nil)
}
