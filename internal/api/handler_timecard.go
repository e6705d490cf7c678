package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"staffops-backend/internal/store"
	"staffops-backend/internal/timecard"
)

// GetTimecard handles GET /api/attendance/timecard?employee_id&year&month.
// The projection is read-only: it folds the month's sessions and the
// configured hourly rate, and writes nothing.
func (h *Handler) GetTimecard(c *gin.Context) {
	emp := c.Query("employee_id")
	if emp == "" {
		emp = employeeID(c)
	}
	if emp == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_id is required"})
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid year is required"})
		return
	}
	monthNum, err := strconv.Atoi(c.Query("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid month (1-12) is required"})
		return
	}
	month := time.Month(monthNum)

	loc := h.attnCfg.Location()
	from, to := timecard.MonthBounds(year, month, loc)
	sessions, err := h.store.ListSessionsForRange(c.Request.Context(), emp, from, to)
	if err != nil {
		writeError(c, err)
		return
	}

	rate := decimal.Zero
	if r, err := h.store.GetRate(c.Request.Context(), emp); err == nil {
		rate = r.HourlyRate
	} else if !store.IsNotFound(err) {
		writeError(c, err)
		return
	}

	summary := timecard.Aggregate(sessions, emp, year, month, loc, h.attnCfg.OvertimeThresholdHours, rate)
	c.JSON(http.StatusOK, summary)
}
