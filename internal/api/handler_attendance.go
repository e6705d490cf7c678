package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staffops-backend/internal/location"
	"staffops-backend/internal/model"
)

type clockInRequest struct {
	Location *model.LocationSample `json:"location"`
}

// PostClockIn handles POST /api/attendance/clock-in.
func (h *Handler) PostClockIn(c *gin.Context) {
	emp := employeeID(c)
	if emp == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity is required"})
		return
	}

	var req clockInRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample := h.resolveSample(c, req.Location)
	session, err := h.clock.ClockIn(c.Request.Context(), emp, sample)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

type clockOutRequest struct {
	SessionID string                `json:"session_id" binding:"required"`
	Location  *model.LocationSample `json:"location"`
}

// PostClockOut handles POST /api/attendance/clock-out.
func (h *Handler) PostClockOut(c *gin.Context) {
	emp := employeeID(c)
	if emp == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "caller identity is required"})
		return
	}

	var req clockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sample := h.resolveSample(c, req.Location)
	session, err := h.clock.ClockOut(c.Request.Context(), emp, req.SessionID, sample)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// resolveSample prefers the client-submitted sample; when the client sends
// none, the server-side capture adapter gets one bounded attempt.
func (h *Handler) resolveSample(c *gin.Context, submitted *model.LocationSample) model.LocationSample {
	if submitted != nil {
		return location.Normalize(*submitted)
	}
	return h.capture.Capture(c.Request.Context())
}
