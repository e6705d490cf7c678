package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staffops-backend/internal/schedule"
)

type createScheduleRequest struct {
	EmployeeID   string `json:"employee_id" binding:"required"`
	ScheduleDate string `json:"schedule_date" binding:"required"`
	StartTime    string `json:"start_time" binding:"required"`
	EndTime      string `json:"end_time" binding:"required"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
}

// PostSchedule handles POST /api/schedules (admin).
func (h *Handler) PostSchedule(c *gin.Context) {
	admin := adminID(c)
	if admin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin identity is required"})
		return
	}

	var req createScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched, err := h.engine.Create(c.Request.Context(), schedule.CreateInput{
		EmployeeID:   req.EmployeeID,
		CreatedBy:    admin,
		ScheduleDate: req.ScheduleDate,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sched)
}

type bulkScheduleRequest struct {
	EmployeeID string   `json:"employee_id" binding:"required"`
	StartDate  string   `json:"start_date" binding:"required"`
	EndDate    string   `json:"end_date" binding:"required"`
	Weekdays   []string `json:"weekdays"`
	StartTime  string   `json:"start_time" binding:"required"`
	EndTime    string   `json:"end_time" binding:"required"`
	Title      string   `json:"title"`
	Location   string   `json:"location"`
}

// PostSchedulesBulk handles POST /api/schedules/bulk (admin). A request
// matching zero dates is a 200 with an empty list and a distinct message,
// not an error.
func (h *Handler) PostSchedulesBulk(c *gin.Context) {
	admin := adminID(c)
	if admin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin identity is required"})
		return
	}

	var req bulkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.engine.CreateBulk(c.Request.Context(), schedule.BulkInput{
		EmployeeID: req.EmployeeID,
		CreatedBy:  admin,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Weekdays:   req.Weekdays,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Title:      req.Title,
		Location:   req.Location,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	if len(created) == 0 {
		c.JSON(http.StatusOK, gin.H{"created": 0, "schedules": []any{}, "message": "no dates matched the requested weekdays"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(created), "schedules": created})
}

// GetSchedules handles GET /api/schedules?employee_id=...
func (h *Handler) GetSchedules(c *gin.Context) {
	emp := c.Query("employee_id")
	if emp == "" {
		emp = employeeID(c)
	}
	if emp == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "employee_id is required"})
		return
	}

	schedules, err := h.store.ListSchedules(c.Request.Context(), emp)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schedules)
}

// PostConfirm handles POST /api/schedules/:id/confirm (owner).
func (h *Handler) PostConfirm(c *gin.Context) {
	sched, err := h.engine.Confirm(c.Request.Context(), c.Param("id"), employeeID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

type cancellationRequest struct {
	Reason string `json:"reason"`
}

// PostRequestCancellation handles POST /api/schedules/:id/request-cancellation (owner).
func (h *Handler) PostRequestCancellation(c *gin.Context) {
	var req cancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched, err := h.engine.RequestCancellation(c.Request.Context(), c.Param("id"), employeeID(c), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// PostApproveCancellation handles POST /api/schedules/:id/approve-cancellation (admin).
func (h *Handler) PostApproveCancellation(c *gin.Context) {
	admin := adminID(c)
	if admin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin identity is required"})
		return
	}

	sched, err := h.engine.ApproveCancellation(c.Request.Context(), c.Param("id"), admin)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// PostForceCancel handles POST /api/schedules/:id/force-cancel (admin).
func (h *Handler) PostForceCancel(c *gin.Context) {
	admin := adminID(c)
	if admin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin identity is required"})
		return
	}

	var req cancellationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sched, err := h.engine.AdminForceCancel(c.Request.Context(), c.Param("id"), admin, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// PostComplete handles POST /api/schedules/:id/complete (admin).
func (h *Handler) PostComplete(c *gin.Context) {
	admin := adminID(c)
	if admin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin identity is required"})
		return
	}

	sched, err := h.engine.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sched)
}

// DeleteSchedule handles DELETE /api/schedules/:id (admin). Bypasses the
// state machine; the external audit collaborator records it.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	admin := adminID(c)
	if admin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin identity is required"})
		return
	}

	if err := h.engine.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetNotifications handles GET /api/schedules/:id/notifications (admin):
// the append-only audit trail of one schedule's fan-outs.
func (h *Handler) GetNotifications(c *gin.Context) {
	admin := adminID(c)
	if admin == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "admin identity is required"})
		return
	}

	logs, err := h.store.ListNotificationLogs(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
