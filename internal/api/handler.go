package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"staffops-backend/config"
	"staffops-backend/internal/clock"
	"staffops-backend/internal/location"
	"staffops-backend/internal/schedule"
	"staffops-backend/internal/store"
)

// Handler bundles the engine services behind the HTTP surface.
type Handler struct {
	store   store.Store
	clock   *clock.Ledger
	engine  *schedule.Engine
	capture location.Adapter
	attnCfg config.AttendanceConfig
}

// NewHandler creates the handler set.
func NewHandler(s store.Store, cl *clock.Ledger, eng *schedule.Engine, capture location.Adapter, attnCfg config.AttendanceConfig) *Handler {
	return &Handler{
		store:   s,
		clock:   cl,
		engine:  eng,
		capture: capture,
		attnCfg: attnCfg,
	}
}

// employeeID returns the caller identity injected by the upstream gateway.
// Authentication itself is an external collaborator; by the time a request
// reaches the engine the header is trusted.
func employeeID(c *gin.Context) string {
	return c.GetHeader("X-Employee-ID")
}

func adminID(c *gin.Context) string {
	return c.GetHeader("X-Admin-ID")
}

// writeError maps the engine error taxonomy onto HTTP statuses with the
// actionable message the caller layer is expected to show.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrAlreadyOpen):
		c.JSON(http.StatusConflict, gin.H{"error": "you are already clocked in"})
	case errors.Is(err, store.ErrAlreadyClosed):
		c.JSON(http.StatusConflict, gin.H{"error": "this session is already clocked out"})
	case errors.Is(err, store.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "the schedule no longer permits this action"})
	case errors.Is(err, store.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have access to this resource"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
