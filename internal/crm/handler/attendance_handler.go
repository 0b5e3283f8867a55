package handler

import (
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/gin-gonic/gin"
)

// AttendanceHandler worker attendance endpoints.
type AttendanceHandler struct {
	svc *service.AttendanceService
}

func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// MarkAttendance
// POST /api/v1/crm/attendance
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req struct {
		UserID string `json:"user_id"`
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	att, err := h.svc.Mark(c.Request.Context(), GetActor(c), req.UserID, req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, att)
}

// TodayAttendance
// GET /api/v1/crm/attendance/today
func (h *AttendanceHandler) TodayAttendance(c *gin.Context) {
	items, err := h.svc.Today(c.Request.Context(), GetActor(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// AttendanceHistory
// GET /api/v1/crm/attendance/history?user_id=xxx&from=2024-01-01&to=2024-01-31
func (h *AttendanceHandler) AttendanceHistory(c *gin.Context) {
	now := time.Now()
	from := now.AddDate(0, -1, 0)
	to := now

	if s := c.Query("from"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			BadRequest(c, "invalid from date")
			return
		}
		from = t
	}
	if s := c.Query("to"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			BadRequest(c, "invalid to date")
			return
		}
		to = t
	}

	items, err := h.svc.History(c.Request.Context(), GetActor(c), c.Query("user_id"), from, to)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}
