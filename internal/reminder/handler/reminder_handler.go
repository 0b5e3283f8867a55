package handler

import (
	"errors"

	crmhandler "github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/handler"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/repository"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/reminder/service"
	"github.com/gin-gonic/gin"
)

func handleError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		crmhandler.NotFound(c, err.Error())
		return
	}
	crmhandler.HandleError(c, err)
}

// ReminderHandler admin reminder endpoints. All routes sit behind the
// admin role middleware.
type ReminderHandler struct {
	svc *service.ReminderService
}

func NewReminderHandler(svc *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

// ListReminders
// GET /api/v1/reminders?page=1&page_size=20
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	page, pageSize := crmhandler.GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	crmhandler.Success(c, crmhandler.ListResponse{
		Items: items,
		Pagination: &crmhandler.Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}

// GetReminder
// GET /api/v1/reminders/:id
func (h *ReminderHandler) GetReminder(c *gin.Context) {
	rem, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, rem)
}

// CreateReminder
// POST /api/v1/reminders
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req service.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	rem, err := h.svc.Create(c.Request.Context(), crmhandler.GetUserID(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Created(c, rem)
}

// UpdateReminder
// PUT /api/v1/reminders/:id
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	var req service.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	rem, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, rem)
}

// DeleteReminder
// DELETE /api/v1/reminders/:id
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, nil)
}
