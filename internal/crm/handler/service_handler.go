package handler

import (
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/gin-gonic/gin"
)

// ServiceHandler service-request lifecycle endpoints.
type ServiceHandler struct {
	svc          *service.BookingService
	devReturnOTP bool
}

func NewServiceHandler(svc *service.BookingService, devReturnOTP bool) *ServiceHandler {
	return &ServiceHandler{svc: svc, devReturnOTP: devReturnOTP}
}

// ListServices
// GET /api/v1/crm/services?status=xxx&card_id=xxx&page=1&page_size=20
func (h *ServiceHandler) ListServices(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":       c.Query("status"),
		"card_id":      c.Query("card_id"),
		"service_type": c.Query("service_type"),
	}

	items, total, err := h.svc.List(c.Request.Context(), GetActor(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	paginated(c, items, page, pageSize, total)
}

// GetService
// GET /api/v1/crm/services/:id
func (h *ServiceHandler) GetService(c *gin.Context) {
	svc, err := h.svc.Get(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, svc)
}

// CreateService customer booking.
// POST /api/v1/crm/services
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req service.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	svc, err := h.svc.CustomerCreate(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, svc)
}

// AdminCreateService booking on behalf of a customer, handler pre-assigned.
// POST /api/v1/crm/services/admin
func (h *ServiceHandler) AdminCreateService(c *gin.Context) {
	var req service.AdminCreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	svc, err := h.svc.AdminCreate(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, svc)
}

// AssignService
// POST /api/v1/crm/services/:id/assign
func (h *ServiceHandler) AssignService(c *gin.Context) {
	var req service.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	svc, err := h.svc.Assign(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, svc)
}

// RescheduleService
// POST /api/v1/crm/services/:id/reschedule
func (h *ServiceHandler) RescheduleService(c *gin.Context) {
	var req struct {
		ScheduledAt string `json:"scheduled_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	svc, err := h.svc.Reschedule(c.Request.Context(), GetActor(c), c.Param("id"), req.ScheduledAt)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, svc)
}

// CancelService
// POST /api/v1/crm/services/:id/cancel
func (h *ServiceHandler) CancelService(c *gin.Context) {
	svc, err := h.svc.Cancel(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, svc)
}

// StartService
// POST /api/v1/crm/services/:id/start
func (h *ServiceHandler) StartService(c *gin.Context) {
	svc, err := h.svc.Start(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, svc)
}

// RequestOTP issues the completion challenge.
// POST /api/v1/crm/services/:id/request-otp
func (h *ServiceHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	svc, code, err := h.svc.RequestOTP(c.Request.Context(), GetActor(c), c.Param("id"), req.Phone)
	if err != nil {
		HandleError(c, err)
		return
	}

	data := gin.H{"service": svc}
	if h.devReturnOTP {
		data["otp"] = code
	}
	Success(c, data)
}

// VerifyOTP completes the visit.
// POST /api/v1/crm/services/:id/verify-otp
func (h *ServiceHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		OTP    string             `json:"otp" binding:"required"`
		Report service.WorkReport `json:"report"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	svc, err := h.svc.VerifyOTP(c.Request.Context(), GetActor(c), c.Param("id"), req.OTP, &req.Report)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, svc)
}

// ListEntries work entries of one service.
// GET /api/v1/crm/services/:id/entries
func (h *ServiceHandler) ListEntries(c *gin.Context) {
	entries, err := h.svc.Entries(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": entries})
}
