package handler

import (
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/gin-gonic/gin"
)

// JobCardHandler part-repair workflow endpoints.
type JobCardHandler struct {
	svc          *service.JobCardService
	devReturnOTP bool
}

func NewJobCardHandler(svc *service.JobCardService, devReturnOTP bool) *JobCardHandler {
	return &JobCardHandler{svc: svc, devReturnOTP: devReturnOTP}
}

// ListJobCards
// GET /api/v1/crm/jobcards?status=xxx&service_id=xxx&page=1&page_size=20
func (h *JobCardHandler) ListJobCards(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":     c.Query("status"),
		"service_id": c.Query("service_id"),
	}

	items, total, err := h.svc.List(c.Request.Context(), GetActor(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	paginated(c, items, page, pageSize, total)
}

// GetJobCard
// GET /api/v1/crm/jobcards/:id
func (h *JobCardHandler) GetJobCard(c *gin.Context) {
	jc, err := h.svc.Get(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, jc)
}

// UpdateJobCard
// PUT /api/v1/crm/jobcards/:id
func (h *JobCardHandler) UpdateJobCard(c *gin.Context) {
	var req service.UpdateJobCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	jc, err := h.svc.Update(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, jc)
}

// AdvanceJobCard moves a card one step along the repair chain.
// POST /api/v1/crm/jobcards/:id/advance
func (h *JobCardHandler) AdvanceJobCard(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	jc, err := h.svc.Advance(c.Request.Context(), GetActor(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, jc)
}

// UploadPhoto attaches a part photo.
// POST /api/v1/crm/jobcards/:id/photo
func (h *JobCardHandler) UploadPhoto(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "file is required: "+err.Error())
		return
	}
	defer file.Close()

	jc, err := h.svc.UploadPhoto(c.Request.Context(), GetActor(c), c.Param("id"),
		file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, jc)
}

// RequestReinstallOTP issues the reinstall challenge on the parent service.
// POST /api/v1/crm/jobcards/:id/request-reinstall-otp
func (h *JobCardHandler) RequestReinstallOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	jc, code, err := h.svc.RequestReinstallOTP(c.Request.Context(), GetActor(c), c.Param("id"), req.Phone)
	if err != nil {
		HandleError(c, err)
		return
	}

	data := gin.H{"job_card": jc}
	if h.devReturnOTP {
		data["otp"] = code
	}
	Success(c, data)
}

// VerifyReinstall completes the reinstall and may roll the parent
// service up to completed.
// POST /api/v1/crm/jobcards/:id/verify-reinstall
func (h *JobCardHandler) VerifyReinstall(c *gin.Context) {
	var req struct {
		OTP string `json:"otp" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	jc, err := h.svc.VerifyReinstall(c.Request.Context(), GetActor(c), c.Param("id"), req.OTP)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, jc)
}
