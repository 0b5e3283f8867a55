package handler

import (
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler customer rating endpoints.
type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// CreateFeedback
// POST /api/v1/crm/feedback
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	var req service.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	fb, err := h.svc.Create(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, fb)
}

// ListFeedback
// GET /api/v1/crm/feedback?card_id=xxx&page=1&page_size=20
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.List(c.Request.Context(), GetActor(c), page, pageSize, c.Query("card_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	paginated(c, items, page, pageSize, total)
}
