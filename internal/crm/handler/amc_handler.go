package handler

import (
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/gin-gonic/gin"
)

// AMCHandler industrial maintenance-contract endpoints.
type AMCHandler struct {
	svc *service.AMCService
}

func NewAMCHandler(svc *service.AMCService) *AMCHandler {
	return &AMCHandler{svc: svc}
}

// CreateAMC
// POST /api/v1/crm/amc
func (h *AMCHandler) CreateAMC(c *gin.Context) {
	var req service.CreateAMCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	amc, err := h.svc.Create(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, amc)
}

// ListAMCByCard
// GET /api/v1/crm/amc?card_id=xxx
func (h *AMCHandler) ListAMCByCard(c *gin.Context) {
	cardID := c.Query("card_id")
	if cardID == "" {
		BadRequest(c, "card_id is required")
		return
	}

	items, err := h.svc.ListByCard(c.Request.Context(), GetActor(c), cardID)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": items})
}

// DeleteAMC
// DELETE /api/v1/crm/amc/:id
func (h *AMCHandler) DeleteAMC(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
