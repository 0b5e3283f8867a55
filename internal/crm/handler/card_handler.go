package handler

import (
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/gin-gonic/gin"
)

// CardHandler machine card endpoints.
type CardHandler struct {
	svc *service.CardService
}

func NewCardHandler(svc *service.CardService) *CardHandler {
	return &CardHandler{svc: svc}
}

// ListCards
// GET /api/v1/crm/cards?search=xxx&region=xxx&card_type=xxx&page=1&page_size=20
func (h *CardHandler) ListCards(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search":    c.Query("search"),
		"region":    c.Query("region"),
		"card_type": c.Query("card_type"),
	}

	items, total, err := h.svc.List(c.Request.Context(), GetActor(c), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}
	paginated(c, items, page, pageSize, total)
}

// GetCard
// GET /api/v1/crm/cards/:id
func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.svc.Get(c.Request.Context(), GetActor(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, card)
}

// CreateCard
// POST /api/v1/crm/cards
func (h *CardHandler) CreateCard(c *gin.Context) {
	var req service.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	card, err := h.svc.Create(c.Request.Context(), GetActor(c), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, card)
}

// UpdateCard
// PUT /api/v1/crm/cards/:id
func (h *CardHandler) UpdateCard(c *gin.Context) {
	var req service.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	card, err := h.svc.Update(c.Request.Context(), GetActor(c), c.Param("id"), &req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, card)
}

// DeleteCard
// DELETE /api/v1/crm/cards/:id
func (h *CardHandler) DeleteCard(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetActor(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, nil)
}
