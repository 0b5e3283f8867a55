package handler

import (
	"errors"

	crmhandler "github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/handler"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/repository"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/service"
	"github.com/gin-gonic/gin"
)

// UserHandler auth and user-management endpoints.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		crmhandler.Error(c, 40101, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		crmhandler.NotFound(c, err.Error())
	default:
		crmhandler.HandleError(c, err)
	}
}

// Register customer self-signup.
// POST /api/v1/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Created(c, user)
}

// Login
// POST /api/v1/auth/login
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, pair)
}

// Refresh exchanges a refresh token for a new pair.
// POST /api/v1/auth/refresh
func (h *UserHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, pair)
}

// Me current profile.
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), crmhandler.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, user)
}

// UpdateMe edits the caller's profile.
// PUT /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	actorID := crmhandler.GetUserID(c)
	user, err := h.svc.Update(c.Request.Context(), actorID, c.GetString("user_role"), actorID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, user)
}

// ChangePassword
// POST /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), crmhandler.GetUserID(c), req.OldPassword, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, nil)
}

// ListUsers admin user listing.
// GET /api/v1/users?role=xxx&region=xxx&search=xxx
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, pageSize := crmhandler.GetPagination(c)
	filters := map[string]string{
		"role":   c.Query("role"),
		"region": c.Query("region"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
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

// AdminCreateUser creates an account of any role.
// POST /api/v1/users
func (h *UserHandler) AdminCreateUser(c *gin.Context) {
	var req service.AdminCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.AdminCreate(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Created(c, user)
}

// AdminUpdateUser edits any user.
// PUT /api/v1/users/:id
func (h *UserHandler) AdminUpdateUser(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		crmhandler.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.Update(c.Request.Context(), crmhandler.GetUserID(c), c.GetString("user_role"), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, user)
}

// AvailableWorkers workers free for assignment.
// GET /api/v1/users/workers/available?region=xxx
func (h *UserHandler) AvailableWorkers(c *gin.Context) {
	workers, err := h.svc.AvailableWorkers(c.Request.Context(), c.Query("region"))
	if err != nil {
		handleError(c, err)
		return
	}
	crmhandler.Success(c, gin.H{"items": workers})
}
