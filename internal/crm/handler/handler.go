package handler

import (
	"errors"
	"strconv"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/gin-gonic/gin"
)

// Handlers CRM handler set.
type Handlers struct {
	Card       *CardHandler
	Service    *ServiceHandler
	JobCard    *JobCardHandler
	Report     *ReportHandler
	Attendance *AttendanceHandler
	Feedback   *FeedbackHandler
	AMC        *AMCHandler
}

func NewHandlers(services *service.Services, devReturnOTP bool) *Handlers {
	return &Handlers{
		Card:       NewCardHandler(services.Card),
		Service:    NewServiceHandler(services.Booking, devReturnOTP),
		JobCard:    NewJobCardHandler(services.JobCard, devReturnOTP),
		Report:     NewReportHandler(services.Report),
		Attendance: NewAttendanceHandler(services.Attendance),
		Feedback:   NewFeedbackHandler(services.Feedback),
		AMC:        NewAMCHandler(services.AMC),
	}
}

// === response helpers ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// HandleError maps business-layer sentinels onto response codes. State
// is never mutated on any of these paths, so 4xx answers are safe to retry.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrOTPExpired):
		Error(c, 40010, err.Error())
	case errors.Is(err, service.ErrOTPInvalid):
		Error(c, 40011, err.Error())
	case errors.Is(err, service.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		Conflict(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetActor reconstructs the business-layer caller identity from the JWT
// context values.
func GetActor(c *gin.Context) service.Actor {
	return service.Actor{
		ID:     GetUserID(c),
		Role:   c.GetString("user_role"),
		Region: c.GetString("user_region"),
		Phone:  c.GetString("user_phone"),
	}
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func paginated(c *gin.Context, items interface{}, page, pageSize int, total int64) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}
