package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler milestone compliance reporting endpoints. Admin-only
// routes; the resolver enforces that at routing level.
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func reportPeriod(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)

	if s := c.Query("period_start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, fmt.Errorf("invalid period_start %q", s)
		}
		start = t
	}
	if s := c.Query("period_end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return start, end, fmt.Errorf("invalid period_end %q", s)
		}
		end = t
	}
	return start, end, nil
}

// WarrantyReport milestones for all reportable cards.
// GET /api/v1/crm/reports/warranty?period_start=2024-01-01&period_end=2024-12-31
func (h *ReportHandler) WarrantyReport(c *gin.Context) {
	start, end, err := reportPeriod(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	reports, err := h.svc.WarrantyReport(c.Request.Context(), start, end)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": reports, "period_start": start.Format("2006-01-02"), "period_end": end.Format("2006-01-02")})
}

// CardReport milestones for one card.
// GET /api/v1/crm/reports/cards/:id
func (h *ReportHandler) CardReport(c *gin.Context) {
	start, end, err := reportPeriod(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	report, err := h.svc.MilestonesForCard(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		HandleError(c, err)
		return
	}
	if report == nil {
		BadRequest(c, "card is not covered by warranty reporting")
		return
	}
	Success(c, report)
}

// WarrantyReportCSV CSV download of the warranty report.
// GET /api/v1/crm/reports/warranty/csv
func (h *ReportHandler) WarrantyReportCSV(c *gin.Context) {
	start, end, err := reportPeriod(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	reports, err := h.svc.WarrantyReport(c.Request.Context(), start, end)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="warranty_report.csv"`)
	if err := h.svc.WriteCSV(c.Writer, reports); err != nil {
		InternalError(c, "write csv: "+err.Error())
	}
}

// WarrantyReportXLSX spreadsheet download of the warranty report.
// GET /api/v1/crm/reports/warranty/xlsx
func (h *ReportHandler) WarrantyReportXLSX(c *gin.Context) {
	start, end, err := reportPeriod(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	reports, err := h.svc.WarrantyReport(c.Request.Context(), start, end)
	if err != nil {
		HandleError(c, err)
		return
	}

	f, err := h.svc.WriteXLSX(reports)
	if err != nil {
		InternalError(c, "build spreadsheet: "+err.Error())
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="warranty_report.xlsx"`)
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write spreadsheet: "+err.Error())
	}
}

// UpcomingServices services scheduled in the next N days (default 7).
// GET /api/v1/crm/reports/upcoming?days=7
func (h *ReportHandler) UpcomingServices(c *gin.Context) {
	days := 7
	if d := c.Query("days"); d != "" {
		if v, err := strconv.Atoi(d); err == nil && v > 0 && v <= 90 {
			days = v
		}
	}

	services, err := h.svc.UpcomingServices(c.Request.Context(), days)
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"items": services})
}
