package service

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	userrepo "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/repository"
	"github.com/xuri/excelize/v2"
)

// ReportService recomputes milestone compliance over persisted card and
// service data. Pure reads: safe to retry, safe to run concurrently.
type ReportService struct {
	repos *repository.Repositories
	users *userrepo.UserRepository

	interval      Interval
	toleranceDays int
}

func NewReportService(repos *repository.Repositories, users *userrepo.UserRepository, interval Interval, toleranceDays int) *ReportService {
	return &ReportService{repos: repos, users: users, interval: interval, toleranceDays: toleranceDays}
}

// CardMilestoneReport is the per-card result: identity fields, the
// milestones due in the requested period, and the full sequence for
// surrounding context.
type CardMilestoneReport struct {
	CardID        string      `json:"card_id"`
	Model         string      `json:"model"`
	CustomerID    string      `json:"customer_id"`
	CustomerName  string      `json:"customer_name"`
	Region        string      `json:"region"`
	WarrantyStart *time.Time  `json:"warranty_start"`
	WarrantyEnd   *time.Time  `json:"warranty_end"`
	Milestones    []Milestone `json:"milestones"`
	AllMilestones []Milestone `json:"all_milestones"`
}

// MilestonesForCard evaluates one card over a reporting period. Cards
// without a coverage window, or of the other-machine class, yield nil.
func (s *ReportService) MilestonesForCard(ctx context.Context, cardID string, periodStart, periodEnd time.Time) (*CardMilestoneReport, error) {
	card, err := s.repos.Card.FindByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return s.evaluateCard(ctx, card, periodStart, periodEnd)
}

// WarrantyReport evaluates every reportable card over the period.
func (s *ReportService) WarrantyReport(ctx context.Context, periodStart, periodEnd time.Time) ([]CardMilestoneReport, error) {
	cards, err := s.repos.Card.FindWarrantyCards(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]CardMilestoneReport, 0, len(cards))
	for i := range cards {
		rep, err := s.evaluateCard(ctx, &cards[i], periodStart, periodEnd)
		if err != nil {
			return nil, err
		}
		if rep != nil {
			reports = append(reports, *rep)
		}
	}
	return reports, nil
}

func (s *ReportService) evaluateCard(ctx context.Context, card *entity.Card, periodStart, periodEnd time.Time) (*CardMilestoneReport, error) {
	if card.CardType == entity.CardTypeOtherMachine || !card.HasWarrantyWindow() {
		return nil, nil
	}

	history, err := s.freeServiceHistory(ctx, card.ID)
	if err != nil {
		return nil, err
	}

	dates := MilestoneDates(*card.WarrantyStartDate, *card.WarrantyEndDate, s.interval)
	all := EvaluateMilestones(dates, history, s.toleranceDays)

	return &CardMilestoneReport{
		CardID:        card.ID,
		Model:         card.Model,
		CustomerID:    card.CustomerID,
		CustomerName:  card.CustomerName,
		Region:        card.Region,
		WarrantyStart: card.WarrantyStartDate,
		WarrantyEnd:   card.WarrantyEndDate,
		Milestones:    FilterPeriod(all, periodStart, periodEnd),
		AllMilestones: all,
	}, nil
}

// freeServiceHistory collects completion dates of the card's free visits.
// A logged work entry supplies the date and handler; a service without
// entries contributes its completion timestamp.
func (s *ReportService) freeServiceHistory(ctx context.Context, cardID string) ([]FreeServiceRecord, error) {
	services, err := s.repos.Service.FindByCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	names := map[string]string{}
	var history []FreeServiceRecord
	for i := range services {
		svc := &services[i]
		if svc.ServiceType != entity.ServiceTypeFree || svc.Status != entity.ServiceStatusCompleted {
			continue
		}
		rec := FreeServiceRecord{Date: svc.UpdatedAt}
		entries, err := s.repos.Entry.FindByService(ctx, svc.ID)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			last := entries[len(entries)-1]
			rec.Date = last.CreatedAt
			if last.PerformedByID != nil {
				rec.HandlerID = *last.PerformedByID
				rec.HandlerName = s.handlerName(ctx, names, *last.PerformedByID)
			}
		}
		history = append(history, rec)
	}
	return history, nil
}

func (s *ReportService) handlerName(ctx context.Context, cache map[string]string, id string) string {
	if name, ok := cache[id]; ok {
		return name
	}
	// Lookup failures degrade to an empty name; they never fail the report.
	name := ""
	if user, err := s.users.FindByID(ctx, id); err == nil {
		name = user.Name
	}
	cache[id] = name
	return name
}

// UpcomingServices lists open services scheduled in the next withinDays days.
func (s *ReportService) UpcomingServices(ctx context.Context, withinDays int) ([]entity.Service, error) {
	now := dateOnly(time.Now())
	return s.repos.Service.FindScheduledBetween(ctx, now, now.AddDate(0, 0, withinDays+1))
}

// WriteCSV streams the report as CSV, one row per milestone.
func (s *ReportService) WriteCSV(w io.Writer, reports []CardMilestoneReport) error {
	cw := csv.NewWriter(w)
	header := []string{"card_id", "model", "customer_name", "region",
		"warranty_start", "warranty_end", "milestone_due", "done", "matched_date", "handler"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, rep := range reports {
		for _, m := range rep.Milestones {
			row := []string{
				rep.CardID,
				rep.Model,
				rep.CustomerName,
				rep.Region,
				formatDatePtr(rep.WarrantyStart),
				formatDatePtr(rep.WarrantyEnd),
				m.Due.Format("2006-01-02"),
				strconv.FormatBool(m.Done),
				formatDatePtr(m.MatchedDate),
				m.HandlerName,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX renders the report as a spreadsheet, one row per milestone.
func (s *ReportService) WriteXLSX(reports []CardMilestoneReport) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Warranty Report"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Card ID", "Model", "Customer", "Region",
		"Warranty Start", "Warranty End", "Milestone Due", "Done", "Matched Date", "Handler"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, rep := range reports {
		for _, m := range rep.Milestones {
			values := []interface{}{
				rep.CardID, rep.Model, rep.CustomerName, rep.Region,
				formatDatePtr(rep.WarrantyStart), formatDatePtr(rep.WarrantyEnd),
				m.Due.Format("2006-01-02"), m.Done, formatDatePtr(m.MatchedDate), m.HandlerName,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, err
				}
			}
			row++
		}
	}
	return f, nil
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
