package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/otp"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/shared/sms"
	userentity "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/entity"
	userrepo "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingService drives the service-request lifecycle from creation
// through OTP-verified completion.
type BookingService struct {
	repos       *repository.Repositories
	users       *userrepo.UserRepository
	eligibility *EligibilityService
	otp         *otp.Authority
	sms         *sms.Client
	audit       *Auditor
	logger      *zap.Logger

	bookingWindowDays int
	intervalMonths    int
}

func NewBookingService(
	repos *repository.Repositories,
	users *userrepo.UserRepository,
	eligibility *EligibilityService,
	authority *otp.Authority,
	smsClient *sms.Client,
	audit *Auditor,
	logger *zap.Logger,
	bookingWindowDays, intervalMonths int,
) *BookingService {
	return &BookingService{
		repos:             repos,
		users:             users,
		eligibility:       eligibility,
		otp:               authority,
		sms:               smsClient,
		audit:             audit,
		logger:            logger,
		bookingWindowDays: bookingWindowDays,
		intervalMonths:    intervalMonths,
	}
}

// CreateServiceRequest is the customer booking payload.
type CreateServiceRequest struct {
	CardID        string `json:"card_id" binding:"required"`
	Description   string `json:"description"`
	PreferredDate string `json:"preferred_date" binding:"required"`
}

// AdminCreateServiceRequest is the admin booking payload; the handler is
// assigned up front.
type AdminCreateServiceRequest struct {
	CardID        string  `json:"card_id" binding:"required"`
	CustomerID    string  `json:"customer_id" binding:"required"`
	AssignedToID  string  `json:"assigned_to_id" binding:"required"`
	Description   string  `json:"description"`
	PreferredDate string  `json:"preferred_date" binding:"required"`
	ScheduledAt   *string `json:"scheduled_at"`
	ServiceType   string  `json:"service_type"`
}

// AssignRequest sets or replaces the handler on a service.
type AssignRequest struct {
	AssignedToID string  `json:"assigned_to_id" binding:"required"`
	ScheduledAt  *string `json:"scheduled_at"`
}

// WorkReport is the handler's account of the visit, submitted together
// with the completion OTP.
type WorkReport struct {
	ActualComplaint string                   `json:"actual_complaint"`
	VisitType       string                   `json:"visit_type"`
	WorkDetail      string                   `json:"work_detail"`
	PartsReplaced   entity.PartsReplacedList `json:"parts_replaced"`
	AmountCharged   *float64                 `json:"amount_charged"`
}

// List returns services visible to the actor.
func (s *BookingService) List(ctx context.Context, actor Actor, page, pageSize int, filters map[string]string) ([]entity.Service, int64, error) {
	if filters == nil {
		filters = map[string]string{}
	}
	switch {
	case actor.IsAdmin():
		// unrestricted
	case actor.IsWorker():
		filters["assigned_to"] = actor.ID
	default:
		filters["requested_by"] = actor.ID
	}
	return s.repos.Service.FindAll(ctx, page, pageSize, filters)
}

func (s *BookingService) Get(ctx context.Context, actor Actor, id string) (*entity.Service, error) {
	svc, err := s.repos.Service.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOnService(svc) {
		return nil, fmt.Errorf("%w: service not visible to caller", ErrForbidden)
	}
	return svc, nil
}

// CustomerCreate books a visit. The preferred date must fall inside the
// booking window, and the request is auto-classified free/normal by the
// eligibility evaluator.
func (s *BookingService) CustomerCreate(ctx context.Context, actor Actor, req *CreateServiceRequest) (*entity.Service, error) {
	card, err := s.repos.Card.FindByID(ctx, req.CardID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && card.CustomerID != actor.ID {
		return nil, fmt.Errorf("%w: card belongs to another customer", ErrForbidden)
	}

	preferred, err := time.Parse("2006-01-02", req.PreferredDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid preferred_date %q", ErrValidation, req.PreferredDate)
	}
	today := dateOnly(time.Now())
	latest := today.AddDate(0, 0, s.bookingWindowDays)
	if preferred.Before(today) {
		return nil, fmt.Errorf("%w: preferred date is in the past", ErrValidation)
	}
	if preferred.After(latest) {
		return nil, fmt.Errorf("%w: preferred date beyond %d-day booking window", ErrValidation, s.bookingWindowDays)
	}

	serviceType := entity.ServiceTypeNormal
	elig, err := s.eligibility.Evaluate(ctx, card, preferred)
	if err != nil {
		return nil, err
	}
	if elig.Eligible {
		serviceType = entity.ServiceTypeFree
	}

	svc := &entity.Service{
		ID:            uuid.New().String()[:32],
		CardID:        card.ID,
		RequestedByID: actor.ID,
		ServiceType:   serviceType,
		Status:        entity.ServiceStatusPending,
		Description:   req.Description,
		PreferredDate: &preferred,
		CreatedByID:   actor.ID,
	}
	if err := s.repos.Service.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.sms.NotifyAdmin(fmt.Sprintf("New %s service request for %s (%s), preferred %s.",
		serviceType, card.Model, card.CustomerName, req.PreferredDate))

	s.audit.Record(ctx, actor.ID, "service.create", "service", svc.ID,
		map[string]interface{}{"service_type": serviceType})
	return svc, nil
}

// AdminCreate books a visit on behalf of a customer with the handler
// pre-assigned; the booking-window rule does not apply.
func (s *BookingService) AdminCreate(ctx context.Context, actor Actor, req *AdminCreateServiceRequest) (*entity.Service, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin booking is admin-only", ErrForbidden)
	}
	card, err := s.repos.Card.FindByID(ctx, req.CardID)
	if err != nil {
		return nil, err
	}

	customer, err := s.users.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("%w: customer %s not found", ErrValidation, req.CustomerID)
	}
	if customer.Role != userentity.RoleCustomer {
		return nil, fmt.Errorf("%w: %s is not a customer", ErrValidation, req.CustomerID)
	}
	handler, err := s.users.FindByID(ctx, req.AssignedToID)
	if err != nil {
		return nil, fmt.Errorf("%w: handler %s not found", ErrValidation, req.AssignedToID)
	}
	if handler.Role != userentity.RoleWorker {
		return nil, fmt.Errorf("%w: %s is not a worker", ErrValidation, req.AssignedToID)
	}

	preferred, err := time.Parse("2006-01-02", req.PreferredDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid preferred_date %q", ErrValidation, req.PreferredDate)
	}
	scheduled := preferred
	if req.ScheduledAt != nil {
		t, err := parseDatePtr(req.ScheduledAt)
		if err != nil {
			return nil, err
		}
		if t != nil {
			scheduled = *t
		}
	}

	serviceType := req.ServiceType
	if serviceType == "" {
		serviceType = entity.ServiceTypeNormal
	}
	if serviceType != entity.ServiceTypeNormal && serviceType != entity.ServiceTypeFree {
		return nil, fmt.Errorf("%w: unknown service type %q", ErrValidation, serviceType)
	}

	svc := &entity.Service{
		ID:            uuid.New().String()[:32],
		CardID:        card.ID,
		RequestedByID: customer.ID,
		ServiceType:   serviceType,
		Status:        entity.ServiceStatusAssigned,
		Description:   req.Description,
		PreferredDate: &preferred,
		ScheduledAt:   &scheduled,
		AssignedToID:  &handler.ID,
		CreatedByID:   actor.ID,
	}
	if err := s.repos.Service.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "service.admin_create", "service", svc.ID,
		map[string]interface{}{"assigned_to": handler.ID})
	return svc, nil
}

// Assign sets the handler, moving the service to assigned. The optional
// scheduled date persists atomically with the status change.
func (s *BookingService) Assign(ctx context.Context, actor Actor, id string, req *AssignRequest) (*entity.Service, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: assignment is admin-only", ErrForbidden)
	}
	svc, err := s.repos.Service.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(svc.Status, entity.ServiceStatusAssigned) {
		return nil, fmt.Errorf("%w: cannot assign from %s", ErrConflict, svc.Status)
	}

	handler, err := s.users.FindByID(ctx, req.AssignedToID)
	if err != nil {
		return nil, fmt.Errorf("%w: handler %s not found", ErrValidation, req.AssignedToID)
	}
	if handler.Role != userentity.RoleWorker {
		return nil, fmt.Errorf("%w: %s is not a worker", ErrValidation, req.AssignedToID)
	}

	svc.AssignedToID = &handler.ID
	svc.Status = entity.ServiceStatusAssigned
	if req.ScheduledAt != nil {
		t, err := parseDatePtr(req.ScheduledAt)
		if err != nil {
			return nil, err
		}
		svc.ScheduledAt = t
	}
	if err := s.repos.Service.Update(ctx, svc); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "service.assign", "service", svc.ID,
		map[string]interface{}{"assigned_to": handler.ID})
	return svc, nil
}

// Reschedule moves the service back to scheduled with a new date. The
// booking-window rule is deliberately not re-applied here.
func (s *BookingService) Reschedule(ctx context.Context, actor Actor, id, newDate string) (*entity.Service, error) {
	svc, err := s.repos.Service.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && svc.RequestedByID != actor.ID {
		return nil, fmt.Errorf("%w: only the owner or an admin may reschedule", ErrForbidden)
	}
	if !entity.CanTransition(svc.Status, entity.ServiceStatusScheduled) {
		return nil, fmt.Errorf("%w: cannot reschedule from %s", ErrConflict, svc.Status)
	}

	scheduled, err := time.Parse("2006-01-02", newDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, newDate)
	}
	svc.ScheduledAt = &scheduled
	svc.Status = entity.ServiceStatusScheduled
	if err := s.repos.Service.Update(ctx, svc); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "service.reschedule", "service", svc.ID,
		map[string]interface{}{"scheduled_at": newDate})
	return svc, nil
}

// Cancel terminates a service from any non-terminal state.
func (s *BookingService) Cancel(ctx context.Context, actor Actor, id string) (*entity.Service, error) {
	svc, err := s.repos.Service.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && svc.RequestedByID != actor.ID {
		return nil, fmt.Errorf("%w: only the owner or an admin may cancel", ErrForbidden)
	}
	if entity.IsTerminalStatus(svc.Status) {
		return nil, fmt.Errorf("%w: service already %s", ErrConflict, svc.Status)
	}

	svc.Status = entity.ServiceStatusCancelled
	if err := s.repos.Service.Update(ctx, svc); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "service.cancel", "service", svc.ID, nil)
	return svc, nil
}

// Start marks an assigned visit as underway.
func (s *BookingService) Start(ctx context.Context, actor Actor, id string) (*entity.Service, error) {
	svc, err := s.repos.Service.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(svc.AssignedToID != nil && *svc.AssignedToID == actor.ID) {
		return nil, fmt.Errorf("%w: only the assigned handler may start the visit", ErrForbidden)
	}
	if !entity.CanTransition(svc.Status, entity.ServiceStatusInProgress) {
		return nil, fmt.Errorf("%w: cannot start from %s", ErrConflict, svc.Status)
	}

	svc.Status = entity.ServiceStatusInProgress
	if err := s.repos.Service.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// RequestOTP issues a completion challenge to the customer's phone and
// moves the service to awaiting_otp. A prior outstanding challenge is
// overwritten. Returns the plaintext code for dev-echo deployments only;
// the caller must not expose it otherwise.
func (s *BookingService) RequestOTP(ctx context.Context, actor Actor, id, phone string) (*entity.Service, string, error) {
	svc, err := s.repos.Service.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !actor.IsAdmin() && !(svc.AssignedToID != nil && *svc.AssignedToID == actor.ID) {
		return nil, "", fmt.Errorf("%w: only the assigned handler may request verification", ErrForbidden)
	}
	if phone == "" {
		return nil, "", fmt.Errorf("%w: destination phone is required", ErrValidation)
	}
	if !entity.CanTransition(svc.Status, entity.ServiceStatusAwaitingOTP) {
		return nil, "", fmt.Errorf("%w: cannot request verification from %s", ErrConflict, svc.Status)
	}

	code := s.otp.Generate()
	expiry := s.otp.ExpiryTime()
	svc.OTPHash = s.otp.Hash(code)
	svc.OTPPhone = phone
	svc.OTPExpiresAt = &expiry
	svc.Status = entity.ServiceStatusAwaitingOTP
	if err := s.repos.Service.Update(ctx, svc); err != nil {
		return nil, "", err
	}

	// Delivery is fire-and-forget: a gateway failure never rolls back
	// the issued challenge.
	s.sms.SendAsync(phone, fmt.Sprintf("Your VST service verification code is %s. Valid for 10 minutes.", code))

	s.audit.Record(ctx, actor.ID, "service.request_otp", "service", svc.ID,
		map[string]interface{}{"phone": phone})
	return svc, code, nil
}

// VerifyOTP completes the visit. In one transaction: validates the
// challenge, records the work entry, raises a job card per part sent for
// repair, clears the OTP fields, and moves the service to completed or
// job_card_pending.
func (s *BookingService) VerifyOTP(ctx context.Context, actor Actor, id, code string, report *WorkReport) (*entity.Service, error) {
	var result *entity.Service

	err := s.repos.Service.Transaction(ctx, func(tx *gorm.DB) error {
		svc, err := s.repos.Service.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && !(svc.AssignedToID != nil && *svc.AssignedToID == actor.ID) {
			return fmt.Errorf("%w: only the assigned handler may complete the visit", ErrForbidden)
		}
		if svc.Status != entity.ServiceStatusAwaitingOTP {
			return fmt.Errorf("%w: service is %s, not awaiting verification", ErrConflict, svc.Status)
		}
		if !svc.HasOutstandingOTP() || time.Now().After(*svc.OTPExpiresAt) {
			return ErrOTPExpired
		}
		if !s.otp.Verify(code, svc.OTPHash) {
			return ErrOTPInvalid
		}

		visitType := report.VisitType
		if visitType == "" {
			visitType = entity.VisitTypeMandatoryService
		}
		entry := &entity.ServiceEntry{
			ID:              uuid.New().String()[:32],
			ServiceID:       svc.ID,
			PerformedByID:   &actor.ID,
			ActualComplaint: report.ActualComplaint,
			VisitType:       visitType,
			WorkDetail:      report.WorkDetail,
			PartsReplaced:   report.PartsReplaced,
			AmountCharged:   report.AmountCharged,
		}
		if err := s.repos.Entry.CreateTx(ctx, tx, entry); err != nil {
			return err
		}

		var repairParts []entity.PartReplaced
		for _, p := range report.PartsReplaced {
			if p.SentForRepair {
				repairParts = append(repairParts, p)
			}
		}

		svc.OTPHash = ""
		svc.OTPPhone = ""
		svc.OTPExpiresAt = nil
		svc.VisitType = visitType
		svc.AmountCharged = report.AmountCharged
		svc.IsPaid = report.AmountCharged != nil && *report.AmountCharged > 0

		if len(repairParts) > 0 {
			for _, p := range repairParts {
				jc := &entity.JobCard{
					ID:             uuid.New().String()[:32],
					ServiceID:      svc.ID,
					ServiceEntryID: entry.ID,
					CustomerID:     svc.RequestedByID,
					PartName:       p.Name,
					Description:    p.Description,
					StaffID:        &actor.ID,
					Status:         entity.JobCardStatusPending,
				}
				if err := s.repos.JobCard.CreateTx(ctx, tx, jc); err != nil {
					return err
				}
			}
			svc.Status = entity.ServiceStatusJobCardPending
		} else {
			next := AddMonths(dateOnly(time.Now()), s.intervalMonths)
			svc.NextServiceDate = &next
			svc.Status = entity.ServiceStatusCompleted
		}

		if err := s.repos.Service.UpdateTx(ctx, tx, svc); err != nil {
			return err
		}
		result = svc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "service.verify_otp", "service", result.ID,
		map[string]interface{}{"status": result.Status})
	return result, nil
}

// Entries lists the work entries logged against a service.
func (s *BookingService) Entries(ctx context.Context, actor Actor, serviceID string) ([]entity.ServiceEntry, error) {
	svc, err := s.repos.Service.FindByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOnService(svc) {
		return nil, fmt.Errorf("%w: service not visible to caller", ErrForbidden)
	}
	return s.repos.Entry.FindByService(ctx, serviceID)
}
