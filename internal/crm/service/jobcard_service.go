package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/entity"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/otp"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/shared/sms"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JobCardService drives the part-repair sub-workflow: pickup, office
// intake, repair, and the OTP-gated reinstall that can roll the parent
// service up to completed.
type JobCardService struct {
	repos  *repository.Repositories
	otp    *otp.Authority
	sms    *sms.Client
	audit  *Auditor
	logger *zap.Logger

	minioClient *minio.Client
	minioBucket string

	intervalMonths int
}

func NewJobCardService(
	repos *repository.Repositories,
	authority *otp.Authority,
	smsClient *sms.Client,
	audit *Auditor,
	logger *zap.Logger,
	intervalMonths int,
) *JobCardService {
	return &JobCardService{
		repos:          repos,
		otp:            authority,
		sms:            smsClient,
		audit:          audit,
		logger:         logger,
		intervalMonths: intervalMonths,
	}
}

// SetObjectStore wires the part-photo store. Optional; uploads fail with
// a validation error when absent.
func (s *JobCardService) SetObjectStore(client *minio.Client, bucket string) {
	s.minioClient = client
	s.minioBucket = bucket
}

// UpdateJobCardRequest carries the admin-editable fields.
type UpdateJobCardRequest struct {
	Description      *string `json:"description"`
	StaffID          *string `json:"staff_id"`
	ReinstallStaffID *string `json:"reinstall_staff_id"`
}

func (s *JobCardService) List(ctx context.Context, actor Actor, page, pageSize int, filters map[string]string) ([]entity.JobCard, int64, error) {
	if filters == nil {
		filters = map[string]string{}
	}
	switch {
	case actor.IsAdmin():
		// unrestricted
	case actor.IsWorker():
		filters["staff_id"] = actor.ID
	default:
		filters["customer_id"] = actor.ID
	}
	return s.repos.JobCard.FindAll(ctx, page, pageSize, filters)
}

func (s *JobCardService) Get(ctx context.Context, actor Actor, id string) (*entity.JobCard, error) {
	jc, err := s.repos.JobCard.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !s.canView(actor, jc) {
		return nil, fmt.Errorf("%w: job card not visible to caller", ErrForbidden)
	}
	return jc, nil
}

func (s *JobCardService) canView(actor Actor, jc *entity.JobCard) bool {
	if actor.IsWorker() {
		return (jc.StaffID != nil && *jc.StaffID == actor.ID) ||
			(jc.ReinstallStaffID != nil && *jc.ReinstallStaffID == actor.ID)
	}
	return jc.CustomerID == actor.ID
}

// Update edits assignment fields. Admin-only.
func (s *JobCardService) Update(ctx context.Context, actor Actor, id string, req *UpdateJobCardRequest) (*entity.JobCard, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: job card edits are admin-only", ErrForbidden)
	}
	jc, err := s.repos.JobCard.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Description != nil {
		jc.Description = *req.Description
	}
	if req.StaffID != nil {
		jc.StaffID = req.StaffID
	}
	if req.ReinstallStaffID != nil {
		jc.ReinstallStaffID = req.ReinstallStaffID
	}
	if err := s.repos.JobCard.Update(ctx, jc); err != nil {
		return nil, err
	}
	return jc, nil
}

// Advance moves a card one step along the pre-reinstall chain:
// pending → get_from_customer → received_office → repair_completed.
// Admin-only: the repair chain is office-driven. Reinstall has its own
// OTP-gated path and is rejected here.
func (s *JobCardService) Advance(ctx context.Context, actor Actor, id, target string) (*entity.JobCard, error) {
	if target == entity.JobCardStatusReinstalled {
		return nil, fmt.Errorf("%w: reinstall requires verification", ErrValidation)
	}
	jc, err := s.repos.JobCard.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: job card status changes are admin-only", ErrForbidden)
	}
	if !entity.CanTransitionJobCard(jc.Status, target) {
		return nil, fmt.Errorf("%w: cannot move job card from %s to %s", ErrConflict, jc.Status, target)
	}

	now := time.Now()
	jc.Status = target
	switch target {
	case entity.JobCardStatusGetFromCustomer:
		jc.GetFromCustomerAt = &now
	case entity.JobCardStatusReceivedOffice:
		jc.ReceivedOfficeAt = &now
	case entity.JobCardStatusRepairCompleted:
		jc.RepairCompletedAt = &now
	}
	if err := s.repos.JobCard.Update(ctx, jc); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "jobcard.advance", "job_card", jc.ID,
		map[string]interface{}{"status": target})
	return jc, nil
}

// UploadPhoto stores a part photo and records its URL on the card.
func (s *JobCardService) UploadPhoto(ctx context.Context, actor Actor, id string, reader io.Reader, size int64, contentType string) (*entity.JobCard, error) {
	if s.minioClient == nil {
		return nil, fmt.Errorf("%w: photo storage is not configured", ErrValidation)
	}
	jc, err := s.repos.JobCard.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanHandleJobCard(jc) {
		return nil, fmt.Errorf("%w: only the handling staff or an admin may attach photos", ErrForbidden)
	}

	objectName := fmt.Sprintf("jobcards/%s/%s", jc.ID, uuid.New().String()[:32])
	_, err = s.minioClient.PutObject(ctx, s.minioBucket, objectName, reader, size,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("upload part photo: %w", err)
	}

	jc.ImageURL = fmt.Sprintf("/%s/%s", s.minioBucket, objectName)
	if err := s.repos.JobCard.Update(ctx, jc); err != nil {
		return nil, err
	}
	return jc, nil
}

// RequestReinstallOTP issues the reinstall challenge. The challenge is
// scoped to the parent service and overwrites any prior outstanding one.
func (s *JobCardService) RequestReinstallOTP(ctx context.Context, actor Actor, id, phone string) (*entity.JobCard, string, error) {
	jc, err := s.repos.JobCard.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !s.canReinstall(actor, jc) {
		return nil, "", fmt.Errorf("%w: only the reinstall handler or an admin may request verification", ErrForbidden)
	}
	if jc.Status != entity.JobCardStatusRepairCompleted {
		return nil, "", fmt.Errorf("%w: job card is %s, repair not completed", ErrConflict, jc.Status)
	}
	if phone == "" {
		return nil, "", fmt.Errorf("%w: destination phone is required", ErrValidation)
	}

	svc, err := s.repos.Service.FindByID(ctx, jc.ServiceID)
	if err != nil {
		return nil, "", err
	}

	code := s.otp.Generate()
	expiry := s.otp.ExpiryTime()
	svc.OTPHash = s.otp.Hash(code)
	svc.OTPPhone = phone
	svc.OTPExpiresAt = &expiry
	if err := s.repos.Service.Update(ctx, svc); err != nil {
		return nil, "", err
	}

	s.sms.SendAsync(phone, fmt.Sprintf("Your VST reinstall verification code is %s. Valid for 10 minutes.", code))

	s.audit.Record(ctx, actor.ID, "jobcard.request_reinstall_otp", "job_card", jc.ID,
		map[string]interface{}{"service_id": svc.ID})
	return jc, code, nil
}

// VerifyReinstall completes the reinstall under the service-scoped OTP.
// The parent service row is locked for the whole transaction so that two
// concurrent reinstalls serialize: each one counts the remaining
// unreinstalled cards against a consistent snapshot, and exactly one
// observes zero and performs the job_card_pending → completed roll-up.
func (s *JobCardService) VerifyReinstall(ctx context.Context, actor Actor, id, code string) (*entity.JobCard, error) {
	var result *entity.JobCard

	err := s.repos.Service.Transaction(ctx, func(tx *gorm.DB) error {
		jc, err := s.repos.JobCard.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.canReinstall(actor, jc) {
			return fmt.Errorf("%w: only the reinstall handler or an admin may complete the reinstall", ErrForbidden)
		}
		if jc.Status != entity.JobCardStatusRepairCompleted {
			return fmt.Errorf("%w: job card is %s, repair not completed", ErrConflict, jc.Status)
		}

		svc, err := s.repos.Service.FindByIDForUpdate(ctx, tx, jc.ServiceID)
		if err != nil {
			return err
		}
		if !svc.HasOutstandingOTP() || time.Now().After(*svc.OTPExpiresAt) {
			return ErrOTPExpired
		}
		if !s.otp.Verify(code, svc.OTPHash) {
			return ErrOTPInvalid
		}

		now := time.Now()
		jc.Status = entity.JobCardStatusReinstalled
		jc.ReinstalledAt = &now
		if err := s.repos.JobCard.UpdateTx(ctx, tx, jc); err != nil {
			return err
		}

		// A verified challenge is single-use either way.
		svc.OTPHash = ""
		svc.OTPPhone = ""
		svc.OTPExpiresAt = nil

		remaining, err := s.repos.JobCard.CountUnreinstalled(ctx, tx, svc.ID)
		if err != nil {
			return err
		}
		if remaining == 0 && svc.Status == entity.ServiceStatusJobCardPending {
			next := AddMonths(dateOnly(now), s.intervalMonths)
			svc.NextServiceDate = &next
			svc.Status = entity.ServiceStatusCompleted
		}
		if err := s.repos.Service.UpdateTx(ctx, tx, svc); err != nil {
			return err
		}

		result = jc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, "jobcard.verify_reinstall", "job_card", result.ID,
		map[string]interface{}{"service_id": result.ServiceID})
	return result, nil
}

func (s *JobCardService) canReinstall(actor Actor, jc *entity.JobCard) bool {
	if actor.IsAdmin() {
		return true
	}
	if jc.ReinstallStaffID != nil && *jc.ReinstallStaffID == actor.ID {
		return true
	}
	// When no dedicated reinstall handler is designated, the staff who
	// carried the card through repair closes it out.
	return jc.ReinstallStaffID == nil && jc.StaffID != nil && *jc.StaffID == actor.ID
}
