package service

import (
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/config"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/otp"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/crm/repository"
	"github.com/Kishor404/VST-Maarketing-CRM-System/internal/shared/sms"
	userrepo "github.com/Kishor404/VST-Maarketing-CRM-System/internal/user/repository"
	"go.uber.org/zap"
)

// Services aggregates the CRM business layer.
type Services struct {
	Card       *CardService
	Booking    *BookingService
	JobCard    *JobCardService
	Report     *ReportService
	Attendance *AttendanceService
	Feedback   *FeedbackService
	AMC        *AMCService
	Auditor    *Auditor
	OTP        *otp.Authority
}

func NewServices(
	repos *repository.Repositories,
	users *userrepo.UserRepository,
	smsClient *sms.Client,
	cfg *config.CRMConfig,
	logger *zap.Logger,
) *Services {
	authority := otp.NewAuthority(cfg.OTPHashSalt, cfg.OTPTTL(), cfg.OTPLength)
	auditor := NewAuditor(repos.AuditLog, logger)
	eligibility := NewEligibilityService(repos.Service, repos.Entry)
	interval := Interval{Months: cfg.MilestoneIntervalMonths}

	return &Services{
		Card:       NewCardService(repos, cfg.AllowCustomerCardCreate, auditor),
		Booking:    NewBookingService(repos, users, eligibility, authority, smsClient, auditor, logger, cfg.BookingWindowDays, cfg.MilestoneIntervalMonths),
		JobCard:    NewJobCardService(repos, authority, smsClient, auditor, logger, cfg.MilestoneIntervalMonths),
		Report:     NewReportService(repos, users, interval, cfg.MilestoneToleranceDays),
		Attendance: NewAttendanceService(repos, users),
		Feedback:   NewFeedbackService(repos),
		AMC:        NewAMCService(repos, users, auditor),
		Auditor:    auditor,
		OTP:        authority,
	}
}
