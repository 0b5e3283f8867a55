package entity

import "time"

// Service is one visit/engagement lifecycle against a card.
// OTP fields are populated only while a verification challenge is
// outstanding; issuing a new challenge overwrites the previous one.
type Service struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	CardID        string `json:"card_id" gorm:"size:32;index:idx_services_card_status"`
	RequestedByID string `json:"requested_by_id" gorm:"size:32;index"`
	ServiceType   string `json:"service_type" gorm:"size:20;index"` // normal/free
	Status        string `json:"status" gorm:"size:20;index:idx_services_card_status"`
	Description   string `json:"description" gorm:"size:1000"`

	PreferredDate *time.Time `json:"preferred_date"`
	ScheduledAt   *time.Time `json:"scheduled_at" gorm:"index"`
	AssignedToID  *string    `json:"assigned_to_id" gorm:"size:32;index"`

	IsPaid        bool     `json:"is_paid"`
	AmountCharged *float64 `json:"amount_charged"`

	OTPHash      string     `json:"-" gorm:"size:128"`
	OTPPhone     string     `json:"otp_phone,omitempty" gorm:"size:20"`
	OTPExpiresAt *time.Time `json:"-"`

	VisitType       string     `json:"visit_type" gorm:"size:20"` // I/C/MS/CS/CC
	NextServiceDate *time.Time `json:"next_service_date"`

	CreatedByID string    `json:"created_by_id" gorm:"size:32"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Entries []ServiceEntry `json:"entries,omitempty" gorm:"foreignKey:ServiceID"`
}

func (Service) TableName() string {
	return "crm_services"
}

// Service types
const (
	ServiceTypeNormal = "normal"
	ServiceTypeFree   = "free"
)

// Service statuses
const (
	ServiceStatusPending        = "pending"
	ServiceStatusScheduled      = "scheduled"
	ServiceStatusAssigned       = "assigned"
	ServiceStatusInProgress     = "in_progress"
	ServiceStatusAwaitingOTP    = "awaiting_otp"
	ServiceStatusJobCardPending = "job_card_pending"
	ServiceStatusCompleted      = "completed"
	ServiceStatusCancelled      = "cancelled"
)

// Visit types
const (
	VisitTypeInstallation     = "I"
	VisitTypeComplaint        = "C"
	VisitTypeMandatoryService = "MS"
	VisitTypeContractService  = "CS"
	VisitTypeCourtesyCall     = "CC"
)

// ValidServiceTransitions maps each status to the statuses reachable from it.
// cancelled is reachable from every non-terminal status and is listed
// explicitly so the guard stays a single lookup.
var ValidServiceTransitions = map[string][]string{
	ServiceStatusPending:        {ServiceStatusScheduled, ServiceStatusAssigned, ServiceStatusCancelled},
	ServiceStatusScheduled:      {ServiceStatusScheduled, ServiceStatusAssigned, ServiceStatusCancelled},
	ServiceStatusAssigned:       {ServiceStatusScheduled, ServiceStatusAssigned, ServiceStatusInProgress, ServiceStatusAwaitingOTP, ServiceStatusCancelled},
	ServiceStatusInProgress:     {ServiceStatusScheduled, ServiceStatusAwaitingOTP, ServiceStatusCancelled},
	ServiceStatusAwaitingOTP:    {ServiceStatusScheduled, ServiceStatusAwaitingOTP, ServiceStatusCompleted, ServiceStatusJobCardPending, ServiceStatusCancelled},
	ServiceStatusJobCardPending: {ServiceStatusCompleted, ServiceStatusCancelled},
}

// CanTransition reports whether a service may move from to the target status.
func CanTransition(from, to string) bool {
	for _, s := range ValidServiceTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether the status admits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == ServiceStatusCompleted || status == ServiceStatusCancelled
}

// HasOutstandingOTP reports whether a verification challenge is stored.
func (s *Service) HasOutstandingOTP() bool {
	return s.OTPHash != "" && s.OTPExpiresAt != nil
}
