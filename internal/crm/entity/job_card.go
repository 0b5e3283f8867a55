package entity

import "time"

// JobCard tracks one physical part removed from a machine for off-site
// repair. It is owned by the ServiceEntry that recorded the removal; the
// parent Service cannot complete while any of its job cards remain
// unreinstalled.
type JobCard struct {
	ID             string `json:"id" gorm:"primaryKey;size:32"`
	ServiceID      string `json:"service_id" gorm:"size:32;index"`
	ServiceEntryID string `json:"service_entry_id" gorm:"size:32;index"`
	CustomerID     string `json:"customer_id" gorm:"size:32;index"`

	PartName    string `json:"part_name" gorm:"size:150"`
	Description string `json:"description" gorm:"size:1000"`
	ImageURL    string `json:"image_url" gorm:"size:500"`

	StaffID          *string `json:"staff_id" gorm:"size:32"`           // handles pickup through repair
	ReinstallStaffID *string `json:"reinstall_staff_id" gorm:"size:32"` // authorized to close the card out

	Status string `json:"status" gorm:"size:20;index"`

	GetFromCustomerAt *time.Time `json:"get_from_customer_at"`
	ReceivedOfficeAt  *time.Time `json:"received_office_at"`
	RepairCompletedAt *time.Time `json:"repair_completed_at"`
	ReinstalledAt     *time.Time `json:"reinstalled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (JobCard) TableName() string {
	return "crm_job_cards"
}

// Job card statuses
const (
	JobCardStatusPending         = "pending"
	JobCardStatusGetFromCustomer = "get_from_customer"
	JobCardStatusReceivedOffice  = "received_office"
	JobCardStatusRepairCompleted = "repair_completed"
	JobCardStatusReinstalled     = "reinstalled"
)

// ValidJobCardTransitions is the strict forward chain; reinstalled is terminal.
var ValidJobCardTransitions = map[string][]string{
	JobCardStatusPending:         {JobCardStatusGetFromCustomer},
	JobCardStatusGetFromCustomer: {JobCardStatusReceivedOffice},
	JobCardStatusReceivedOffice:  {JobCardStatusRepairCompleted},
	JobCardStatusRepairCompleted: {JobCardStatusReinstalled},
}

// CanTransitionJobCard reports whether a card may move between the two statuses.
func CanTransitionJobCard(from, to string) bool {
	for _, s := range ValidJobCardTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
