package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PartReplaced is one structured line of the parts list recorded on completion.
// Parts flagged for off-site repair spawn a JobCard each.
type PartReplaced struct {
	Name          string  `json:"name"`
	Description   string  `json:"description,omitempty"`
	Cost          float64 `json:"cost,omitempty"`
	SentForRepair bool    `json:"sent_for_repair,omitempty"`
}

// PartsReplacedList is stored as a JSONB column.
type PartsReplacedList []PartReplaced

func (p PartsReplacedList) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *PartsReplacedList) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PartsReplacedList", value)
	}
	return json.Unmarshal(b, p)
}

// ServiceEntry is the immutable record of completed work for one visit,
// created inside the OTP-verified completion transaction.
type ServiceEntry struct {
	ID              string            `json:"id" gorm:"primaryKey;size:32"`
	ServiceID       string            `json:"service_id" gorm:"size:32;index"`
	PerformedByID   *string           `json:"performed_by_id" gorm:"size:32"`
	ActualComplaint string            `json:"actual_complaint" gorm:"size:1000"`
	VisitType       string            `json:"visit_type" gorm:"size:20"`
	WorkDetail      string            `json:"work_detail" gorm:"size:2000"`
	PartsReplaced   PartsReplacedList `json:"parts_replaced" gorm:"type:jsonb"`
	AmountCharged   *float64          `json:"amount_charged"`
	CreatedAt       time.Time         `json:"created_at"`

	JobCards []JobCard `json:"job_cards,omitempty" gorm:"foreignKey:ServiceEntryID"`
}

func (ServiceEntry) TableName() string {
	return "crm_service_entries"
}
