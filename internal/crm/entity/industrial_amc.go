package entity

import "time"

// IndustrialAMC is an annual maintenance contract record for an
// industrial customer's card. Admin-created only.
type IndustrialAMC struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	CardID       string     `json:"card_id" gorm:"size:32;index"`
	AMCStartDate *time.Time `json:"amc_start_date"`
	AMCEndDate   *time.Time `json:"amc_end_date"`
	Amount       *float64   `json:"amount"`
	Notes        string     `json:"notes" gorm:"size:1000"`
	CreatedByID  string     `json:"created_by_id" gorm:"size:32"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (IndustrialAMC) TableName() string {
	return "crm_industrial_amcs"
}
