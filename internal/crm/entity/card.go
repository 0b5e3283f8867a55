package entity

import "time"

// Card is a customer's registered machine with its warranty/AMC coverage window.
type Card struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	Model        string `json:"model" gorm:"size:150"`
	CustomerID   string `json:"customer_id" gorm:"size:32;index"`
	CustomerName string `json:"customer_name" gorm:"size:255"`
	CardType     string `json:"card_type" gorm:"size:20;index"` // normal/om
	Region       string `json:"region" gorm:"size:50"`
	Address      string `json:"address" gorm:"size:500"`
	City         string `json:"city" gorm:"size:100"`
	PostalCode   string `json:"postal_code" gorm:"size:20"`

	DateOfInstallation *time.Time `json:"date_of_installation"`
	WarrantyStartDate  *time.Time `json:"warranty_start_date" gorm:"index"`
	WarrantyEndDate    *time.Time `json:"warranty_end_date" gorm:"index"`
	AMCStartDate       *time.Time `json:"amc_start_date"`
	AMCEndDate         *time.Time `json:"amc_end_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Card) TableName() string {
	return "crm_cards"
}

// Card types
const (
	CardTypeNormal       = "normal"
	CardTypeOtherMachine = "om" // not covered by warranty reporting
)

// HasWarrantyWindow reports whether both warranty dates are set.
func (c *Card) HasWarrantyWindow() bool {
	return c.WarrantyStartDate != nil && c.WarrantyEndDate != nil
}
