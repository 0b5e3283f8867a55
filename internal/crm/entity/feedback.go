package entity

import "time"

// Feedback is a customer rating for a completed service.
type Feedback struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	ServiceID  string    `json:"service_id" gorm:"size:32;index"`
	CardID     string    `json:"card_id" gorm:"size:32;index"`
	CustomerID string    `json:"customer_id" gorm:"size:32;index"`
	Rating     int       `json:"rating"` // 1..5
	Comments   string    `json:"comments" gorm:"size:1000"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Feedback) TableName() string {
	return "crm_feedbacks"
}
