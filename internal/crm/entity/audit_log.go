package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONMap is a free-form JSONB payload column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", value)
	}
	return json.Unmarshal(b, m)
}

// AuditLog records who did what to which object, for sensitive transitions.
type AuditLog struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	UserID     string    `json:"user_id" gorm:"size:32;index"`
	Action     string    `json:"action" gorm:"size:100"`
	ObjectType string    `json:"object_type" gorm:"size:100"`
	ObjectID   string    `json:"object_id" gorm:"size:100;index"`
	Payload    JSONMap   `json:"payload" gorm:"type:jsonb"`
	Timestamp  time.Time `json:"timestamp" gorm:"autoCreateTime"`
}

func (AuditLog) TableName() string {
	return "crm_audit_logs"
}
