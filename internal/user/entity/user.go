package entity

import "time"

// User account. Phone is the login identifier, normalized to +91 form.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Name         string    `json:"name" gorm:"size:150"`
	Phone        string    `json:"phone" gorm:"size:20;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"size:128"`
	Address      string    `json:"address" gorm:"size:500"`
	City         string    `json:"city" gorm:"size:120"`
	PostalCode   string    `json:"postal_code" gorm:"size:20"`
	Region       string    `json:"region" gorm:"size:50"` // rajapalayam/ambasamuthiram/sankarankovil/tenkasi/tirunelveli/chennai
	Role         string    `json:"role" gorm:"size:10;index"`
	FCMToken     string    `json:"fcm_token,omitempty" gorm:"size:255"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	IsAvailable  bool      `json:"is_available" gorm:"default:true"` // worker availability, toggled by attendance
	IsIndustrial bool      `json:"is_industrial" gorm:"default:false"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Roles
const (
	RoleCustomer = "customer"
	RoleWorker   = "worker"
	RoleAdmin    = "admin"
)

// Regions served by the field teams.
var Regions = []string{
	"rajapalayam",
	"ambasamuthiram",
	"sankarankovil",
	"tenkasi",
	"tirunelveli",
	"chennai",
}

// ValidRegion reports whether region is one of the served regions.
func ValidRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}
