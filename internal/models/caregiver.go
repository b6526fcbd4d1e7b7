package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Caregiver is a contact record managed by an elderly user. It may or may
// not correspond to a caregiver account; recipient resolution matches it to
// an account by email or phone when one exists.
type Caregiver struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	ElderlyID    string    `gorm:"size:36;not null;index" json:"elderly_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;not null" json:"email"`
	Phone        string    `gorm:"size:20;not null" json:"phone"`
	ReceiveSMS   bool      `gorm:"not null;default:true" json:"receive_sms"`
	ReceiveEmail bool      `gorm:"not null;default:true" json:"receive_email"`
	IsPrimary    bool      `gorm:"not null;default:false" json:"is_primary"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook assigns the id before inserting a new caregiver record
func (cg *Caregiver) BeforeCreate(tx *gorm.DB) error {
	if cg.ID == "" {
		cg.ID = uuid.NewString()
	}
	return nil
}

// TableName specifies the table name for the Caregiver model
func (Caregiver) TableName() string {
	return "caregiver"
}

var phonePattern = regexp.MustCompile(`^\+?\d{8,15}$`)

// NormalizePhone strips spacing characters and validates the result against
// a lenient E.164-ish shape.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phone)
	if !phonePattern.MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone number format: %q (expected +countrycode followed by digits)", phone)
	}
	return cleaned, nil
}

// CaregiverRequest represents the data needed to add or update a caregiver
// contact record
type CaregiverRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	ReceiveSMS   *bool  `json:"receive_sms"`
	ReceiveEmail *bool  `json:"receive_email"`
	IsPrimary    bool   `json:"is_primary"`
}
