package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role distinguishes the two kinds of accounts in the system.
type Role string

const (
	RoleElderly   Role = "elderly"
	RoleCaregiver Role = "caregiver"
)

// EmergencyContact is a family contact declared on the elderly profile.
// Contacts are embedded in the user record, not separate accounts.
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"` // E.164 format
	Relation string `json:"relation,omitempty"`
	Primary  bool   `json:"primary"`
}

// ContactList is stored as a JSON column on the user record.
type ContactList []EmergencyContact

func (l *ContactList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *ContactList) Scan(value interface{}) error {
	if value == nil {
		*l = make([]EmergencyContact, 0)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for ContactList: %T", value)
	}
}

// StringList is a JSON-encoded list of ids.
type StringList []string

func (s *StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = make([]string, 0)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// User represents an account, elderly or caregiver.
type User struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	Name       string `gorm:"size:100;not null" json:"name"`
	Email      string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPass string `gorm:"size:255" json:"-"` // caregivers log in with a password
	PinHash    string `gorm:"size:255" json:"-"` // elderly log in with a short PIN
	Role       Role   `gorm:"size:20;not null;default:elderly" json:"role"`
	Phone      string `gorm:"size:20" json:"phone,omitempty"` // E.164 format if present

	// CaregiverIDs links caregiver accounts to this elderly user.
	CaregiverIDs      StringList  `gorm:"type:json" json:"caregiver_ids"`
	EmergencyContacts ContactList `gorm:"type:json" json:"emergency_contacts"`

	// Assistant customizations
	AssistantName  string `gorm:"size:100" json:"assistant_name,omitempty"`
	AssistantImage string `gorm:"size:500" json:"assistant_image,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook assigns the id before inserting a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleElderly
	}
	return nil
}

// TableName specifies the table name for the User model ("user" is reserved
// in postgres)
func (User) TableName() string {
	return "app_user"
}

// RegisterRequest represents the data needed to create an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"` // caregiver accounts
	Pin      string `json:"pin"`      // elderly accounts
	Role     Role   `json:"role"`
	Phone    string `json:"phone"`
}

// LoginRequest represents the data needed for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
	Pin      string `json:"pin"`
}
