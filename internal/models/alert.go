package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SentVia records how an emergency alert was triggered. Pure in-app test
// sends are excluded from SMS fan-out.
type SentVia string

const (
	SentViaApp    SentVia = "app"
	SentViaVoice  SentVia = "voice"
	SentViaButton SentVia = "button"
	SentViaAuto   SentVia = "auto"
)

// ValidSentVia reports whether v is a known trigger source.
func ValidSentVia(v SentVia) bool {
	switch v {
	case SentViaApp, SentViaVoice, SentViaButton, SentViaAuto:
		return true
	}
	return false
}

// AlertStatus is the lifecycle state of an emergency alert.
type AlertStatus string

const (
	AlertOpen         AlertStatus = "open"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertResolved     AlertStatus = "resolved"
)

// CanTransition reports whether the status may move to the given target.
// Status only moves forward: open -> acknowledged -> resolved, or straight
// to resolved.
func (s AlertStatus) CanTransition(to AlertStatus) bool {
	switch s {
	case AlertOpen:
		return to == AlertAcknowledged || to == AlertResolved
	case AlertAcknowledged:
		return to == AlertResolved
	}
	return false
}

// Location is an optional position attached to an alert.
type Location struct {
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
	Address string  `json:"address,omitempty"`
}

// HasCoords reports whether the location carries usable coordinates.
func (l *Location) HasCoords() bool {
	return l != nil && (l.Lat != 0 || l.Lng != 0)
}

func (l Location) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *Location) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for Location: %T", value)
	}
}

// EmergencyAlert is raised by or on behalf of an elderly user. Message and
// location are immutable after creation; only the status changes.
type EmergencyAlert struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	ElderlyID string      `gorm:"size:36;not null;index" json:"elderly_id"`
	Message   string      `gorm:"size:1000;not null" json:"message"`
	Location  *Location   `gorm:"type:json" json:"location,omitempty"`
	SentVia   SentVia     `gorm:"size:10;not null;default:app" json:"sent_via"`
	Status    AlertStatus `gorm:"size:15;not null;default:open;index" json:"status"`
	Notified  bool        `gorm:"not null;default:false" json:"notified"`
	CreatedAt time.Time   `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate hook assigns the id before inserting a new alert
func (a *EmergencyAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.SentVia == "" {
		a.SentVia = SentViaApp
	}
	if a.Status == "" {
		a.Status = AlertOpen
	}
	return nil
}

// TableName specifies the table name for the EmergencyAlert model
func (EmergencyAlert) TableName() string {
	return "emergency_alert"
}

// RaiseAlertRequest represents the data submitted when raising an alert.
type RaiseAlertRequest struct {
	Message  string    `json:"message"`
	Location *Location `json:"location"`
	SentVia  SentVia   `json:"sent_via"`
}

// DeliveryReport records the outcome of one SMS send during alert fan-out.
type DeliveryReport struct {
	To     string `json:"to"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	SID    string `json:"sid,omitempty"`
	Status string `json:"status"` // "sent" or "failed"
	Error  string `json:"error,omitempty"`
}
