package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Recurrence controls how a reminder reschedules itself after firing.
type Recurrence string

const (
	RepeatNone   Recurrence = "none"
	RepeatDaily  Recurrence = "daily"
	RepeatWeekly Recurrence = "weekly"
)

// Acknowledge actions accepted by the reminder engine.
const (
	AckTaken  = "taken"
	AckSnooze = "snooze"
)

// DefaultSnoozeMinutes applies when a snooze request carries no duration.
const DefaultSnoozeMinutes = 10

// ReminderMeta carries optional medication details shown alongside the
// reminder text.
type ReminderMeta struct {
	MedicationName string `json:"medication_name,omitempty"`
	Dose           string `json:"dose,omitempty"`
}

// Reminder is a scheduled care message for an elderly user, created by a
// caregiver. Time is the next scheduled fire time and only ever moves
// forward; an inactive reminder is never selected by the due-check.
type Reminder struct {
	ID          string                           `gorm:"primaryKey;size:36" json:"id"`
	ElderlyID   string                           `gorm:"size:36;not null;index" json:"elderly_id"`
	CaregiverID string                           `gorm:"size:36;index" json:"caregiver_id"`
	Message     string                           `gorm:"size:500;not null" json:"message"`
	Time        time.Time                        `gorm:"not null;index" json:"time"`
	Repeat      Recurrence                       `gorm:"size:10;not null;default:none" json:"repeat"`
	Active      bool                             `gorm:"not null;default:true" json:"active"`
	Meta        datatypes.JSONType[ReminderMeta] `gorm:"type:json" json:"meta"`
	CreatedAt   time.Time                        `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time                        `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook assigns the id before inserting a new reminder
func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Repeat == "" {
		r.Repeat = RepeatNone
	}
	return nil
}

// TableName specifies the table name for the Reminder model
func (Reminder) TableName() string {
	return "reminder"
}

// Advance moves the reminder to its next occurrence after it fires or is
// marked taken. One-shot reminders deactivate instead. This is the single
// recurrence rule shared by the due-check and acknowledgment paths.
func (r *Reminder) Advance() {
	switch r.Repeat {
	case RepeatDaily:
		r.Time = r.Time.Add(24 * time.Hour)
	case RepeatWeekly:
		r.Time = r.Time.Add(7 * 24 * time.Hour)
	default:
		r.Active = false
	}
}

// CreateReminderRequest represents the data a caregiver submits to schedule
// a reminder. The target may be given by id or resolved from an email.
type CreateReminderRequest struct {
	ElderlyID    string        `json:"elderly_id"`
	ElderlyEmail string        `json:"elderly_email"`
	Message      string        `json:"message"`
	Time         time.Time     `json:"time"`
	Repeat       Recurrence    `json:"repeat"`
	Meta         *ReminderMeta `json:"meta"`
}

// AcknowledgeReminderRequest represents a "taken" or "snooze" action.
type AcknowledgeReminderRequest struct {
	Action        string `json:"action" binding:"required"`
	SnoozeMinutes int    `json:"snooze_minutes"`
}
