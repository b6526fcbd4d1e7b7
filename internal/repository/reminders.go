package repository

import (
	"errors"
	"time"

	"eldercare/internal/apperr"
	"eldercare/internal/models"

	"gorm.io/gorm"
)

// ReminderRepository is the gorm-backed reminder store.
type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(reminder *models.Reminder) error {
	if err := r.db.Create(reminder).Error; err != nil {
		return &apperr.PersistenceError{Op: "create reminder", Err: err}
	}
	return nil
}

func (r *ReminderRepository) FindByID(id string) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := r.db.Where("id = ?", id).First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "reminder", ID: id}
		}
		return nil, &apperr.PersistenceError{Op: "find reminder", Err: err}
	}
	return &reminder, nil
}

// FindDue selects active reminders whose fire time falls at or before the
// cutoff, oldest first.
func (r *ReminderRepository) FindDue(cutoff time.Time) ([]models.Reminder, error) {
	var due []models.Reminder
	err := r.db.Where("active = ? AND time <= ?", true, cutoff).
		Order("time asc").
		Find(&due).Error
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "find due reminders", Err: err}
	}
	return due, nil
}

func (r *ReminderRepository) Save(reminder *models.Reminder) error {
	if err := r.db.Save(reminder).Error; err != nil {
		return &apperr.PersistenceError{Op: "save reminder", Err: err}
	}
	return nil
}

func (r *ReminderRepository) ListByCaregiver(caregiverID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.Where("caregiver_id = ?", caregiverID).
		Order("time asc").
		Find(&reminders).Error
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "list reminders by caregiver", Err: err}
	}
	return reminders, nil
}

func (r *ReminderRepository) ListActiveByElderly(elderlyID string) ([]models.Reminder, error) {
	var reminders []models.Reminder
	err := r.db.Where("elderly_id = ? AND active = ?", elderlyID, true).
		Order("time asc").
		Find(&reminders).Error
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "list reminders by elderly", Err: err}
	}
	return reminders, nil
}
