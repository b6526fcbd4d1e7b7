package repository

import (
	"errors"

	"eldercare/internal/apperr"
	"eldercare/internal/models"

	"gorm.io/gorm"
)

// AlertRepository is the gorm-backed emergency alert store.
type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Create(alert *models.EmergencyAlert) error {
	if err := r.db.Create(alert).Error; err != nil {
		return &apperr.PersistenceError{Op: "create alert", Err: err}
	}
	return nil
}

func (r *AlertRepository) FindByID(id string) (*models.EmergencyAlert, error) {
	var alert models.EmergencyAlert
	if err := r.db.Where("id = ?", id).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "alert", ID: id}
		}
		return nil, &apperr.PersistenceError{Op: "find alert", Err: err}
	}
	return &alert, nil
}

func (r *AlertRepository) Save(alert *models.EmergencyAlert) error {
	if err := r.db.Save(alert).Error; err != nil {
		return &apperr.PersistenceError{Op: "save alert", Err: err}
	}
	return nil
}

// ListByElderlyIDs returns the newest alerts for the given owners.
func (r *AlertRepository) ListByElderlyIDs(elderlyIDs []string, limit int) ([]models.EmergencyAlert, error) {
	alerts := make([]models.EmergencyAlert, 0)
	if len(elderlyIDs) == 0 {
		return alerts, nil
	}
	err := r.db.Where("elderly_id IN ?", elderlyIDs).
		Order("created_at desc").
		Limit(limit).
		Find(&alerts).Error
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "list alerts", Err: err}
	}
	return alerts, nil
}
