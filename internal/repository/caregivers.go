package repository

import (
	"errors"

	"eldercare/internal/apperr"
	"eldercare/internal/models"

	"gorm.io/gorm"
)

// CaregiverRepository is the gorm-backed store for caregiver contact
// records.
type CaregiverRepository struct {
	db *gorm.DB
}

func NewCaregiverRepository(db *gorm.DB) *CaregiverRepository {
	return &CaregiverRepository{db: db}
}

func (r *CaregiverRepository) Create(cg *models.Caregiver) error {
	if err := r.db.Create(cg).Error; err != nil {
		return &apperr.PersistenceError{Op: "create caregiver", Err: err}
	}
	return nil
}

func (r *CaregiverRepository) FindByID(id string) (*models.Caregiver, error) {
	var cg models.Caregiver
	if err := r.db.Where("id = ?", id).First(&cg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "caregiver", ID: id}
		}
		return nil, &apperr.PersistenceError{Op: "find caregiver", Err: err}
	}
	return &cg, nil
}

// ListByElderly returns the caregiver roster, primary first.
func (r *CaregiverRepository) ListByElderly(elderlyID string) ([]models.Caregiver, error) {
	caregivers := make([]models.Caregiver, 0)
	err := r.db.Where("elderly_id = ?", elderlyID).
		Order("is_primary desc, name asc").
		Find(&caregivers).Error
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "list caregivers", Err: err}
	}
	return caregivers, nil
}

// FindDuplicate reports an existing record for the same elderly with the
// same email or phone.
func (r *CaregiverRepository) FindDuplicate(elderlyID, email, phone string) (*models.Caregiver, error) {
	var cg models.Caregiver
	err := r.db.Where("elderly_id = ? AND (email = ? OR phone = ?)", elderlyID, email, phone).
		First(&cg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &apperr.PersistenceError{Op: "check duplicate caregiver", Err: err}
	}
	return &cg, nil
}

// ClearPrimary demotes any existing primary caregiver for the elderly user.
// One primary per roster.
func (r *CaregiverRepository) ClearPrimary(elderlyID string) error {
	err := r.db.Model(&models.Caregiver{}).
		Where("elderly_id = ? AND is_primary = ?", elderlyID, true).
		Update("is_primary", false).Error
	if err != nil {
		return &apperr.PersistenceError{Op: "clear primary caregiver", Err: err}
	}
	return nil
}

func (r *CaregiverRepository) Save(cg *models.Caregiver) error {
	if err := r.db.Save(cg).Error; err != nil {
		return &apperr.PersistenceError{Op: "save caregiver", Err: err}
	}
	return nil
}

func (r *CaregiverRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Caregiver{})
	if result.Error != nil {
		return &apperr.PersistenceError{Op: "delete caregiver", Err: result.Error}
	}
	if result.RowsAffected == 0 {
		return &apperr.NotFoundError{Resource: "caregiver", ID: id}
	}
	return nil
}

// FindAssignments returns the contact records that tie a caregiver account
// (matched by email or phone) to elderly users.
func (r *CaregiverRepository) FindAssignments(email, phone string) ([]models.Caregiver, error) {
	assignments := make([]models.Caregiver, 0)
	query := r.db.Where("email = ?", email)
	if phone != "" {
		query = r.db.Where("email = ? OR phone = ?", email, phone)
	}
	if err := query.Find(&assignments).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "find caregiver assignments", Err: err}
	}
	return assignments, nil
}
