package repository

import (
	"errors"
	"strings"

	"eldercare/internal/apperr"
	"eldercare/internal/models"

	"gorm.io/gorm"
)

// UserRepository is the gorm-backed account store.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return apperr.Validationf("email %s is already registered", user.Email)
		}
		return &apperr.PersistenceError{Op: "create user", Err: err}
	}
	return nil
}

func (r *UserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "user", ID: id}
		}
		return nil, &apperr.PersistenceError{Op: "find user", Err: err}
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "user", ID: email}
		}
		return nil, &apperr.PersistenceError{Op: "find user by email", Err: err}
	}
	return &user, nil
}

func (r *UserRepository) FindByIDs(ids []string) ([]models.User, error) {
	users := make([]models.User, 0)
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "find users by ids", Err: err}
	}
	return users, nil
}

// FindCaregiverAccounts matches caregiver accounts against the emails and
// phones of caregiver contact records.
func (r *UserRepository) FindCaregiverAccounts(emails, phones []string) ([]models.User, error) {
	users := make([]models.User, 0)
	if len(emails) == 0 && len(phones) == 0 {
		return users, nil
	}

	query := r.db.Where("role = ?", models.RoleCaregiver)
	switch {
	case len(emails) > 0 && len(phones) > 0:
		query = query.Where("email IN ? OR phone IN ?", emails, phones)
	case len(emails) > 0:
		query = query.Where("email IN ?", emails)
	default:
		query = query.Where("phone IN ?", phones)
	}

	if err := query.Find(&users).Error; err != nil {
		return nil, &apperr.PersistenceError{Op: "find caregiver accounts", Err: err}
	}
	return users, nil
}

func (r *UserRepository) Save(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return &apperr.PersistenceError{Op: "save user", Err: err}
	}
	return nil
}
