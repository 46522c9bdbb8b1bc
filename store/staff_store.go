package store

import (
	"errors"

	"gorm.io/gorm"

	"hibiki/models"
)

// StaffStore is the repository for admin panel accounts.
type StaffStore struct {
	db *gorm.DB
}

func NewStaffStore(db *gorm.DB) *StaffStore {
	return &StaffStore{db: db}
}

func (s *StaffStore) ByID(id string) (*models.Staff, error) {
	var staff models.Staff
	err := s.db.Where("id = ?", id).First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

func (s *StaffStore) ByEmail(email string) (*models.Staff, error) {
	var staff models.Staff
	err := s.db.Where("email = ?", email).First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &staff, nil
}

// List returns one page of staff accounts plus the total count.
func (s *StaffStore) List(page, size int) ([]models.Staff, int64, error) {
	var total int64
	if err := s.db.Model(&models.Staff{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var staff []models.Staff
	err := s.db.Order("created_at ASC").
		Offset(page * size).
		Limit(size).
		Find(&staff).Error
	if err != nil {
		return nil, 0, err
	}
	return staff, total, nil
}

func (s *StaffStore) Create(staff *models.Staff) error {
	return s.db.Create(staff).Error
}

func (s *StaffStore) Update(staff *models.Staff) error {
	return s.db.Model(&models.Staff{}).
		Where("id = ?", staff.ID).
		Updates(map[string]interface{}{
			"email":         staff.Email,
			"password_hash": staff.PasswordHash,
			"role":          staff.Role,
		}).Error
}

func (s *StaffStore) Delete(id string) error {
	return s.db.Delete(&models.Staff{}, "id = ?", id).Error
}
