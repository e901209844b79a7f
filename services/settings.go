package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"laundry-booking-server/models"
)

// SettingsService maintains the global machine-availability document.
type SettingsService struct {
	db          *gorm.DB
	broadcaster Broadcaster
}

func NewSettingsService(db *gorm.DB, broadcaster Broadcaster) *SettingsService {
	return &SettingsService{db: db, broadcaster: broadcaster}
}

// Get returns the availability document, creating the defaults on first use.
func (s *SettingsService) Get() (*models.Setting, error) {
	var setting models.Setting
	err := s.db.First(&setting, "id = ?", models.SettingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.Setting{
			ID:           models.SettingID,
			M1Enabled:    true,
			M2Enabled:    true,
			DryerEnabled: true,
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return nil, &PersistenceError{Op: "create default settings", Err: err}
		}
		log.Println("⚙️ Default availability settings created")
		return &setting, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "load settings", Err: err}
	}
	return &setting, nil
}

// Save merge-updates one availability flag and broadcasts the new document.
func (s *SettingsService) Save(key string, value bool) (*models.Setting, error) {
	column := ""
	switch key {
	case "m1Enabled":
		column = "m1_enabled"
	case "m2Enabled":
		column = "m2_enabled"
	case "dryerEnabled":
		column = "dryer_enabled"
	default:
		return nil, &ValidationError{Field: "key", Message: "unknown setting"}
	}

	if _, err := s.Get(); err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Setting{}).
		Where("id = ?", models.SettingID).
		Update(column, value).Error; err != nil {
		return nil, &PersistenceError{Op: "save setting", Err: err}
	}

	setting, err := s.Get()
	if err != nil {
		return nil, err
	}
	log.Printf("⚙️ Setting saved: %s = %v", key, value)
	s.broadcaster.SettingsUpdated(setting)
	return setting, nil
}
