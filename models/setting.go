package models

// SettingID is the single availability document the service maintains.
const SettingID = "availability"

// Setting is the global machine-availability document.
type Setting struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	M1Enabled    bool   `json:"m1Enabled" gorm:"default:true"`
	M2Enabled    bool   `json:"m2Enabled" gorm:"default:true"`
	DryerEnabled bool   `json:"dryerEnabled" gorm:"default:true"`
}

func (Setting) TableName() string {
	return "settings"
}
