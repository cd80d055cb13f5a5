package model

// Setting keys.
const (
	SettingArrivalStart   = "arrival_time_start"
	SettingArrivalEnd     = "arrival_time_end"
	SettingDepartureStart = "departure_time_start"
	SettingDepartureEnd   = "departure_time_end"
	SettingLateTolerance  = "late_tolerance"
	SettingSchoolName     = "school_name"
)

// Setting key-value configuration row (settings)
type Setting struct {
	ID           uint    `gorm:"primaryKey"                            json:"id"`
	SettingKey   string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"setting_key"`
	SettingValue string  `gorm:"type:text;not null"                    json:"setting_value"`
	Description  *string `gorm:"type:text"                             json:"description"`
	BaseModel
}

// TableName table name
func (Setting) TableName() string { return "settings" }
