// file: models/setting.go
package models

import "time"

type SettingValueType string

const (
	SettingBoolean SettingValueType = "boolean"
	SettingString  SettingValueType = "string"
	SettingNumber  SettingValueType = "number"
)

// Well known setting names.
const (
	SettingProjectRegistrationOpen = "PROJECT_REGISTRATION_OPEN"
	SettingRegistrationOpen        = "REGISTRATION_OPEN"
	SettingEventName               = "EVENT_NAME"
	SettingMaxTeamSize             = "MAX_TEAM_SIZE"
)

type Setting struct {
	ID        uint32           `gorm:"primarykey" json:"id"`
	Name      string           `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Value     string           `gorm:"type:text;not null" json:"value"`
	ValueType SettingValueType `gorm:"size:10;not null;default:'string'" json:"value_type"`
	Public    bool             `gorm:"not null;default:false" json:"public"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
