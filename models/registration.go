// file: models/registration.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

type LevelOfStudy string
type TransportChoice string
type TShirtSize string

const (
	LevelHighSchool LevelOfStudy = "high-school"
	LevelFreshman   LevelOfStudy = "undergraduate-freshman"
	LevelSophomore  LevelOfStudy = "undergraduate-sophomore"
	LevelJunior     LevelOfStudy = "undergraduate-junior"
	LevelSenior     LevelOfStudy = "undergraduate-senior"
	LevelGraduate   LevelOfStudy = "graduate"
	LevelOther      LevelOfStudy = "other"
)

const (
	TransportYes   TransportChoice = "yes"
	TransportNo    TransportChoice = "no"
	TransportMaybe TransportChoice = "maybe"
)

const (
	ShirtXS  TShirtSize = "XS"
	ShirtS   TShirtSize = "S"
	ShirtM   TShirtSize = "M"
	ShirtL   TShirtSize = "L"
	ShirtXL  TShirtSize = "XL"
	ShirtXXL TShirtSize = "XXL"
)

// Levels lists every level of study in display order.
var Levels = []LevelOfStudy{LevelHighSchool, LevelFreshman, LevelSophomore, LevelJunior, LevelSenior, LevelGraduate, LevelOther}

// Registration 对应 registrations 表
type Registration struct {
	ID                    uint32                      `gorm:"primarykey" json:"id"`
	FirstName             string                      `gorm:"size:50;not null;index" json:"first_name"`
	LastName              string                      `gorm:"size:50;not null;index" json:"last_name"`
	Email                 string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PhoneNumber           string                      `gorm:"size:20;not null" json:"phone_number"`
	Age                   int                         `gorm:"not null" json:"age"`
	TShirtSize            TShirtSize                  `gorm:"column:tshirt_size;size:8;not null" json:"tshirt_size"`
	School                string                      `gorm:"size:100;not null;index" json:"school"`
	SchoolOther           string                      `gorm:"size:100" json:"school_other,omitempty"`
	LevelOfStudy          LevelOfStudy                `gorm:"size:40;not null;index" json:"level_of_study"`
	CountryOfResidence    string                      `gorm:"size:100;not null" json:"country_of_residence"`
	CountryOther          string                      `gorm:"size:100" json:"country_other,omitempty"`
	DietaryRestrictions   datatypes.JSONSlice[string] `json:"dietary_restrictions"`
	AllergiesDetail       string                      `gorm:"size:500" json:"allergies_detail,omitempty"`
	OtherAccommodations   string                      `gorm:"size:500" json:"other_accommodations,omitempty"`
	AirportTransportation TransportChoice             `gorm:"size:8;not null;index" json:"airport_transportation"`
	ResumeKey             string                      `gorm:"size:255" json:"resume_key,omitempty"`
	MLHCodeOfConduct      bool                        `gorm:"column:mlh_code_of_conduct" json:"mlh_code_of_conduct"`
	MLHEventLogistics     bool                        `gorm:"column:mlh_event_logistics" json:"mlh_event_logistics"`
	MLHMarketing          bool                        `gorm:"column:mlh_marketing" json:"mlh_marketing"`
	DiscordJoined         bool                        `json:"discord_joined"`
	AdditionalNotes       string                      `gorm:"size:1000" json:"additional_notes,omitempty"`
	ParentalConsent       bool                        `json:"parental_consent"`
	CheckedIn             bool                        `gorm:"not null;default:false;index" json:"checked_in"`
	CheckedInAt           *time.Time                  `json:"checked_in_at,omitempty"`
	CheckedInBy           *uint32                     `json:"checked_in_by,omitempty"`
	CreatedAt             time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time                   `json:"updated_at"`
}

func (Registration) TableName() string {
	return "registrations"
}

// FullName joins first and last name.
func (r Registration) FullName() string {
	return r.FirstName + " " + r.LastName
}
