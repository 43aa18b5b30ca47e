// file: dto/registration.go
package dto

import (
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/utils"
)

// ========== 请求 DTO ==========

// CreateRegistrationReq is bound from the multipart registration form or JSON.
type CreateRegistrationReq struct {
	FirstName             string   `form:"first_name" json:"first_name" validate:"required,max=50"`
	LastName              string   `form:"last_name" json:"last_name" validate:"required,max=50"`
	Email                 string   `form:"email" json:"email" validate:"required,email,max=255"`
	PhoneNumber           string   `form:"phone_number" json:"phone_number" validate:"required,max=20"`
	Age                   int      `form:"age" json:"age" validate:"required,min=13,max=100"`
	TShirtSize            string   `form:"tshirt_size" json:"tshirt_size" validate:"required,oneof=XS S M L XL XXL"`
	School                string   `form:"school" json:"school" validate:"required,max=100"`
	SchoolOther           string   `form:"school_other" json:"school_other" validate:"max=100"`
	LevelOfStudy          string   `form:"level_of_study" json:"level_of_study" validate:"required,oneof=high-school undergraduate-freshman undergraduate-sophomore undergraduate-junior undergraduate-senior graduate other"`
	CountryOfResidence    string   `form:"country_of_residence" json:"country_of_residence" validate:"required,max=100"`
	CountryOther          string   `form:"country_other" json:"country_other" validate:"max=100"`
	DietaryRestrictions   []string `form:"dietary_restrictions" json:"dietary_restrictions" validate:"max=20,dive,max=50"`
	AllergiesDetail       string   `form:"allergies_detail" json:"allergies_detail" validate:"max=500"`
	OtherAccommodations   string   `form:"other_accommodations" json:"other_accommodations" validate:"max=500"`
	AirportTransportation string   `form:"airport_transportation" json:"airport_transportation" validate:"required,oneof=yes no maybe"`
	MLHCodeOfConduct      bool     `form:"mlh_code_of_conduct" json:"mlh_code_of_conduct"`
	MLHEventLogistics     bool     `form:"mlh_event_logistics" json:"mlh_event_logistics"`
	MLHMarketing          bool     `form:"mlh_marketing" json:"mlh_marketing"`
	DiscordJoined         bool     `form:"discord_joined" json:"discord_joined"`
	AdditionalNotes       string   `form:"additional_notes" json:"additional_notes" validate:"max=1000"`
	ParentalConsent       bool     `form:"parental_consent" json:"parental_consent"`

	// 兼容旧客户端 camelCase 字段
	FirstNameCamel   string `form:"firstName" json:"firstName" validate:"-"`
	LastNameCamel    string `form:"lastName" json:"lastName" validate:"-"`
	PhoneNumberCamel string `form:"phoneNumber" json:"phoneNumber" validate:"-"`
	TShirtSizeCamel  string `form:"tshirtSize" json:"tshirtSize" validate:"-"`
	LevelCamel       string `form:"levelOfStudy" json:"levelOfStudy" validate:"-"`
}

// Normalize folds camelCase aliases into the canonical fields and trims input.
func (r *CreateRegistrationReq) Normalize() {
	if r.FirstName == "" {
		r.FirstName = r.FirstNameCamel
	}
	if r.LastName == "" {
		r.LastName = r.LastNameCamel
	}
	if r.PhoneNumber == "" {
		r.PhoneNumber = r.PhoneNumberCamel
	}
	if r.TShirtSize == "" {
		r.TShirtSize = r.TShirtSizeCamel
	}
	if r.LevelOfStudy == "" {
		r.LevelOfStudy = r.LevelCamel
	}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	r.TShirtSize = strings.ToUpper(strings.TrimSpace(r.TShirtSize))
	r.School = strings.TrimSpace(r.School)
	r.SchoolOther = strings.TrimSpace(r.SchoolOther)
	r.LevelOfStudy = strings.ToLower(strings.TrimSpace(r.LevelOfStudy))
	r.CountryOfResidence = strings.TrimSpace(r.CountryOfResidence)
	r.CountryOther = strings.TrimSpace(r.CountryOther)
	r.AirportTransportation = strings.ToLower(strings.TrimSpace(r.AirportTransportation))
	r.AllergiesDetail = strings.TrimSpace(r.AllergiesDetail)
	r.OtherAccommodations = strings.TrimSpace(r.OtherAccommodations)
	r.AdditionalNotes = strings.TrimSpace(r.AdditionalNotes)

	diets := r.DietaryRestrictions[:0]
	for _, d := range r.DietaryRestrictions {
		if d = strings.TrimSpace(d); d != "" {
			diets = append(diets, d)
		}
	}
	r.DietaryRestrictions = diets
}

// Validate checks field limits. Public sign-ups must also accept the MLH terms
// and confirm they joined Discord. Minors always need parental consent.
func (r *CreateRegistrationReq) Validate(public bool) error {
	fields := map[string]string{}
	if err := utils.ValidateStruct(r); err != nil {
		appErr, ok := apperrors.As(err)
		if !ok {
			return err
		}
		for k, v := range appErr.Fields {
			fields[k] = v
		}
	}
	if r.Age > 0 && r.Age < 18 && !r.ParentalConsent {
		fields["parental_consent"] = "Parental consent is required for participants under 18"
	}
	if public {
		if !r.MLHCodeOfConduct {
			fields["mlh_code_of_conduct"] = "You must accept the MLH Code of Conduct"
		}
		if !r.MLHEventLogistics {
			fields["mlh_event_logistics"] = "You must accept the MLH event logistics terms"
		}
		if !r.DiscordJoined {
			fields["discord_joined"] = "Please join the Discord server"
		}
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid registration", fields)
	}
	return nil
}

type CheckInReq struct {
	CheckedIn *bool `json:"checked_in"`
}

// ========== 响应 DTO ==========

type RegistrationItemResp struct {
	ID                    uint32     `json:"id"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	Email                 string     `json:"email"`
	PhoneNumber           string     `json:"phone_number"`
	School                string     `json:"school"`
	LevelOfStudy          string     `json:"level_of_study"`
	TShirtSize            string     `json:"tshirt_size"`
	AirportTransportation string     `json:"airport_transportation"`
	CheckedIn             bool       `json:"checked_in"`
	CheckedInAt           *time.Time `json:"checked_in_at,omitempty"`
	HasResume             bool       `json:"has_resume"`
	CreatedAt             time.Time  `json:"created_at"`
}

type RegistrationListResp struct {
	Items []RegistrationItemResp `json:"items"`
	Meta  utils.PageMeta         `json:"meta"`
}

type ExportColumnResp struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}
