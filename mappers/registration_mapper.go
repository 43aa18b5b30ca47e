// file: mappers/registration_mapper.go
package mappers

import (
	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/services"
	"gorm.io/datatypes"
)

func MapRegistrationReqToModel(req dto.CreateRegistrationReq) models.Registration {
	diets := req.DietaryRestrictions
	if diets == nil {
		diets = []string{}
	}
	return models.Registration{
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		PhoneNumber:           req.PhoneNumber,
		Age:                   req.Age,
		TShirtSize:            models.TShirtSize(req.TShirtSize),
		School:                req.School,
		SchoolOther:           req.SchoolOther,
		LevelOfStudy:          models.LevelOfStudy(req.LevelOfStudy),
		CountryOfResidence:    req.CountryOfResidence,
		CountryOther:          req.CountryOther,
		DietaryRestrictions:   datatypes.JSONSlice[string](diets),
		AllergiesDetail:       req.AllergiesDetail,
		OtherAccommodations:   req.OtherAccommodations,
		AirportTransportation: models.TransportChoice(req.AirportTransportation),
		MLHCodeOfConduct:      req.MLHCodeOfConduct,
		MLHEventLogistics:     req.MLHEventLogistics,
		MLHMarketing:          req.MLHMarketing,
		DiscordJoined:         req.DiscordJoined,
		AdditionalNotes:       req.AdditionalNotes,
		ParentalConsent:       req.ParentalConsent,
	}
}

func MapRegistrationToItemResp(r models.Registration) dto.RegistrationItemResp {
	return dto.RegistrationItemResp{
		ID:                    r.ID,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		Email:                 r.Email,
		PhoneNumber:           r.PhoneNumber,
		School:                r.School,
		LevelOfStudy:          string(r.LevelOfStudy),
		TShirtSize:            string(r.TShirtSize),
		AirportTransportation: string(r.AirportTransportation),
		CheckedIn:             r.CheckedIn,
		CheckedInAt:           r.CheckedInAt,
		HasResume:             r.ResumeKey != "",
		CreatedAt:             r.CreatedAt,
	}
}

func MapRegistrationsToItems(rows []models.Registration) []dto.RegistrationItemResp {
	out := make([]dto.RegistrationItemResp, 0, len(rows))
	for _, r := range rows {
		out = append(out, MapRegistrationToItemResp(r))
	}
	return out
}

func MapExportColumns(cols []services.ExportColumn) []dto.ExportColumnResp {
	defaults := make(map[string]bool, len(services.DefaultExportColumns))
	for _, k := range services.DefaultExportColumns {
		defaults[k] = true
	}
	out := make([]dto.ExportColumnResp, 0, len(cols))
	for _, c := range cols {
		out = append(out, dto.ExportColumnResp{Key: c.Key, Label: c.Label, Default: defaults[c.Key]})
	}
	return out
}
