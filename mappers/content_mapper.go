// file: mappers/content_mapper.go
package mappers

import (
	"strings"

	"github.com/alpnix/HackAtDavidson/dto"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/services"
)

const excerptLength = 200

func MapBlogToItemResp(b models.Blog) dto.BlogItemResp {
	resp := dto.BlogItemResp{
		ID:        b.ID,
		Title:     b.Title,
		Slug:      b.Slug,
		CoverURL:  b.CoverURL,
		Excerpt:   services.Excerpt(b.Content, excerptLength),
		Archived:  b.Archived,
		ViewCount: b.ViewCount,
		CreatedAt: b.CreatedAt,
	}
	if b.Author != nil {
		resp.Author = strings.TrimSpace(b.Author.FirstName + " " + b.Author.LastName)
	}
	return resp
}

func MapBlogToDetailResp(b models.Blog) dto.BlogDetailResp {
	return dto.BlogDetailResp{
		BlogItemResp: MapBlogToItemResp(b),
		Content:      b.Content,
		UpdatedAt:    b.UpdatedAt,
	}
}

func MapBlogsToItems(rows []models.Blog) []dto.BlogItemResp {
	out := make([]dto.BlogItemResp, 0, len(rows))
	for _, b := range rows {
		out = append(out, MapBlogToItemResp(b))
	}
	return out
}

func mapFields(fields []models.FormField) []dto.FormFieldResp {
	out := make([]dto.FormFieldResp, 0, len(fields))
	for _, f := range fields {
		out = append(out, dto.FormFieldResp{
			ID:          f.ID,
			Position:    f.Position,
			Label:       f.Label,
			FieldType:   string(f.FieldType),
			Placeholder: f.Placeholder,
			Required:    f.Required,
		})
	}
	return out
}

// MapFormToAdminResp includes lifecycle data that the public view hides.
func MapFormToAdminResp(f models.Form, publicURL string) dto.FormResp {
	created := f.CreatedAt
	return dto.FormResp{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		CoverURL:    f.CoverURL,
		Status:      string(f.Status),
		Deadline:    f.Deadline,
		PublicURL:   publicURL,
		Fields:      mapFields(f.Fields),
		CreatedAt:   &created,
	}
}

func MapFormToPublicResp(f models.Form) dto.FormResp {
	return dto.FormResp{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		CoverURL:    f.CoverURL,
		Deadline:    f.Deadline,
		Fields:      mapFields(f.Fields),
	}
}

func MapFieldReqs(reqs []dto.FormFieldReq) []services.FieldInput {
	out := make([]services.FieldInput, 0, len(reqs))
	for _, r := range reqs {
		r.Normalize()
		out = append(out, services.FieldInput{
			Label:       r.Label,
			FieldType:   models.FieldType(strings.ToLower(strings.TrimSpace(r.FieldType))),
			Placeholder: r.Placeholder,
			Required:    r.Required,
		})
	}
	return out
}

func MapSubmissions(rows []models.FormSubmission) []dto.SubmissionResp {
	out := make([]dto.SubmissionResp, 0, len(rows))
	for _, s := range rows {
		out = append(out, dto.SubmissionResp{ID: s.ID, Data: s.Data, CreatedAt: s.CreatedAt})
	}
	return out
}

func MapProjects(rows []models.Project) []dto.ProjectResp {
	out := make([]dto.ProjectResp, 0, len(rows))
	for _, p := range rows {
		members := make([]dto.ProjectMemberResp, 0, len(p.Members))
		for _, m := range p.Members {
			mr := dto.ProjectMemberResp{RegistrationID: m.RegistrationID}
			if m.Registration != nil {
				mr.FirstName = m.Registration.FirstName
				mr.LastName = m.Registration.LastName
				mr.Email = m.Registration.Email
			}
			members = append(members, mr)
		}
		out = append(out, dto.ProjectResp{ID: p.ID, Name: p.Name, Members: members, CreatedAt: p.CreatedAt})
	}
	return out
}

func MapProfile(p models.Profile) dto.ProfileResp {
	return dto.ProfileResp{ID: p.ID, Email: p.Email, FirstName: p.FirstName, LastName: p.LastName, Role: string(p.Role)}
}

func MapSettings(rows []models.Setting) []dto.SettingResp {
	out := make([]dto.SettingResp, 0, len(rows))
	for _, s := range rows {
		out = append(out, MapSetting(s))
	}
	return out
}

func MapSetting(s models.Setting) dto.SettingResp {
	return dto.SettingResp{Name: s.Name, Value: services.TypedValue(s), ValueType: string(s.ValueType), Public: s.Public}
}
