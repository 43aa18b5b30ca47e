// file: dto/form.go
package dto

import "time"

type FormReq struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Deadline    *time.Time `json:"deadline"`
}

type FormFieldReq struct {
	Label       string `json:"label"`
	FieldType   string `json:"field_type"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`

	FieldTypeCamel string `json:"fieldType" validate:"-"`
}

func (r *FormFieldReq) Normalize() {
	if r.FieldType == "" {
		r.FieldType = r.FieldTypeCamel
	}
}

type ReplaceFieldsReq struct {
	Fields []FormFieldReq `json:"fields"`
}

type FormStatusReq struct {
	Status   string     `json:"status" validate:"required,oneof=DRAFT PUBLISHED OVERDUE ARCHIVED"`
	Deadline *time.Time `json:"deadline"`
}

// SubmitFormReq maps field ids to raw answers.
type SubmitFormReq struct {
	Values map[string]string `json:"values"`
}

type FormFieldResp struct {
	ID          uint32 `json:"id"`
	Position    int    `json:"position"`
	Label       string `json:"label"`
	FieldType   string `json:"field_type"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}

type FormResp struct {
	ID          uint32          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	CoverURL    string          `json:"cover_url,omitempty"`
	Status      string          `json:"status,omitempty"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	PublicURL   string          `json:"public_url,omitempty"`
	Fields      []FormFieldResp `json:"fields"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}

type SubmissionResp struct {
	ID        uint32                 `json:"id"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"created_at"`
}
