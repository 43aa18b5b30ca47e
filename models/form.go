// file: models/form.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

// FormStatus 表单生命周期状态
type FormStatus string

const (
	FormDraft     FormStatus = "DRAFT"
	FormPublished FormStatus = "PUBLISHED"
	FormOverdue   FormStatus = "OVERDUE"
	FormArchived  FormStatus = "ARCHIVED"
)

// FieldType is the closed set of input kinds a form field can render as.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldLongText FieldType = "long_text"
)

type Form struct {
	ID          uint32      `gorm:"primarykey" json:"id"`
	Title       string      `gorm:"size:200;not null" json:"title"`
	Description string      `gorm:"type:text" json:"description"`
	CoverURL    string      `gorm:"size:512" json:"cover_url,omitempty"`
	Status      FormStatus  `gorm:"size:12;not null;default:'DRAFT';index" json:"status"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	CreatedBy   *uint32     `json:"created_by,omitempty"`
	Fields      []FormField `gorm:"foreignKey:FormID" json:"fields,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Form) TableName() string {
	return "forms"
}

type FormField struct {
	ID          uint32    `gorm:"primarykey" json:"id"`
	FormID      uint32    `gorm:"not null;index" json:"form_id"`
	Position    int       `gorm:"not null" json:"position"`
	Label       string    `gorm:"size:200;not null" json:"label"`
	FieldType   FieldType `gorm:"size:16;not null" json:"field_type"`
	Placeholder string    `gorm:"size:200" json:"placeholder,omitempty"`
	Required    bool      `gorm:"not null;default:false" json:"required"`
}

func (FormField) TableName() string {
	return "form_fields"
}

// FormSubmission stores answers keyed by field id.
type FormSubmission struct {
	ID        uint32            `gorm:"primarykey" json:"id"`
	FormID    uint32            `gorm:"not null;index" json:"form_id"`
	Data      datatypes.JSONMap `json:"data"`
	CreatedAt time.Time         `gorm:"index" json:"created_at"`
}

func (FormSubmission) TableName() string {
	return "form_submissions"
}
