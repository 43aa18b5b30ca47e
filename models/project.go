// file: models/project.go
package models

import "time"

// Project 对应 projects 表
type Project struct {
	ID          uint32          `gorm:"primarykey" json:"id"`
	HackathonID uint32          `gorm:"not null;index" json:"hackathon_id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Members     []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectMember links a registration to a project. Exclusivity per hackathon is
// not enforced by the schema.
type ProjectMember struct {
	ProjectID      uint32        `gorm:"primaryKey" json:"project_id"`
	RegistrationID uint32        `gorm:"primaryKey;index" json:"registration_id"`
	Registration   *Registration `gorm:"foreignKey:RegistrationID" json:"registration,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}
