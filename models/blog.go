// file: models/blog.go
package models

import "time"

// Blog 对应 blogs 表
type Blog struct {
	ID        uint32    `gorm:"primarykey" json:"id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Slug      string    `gorm:"size:220;index" json:"slug"`
	CoverURL  string    `gorm:"size:512" json:"cover_url,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedBy *uint32   `json:"created_by,omitempty"`
	Author    *Profile  `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
	Archived  bool      `gorm:"not null;default:false;index" json:"archived"`
	ViewCount int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Blog) TableName() string {
	return "blogs"
}
