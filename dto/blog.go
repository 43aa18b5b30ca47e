// file: dto/blog.go
package dto

import "time"

type BlogReq struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type ArchiveReq struct {
	Archived *bool `json:"archived" validate:"required"`
}

type BlogItemResp struct {
	ID        uint32    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CoverURL  string    `json:"cover_url,omitempty"`
	Excerpt   string    `json:"excerpt"`
	Author    string    `json:"author,omitempty"`
	Archived  bool      `json:"archived"`
	ViewCount int64     `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
}

type BlogDetailResp struct {
	BlogItemResp
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ArchiveResp struct {
	Blog    BlogDetailResp `json:"blog"`
	Changed bool           `json:"changed"`
}
