// file: dto/site.go
package dto

import "time"

type HackathonReq struct {
	Year        int        `json:"year" validate:"required,min=2000,max=2100"`
	Name        string     `json:"name" validate:"required,max=100"`
	Description string     `json:"description"`
	Location    string     `json:"location" validate:"max=200"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

type SponsorReq struct {
	Name     string `json:"name" validate:"required,max=100"`
	Tier     string `json:"tier" validate:"omitempty,oneof=platinum gold silver bronze partner"`
	LogoURL  string `json:"logo_url" validate:"omitempty,url,max=512"`
	Link     string `json:"link" validate:"omitempty,url,max=255"`
	Position int    `json:"position"`
}

type ScheduleItemReq struct {
	Title    string     `json:"title" validate:"required,max=200"`
	Location string     `json:"location" validate:"max=200"`
	StartsAt time.Time  `json:"starts_at" validate:"required"`
	EndsAt   *time.Time `json:"ends_at"`
}

type FAQReq struct {
	Question string `json:"question" validate:"required,max=300"`
	Answer   string `json:"answer" validate:"required"`
	Position int    `json:"position"`
}

type SettingReq struct {
	Value string `json:"value"`
}

type CreateSettingReq struct {
	Name      string `json:"name" validate:"required,max=64"`
	ValueType string `json:"value_type" validate:"required,oneof=boolean string number"`
	Value     string `json:"value"`
	Public    bool   `json:"public"`
}

type SettingResp struct {
	Name      string      `json:"name"`
	Value     interface{} `json:"value"`
	ValueType string      `json:"value_type"`
	Public    bool        `json:"public"`
}
