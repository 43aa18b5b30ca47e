// file: models/hackathon.go
package models

import "time"

// Hackathon is one yearly edition. The edition with the greatest year is current.
type Hackathon struct {
	ID          uint32     `gorm:"primarykey" json:"id"`
	Year        int        `gorm:"uniqueIndex;not null" json:"year"`
	Name        string     `gorm:"size:100;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Location    string     `gorm:"size:200" json:"location"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Hackathon) TableName() string {
	return "hackathons"
}

// HackathonPhase mirrors the contest status computation: derived from the clock, never stored.
type HackathonPhase string

const (
	PhaseUpcoming HackathonPhase = "upcoming"
	PhaseRunning  HackathonPhase = "running"
	PhaseEnded    HackathonPhase = "ended"
	PhaseUnknown  HackathonPhase = "unscheduled"
)

// PhaseAt computes the phase of h at now.
func (h Hackathon) PhaseAt(now time.Time) HackathonPhase {
	switch {
	case h.StartTime == nil || h.EndTime == nil:
		return PhaseUnknown
	case now.Before(*h.StartTime):
		return PhaseUpcoming
	case now.After(*h.EndTime):
		return PhaseEnded
	default:
		return PhaseRunning
	}
}

type SponsorTier string

const (
	TierPlatinum SponsorTier = "platinum"
	TierGold     SponsorTier = "gold"
	TierSilver   SponsorTier = "silver"
	TierBronze   SponsorTier = "bronze"
	TierPartner  SponsorTier = "partner"
)

type Sponsor struct {
	ID          uint32      `gorm:"primarykey" json:"id,omitempty"`
	HackathonID uint32      `gorm:"not null;index" json:"hackathon_id"`
	Name        string      `gorm:"size:100;not null" json:"name"`
	Tier        SponsorTier `gorm:"size:16;not null;default:'partner'" json:"tier"`
	LogoURL     string      `gorm:"size:512" json:"logo_url"`
	Link        string      `gorm:"size:255" json:"link"`
	Position    int         `gorm:"not null;default:0" json:"position"`
}

func (Sponsor) TableName() string {
	return "sponsors"
}

type ScheduleItem struct {
	ID          uint32     `gorm:"primarykey" json:"id,omitempty"`
	HackathonID uint32     `gorm:"not null;index" json:"hackathon_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Location    string     `gorm:"size:200" json:"location"`
	StartsAt    time.Time  `gorm:"not null" json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
}

func (ScheduleItem) TableName() string {
	return "schedule_items"
}

type FAQ struct {
	ID          uint32 `gorm:"primarykey" json:"id,omitempty"`
	HackathonID uint32 `gorm:"not null;index" json:"hackathon_id"`
	Question    string `gorm:"size:300;not null" json:"question"`
	Answer      string `gorm:"type:text;not null" json:"answer"`
	Position    int    `gorm:"not null;default:0" json:"position"`
}

func (FAQ) TableName() string {
	return "faqs"
}
