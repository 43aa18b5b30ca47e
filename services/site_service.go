// file: services/site_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CurrentHackathon returns the edition with the greatest year, or nil when none exists.
func CurrentHackathon(ctx context.Context, db *gorm.DB) (*models.Hackathon, error) {
	var h models.Hackathon
	err := db.WithContext(ctx).Order("year desc").Limit(1).Take(&h).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SiteContent is everything the public landing page renders.
type SiteContent struct {
	Hackathon models.Hackathon      `json:"hackathon"`
	Phase     models.HackathonPhase `json:"phase"`
	Sponsors  []models.Sponsor      `json:"sponsors"`
	Schedule  []models.ScheduleItem `json:"schedule"`
	FAQs      []models.FAQ          `json:"faqs"`
}

type SiteService struct {
	db      *gorm.DB
	members *MembershipIndex
}

// NewSiteService builds the site service. members may be nil when nothing
// tracks project membership.
func NewSiteService(db *gorm.DB, members *MembershipIndex) *SiteService {
	return &SiteService{db: db, members: members}
}

// sponsorTierOrder sorts platinum first on both PostgreSQL and MySQL.
const sponsorTierOrder = "CASE tier WHEN 'platinum' THEN 0 WHEN 'gold' THEN 1 WHEN 'silver' THEN 2 WHEN 'bronze' THEN 3 ELSE 4 END"

func (s *SiteService) Current(ctx context.Context) (*SiteContent, error) {
	h, err := CurrentHackathon(ctx, s.db)
	if err != nil {
		return nil, database.MapError(err, "hackathon")
	}
	if h == nil {
		return nil, apperrors.NewNotFoundError("No hackathon is configured")
	}

	content := &SiteContent{Hackathon: *h, Phase: h.PhaseAt(time.Now())}
	db := s.db.WithContext(ctx)
	if err := db.Where("hackathon_id = ?", h.ID).
		Order(sponsorTierOrder).Order("position asc").
		Find(&content.Sponsors).Error; err != nil {
		return nil, database.MapError(err, "sponsor")
	}
	if err := db.Where("hackathon_id = ?", h.ID).Order("starts_at asc").Find(&content.Schedule).Error; err != nil {
		return nil, database.MapError(err, "schedule item")
	}
	if err := db.Where("hackathon_id = ?", h.ID).Order("position asc").Order("id asc").Find(&content.FAQs).Error; err != nil {
		return nil, database.MapError(err, "faq")
	}
	return content, nil
}

// UpsertHackathon creates the edition for h.Year or updates it in place. A new
// edition changes which memberships count as busy, so the index is told.
func (s *SiteService) UpsertHackathon(ctx context.Context, h *models.Hackathon) error {
	if h.StartTime != nil && h.EndTime != nil && h.EndTime.Before(*h.StartTime) {
		return apperrors.NewValidationError("end time must be after start time", map[string]string{"end_time": "must be after start_time"})
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "location", "start_time", "end_time", "updated_at"}),
	}).Create(h).Error
	if err != nil {
		return database.MapError(err, "hackathon")
	}
	if s.members != nil {
		s.members.NotifyHackathonChange(ctx)
	}
	return nil
}

// currentID returns the current hackathon id, failing when none exists.
func (s *SiteService) currentID(ctx context.Context) (uint32, error) {
	h, err := CurrentHackathon(ctx, s.db)
	if err != nil {
		return 0, database.MapError(err, "hackathon")
	}
	if h == nil {
		return 0, apperrors.NewNotFoundError("No hackathon is configured")
	}
	return h.ID, nil
}

func (s *SiteService) AddSponsor(ctx context.Context, sp *models.Sponsor) error {
	id, err := s.currentID(ctx)
	if err != nil {
		return err
	}
	sp.ID = 0
	sp.HackathonID = id
	if sp.Tier == "" {
		sp.Tier = models.TierPartner
	}
	return database.MapError(s.db.WithContext(ctx).Create(sp).Error, "sponsor")
}

func (s *SiteService) AddScheduleItem(ctx context.Context, item *models.ScheduleItem) error {
	id, err := s.currentID(ctx)
	if err != nil {
		return err
	}
	if item.EndsAt != nil && item.EndsAt.Before(item.StartsAt) {
		return apperrors.NewValidationError("end must be after start", map[string]string{"ends_at": "must be after starts_at"})
	}
	item.ID = 0
	item.HackathonID = id
	return database.MapError(s.db.WithContext(ctx).Create(item).Error, "schedule item")
}

func (s *SiteService) AddFAQ(ctx context.Context, faq *models.FAQ) error {
	id, err := s.currentID(ctx)
	if err != nil {
		return err
	}
	faq.ID = 0
	faq.HackathonID = id
	return database.MapError(s.db.WithContext(ctx).Create(faq).Error, "faq")
}

// Delete removes one site content row. model must be a pointer to Sponsor, ScheduleItem or FAQ.
func (s *SiteService) Delete(ctx context.Context, model interface{}, id uint32, what string) error {
	res := s.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return database.MapError(res.Error, what)
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError(what + " not found")
	}
	return nil
}
