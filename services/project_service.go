// file: services/project_service.go
package services

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"gorm.io/gorm"
)

const (
	// CandidateLimit bounds member search results.
	CandidateLimit     = 20
	defaultMaxTeamSize = 4
)

var candidateColumns = []string{"first_name", "last_name", "email"}

// Candidate is the public view of a registration in member search.
type Candidate struct {
	ID        uint32 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type ProjectService struct {
	db       *gorm.DB
	settings *SettingService
	members  *MembershipIndex
}

func NewProjectService(db *gorm.DB, settings *SettingService, members *MembershipIndex) *ProjectService {
	return &ProjectService{db: db, settings: settings, members: members}
}

// SearchCandidates finds registrations that are not on a project yet and not
// already picked by the caller. An empty query returns nothing.
func (s *ProjectService) SearchCandidates(ctx context.Context, q string, selected []uint32) ([]Candidate, error) {
	sql, args, ok := buildTextPredicate(candidateColumns, q)
	if !ok {
		return []Candidate{}, nil
	}
	busy := s.members.Snapshot().IDs
	exclude := make([]uint32, 0, len(busy)+len(selected))
	exclude = append(append(exclude, busy...), selected...)

	query := s.db.WithContext(ctx).Model(&models.Registration{}).
		Select("id, first_name, last_name, email").
		Where(sql, args...)
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	out := []Candidate{}
	if err := query.Order("first_name asc").Order("last_name asc").Limit(CandidateLimit).Find(&out).Error; err != nil {
		return nil, database.MapError(err, "registration")
	}
	return out, nil
}

// dedupeIDs drops zero and repeated ids, keeping the first occurrence.
func dedupeIDs(ids []uint32) []uint32 {
	seen := make(map[uint32]bool, len(ids))
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Submit registers a project for the current hackathon.
//
// Membership is re-checked inside the write transaction, which narrows but does
// not close the window for two concurrent submissions naming the same person.
func (s *ProjectService) Submit(ctx context.Context, name string, memberIDs []uint32) (*models.Project, error) {
	if err := s.settings.RequireOpen(ctx, models.SettingProjectRegistrationOpen, false, "Project registration is closed"); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("project name is required", map[string]string{"name": "Project name is required"})
	}
	if len(name) > 100 {
		return nil, apperrors.NewValidationError("project name too long", map[string]string{"name": "must be at most 100 characters"})
	}
	memberIDs = dedupeIDs(memberIDs)
	maxSize, err := s.settings.Int(ctx, models.SettingMaxTeamSize, defaultMaxTeamSize)
	if err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, apperrors.NewValidationError("no members", map[string]string{"member_ids": "at least one member is required"})
	}
	if maxSize > 0 && len(memberIDs) > maxSize {
		return nil, apperrors.NewValidationError("too many members", map[string]string{"member_ids": "at most " + strconv.Itoa(maxSize) + " members"})
	}
	for _, id := range memberIDs {
		if s.members.IsBusy(id) {
			return nil, apperrors.NewConflictError("A selected participant is already on a project")
		}
	}

	hackathon, err := CurrentHackathon(ctx, s.db)
	if err != nil {
		return nil, database.MapError(err, "hackathon")
	}
	if hackathon == nil {
		return nil, apperrors.NewNotFoundError("No hackathon is configured")
	}

	project := models.Project{HackathonID: hackathon.ID, Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(&models.Registration{}).Where("id IN ?", memberIDs).Count(&found).Error; err != nil {
			return err
		}
		if int(found) != len(memberIDs) {
			return apperrors.NewValidationError("unknown participant", map[string]string{"member_ids": "contains an unknown registration"})
		}
		var taken int64
		if err := tx.Table("project_members pm").
			Joins("JOIN projects p ON p.id = pm.project_id").
			Where("p.hackathon_id = ? AND pm.registration_id IN ?", hackathon.ID, memberIDs).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return apperrors.NewConflictError("A selected participant is already on a project")
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for _, id := range memberIDs {
			m := models.ProjectMember{ProjectID: project.ID, RegistrationID: id}
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
			project.Members = append(project.Members, m)
		}
		return nil
	})
	if err != nil {
		return nil, database.MapError(err, "project")
	}
	s.members.Notify(ctx, OpInsert, project.ID)
	return &project, nil
}

// ListCurrent returns every project of the current hackathon with its members.
func (s *ProjectService) ListCurrent(ctx context.Context) ([]models.Project, error) {
	hackathon, err := CurrentHackathon(ctx, s.db)
	if err != nil {
		return nil, database.MapError(err, "hackathon")
	}
	projects := []models.Project{}
	if hackathon == nil {
		return projects, nil
	}
	err = s.db.WithContext(ctx).
		Where("hackathon_id = ?", hackathon.ID).
		Preload("Members.Registration").
		Order("created_at desc").
		Find(&projects).Error
	if err != nil {
		return nil, database.MapError(err, "project")
	}
	for i := range projects {
		sort.Slice(projects[i].Members, func(a, b int) bool {
			return projects[i].Members[a].CreatedAt.Before(projects[i].Members[b].CreatedAt)
		})
	}
	return projects, nil
}

// Delete removes a project and its memberships.
func (s *ProjectService) Delete(ctx context.Context, id uint32) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NewNotFoundError("project not found")
		}
		return nil
	})
	if err != nil {
		return database.MapError(err, "project")
	}
	s.members.Notify(ctx, OpDelete, id)
	return nil
}

// RemoveMember takes one registration off a project.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, registrationID uint32) error {
	res := s.db.WithContext(ctx).
		Where("project_id = ? AND registration_id = ?", projectID, registrationID).
		Delete(&models.ProjectMember{})
	if res.Error != nil {
		return database.MapError(res.Error, "project member")
	}
	if res.RowsAffected == 0 {
		return apperrors.NewNotFoundError("project member not found")
	}
	s.members.Notify(ctx, OpDelete, projectID)
	return nil
}
