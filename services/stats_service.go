// file: services/stats_service.go
package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"gorm.io/gorm"
)

const (
	statsCachePrefix = "stats:"
	statsCacheKey    = statsCachePrefix + "dashboard"
	// Short TTL keeps the dashboard near-live while absorbing refresh storms.
	statsCacheTTL = 30 * time.Second
)

type LabelCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DashboardStats summarises registrations for the dashboard charts.
type DashboardStats struct {
	Total       int64        `json:"total"`
	CheckedIn   int64        `json:"checked_in"`
	TShirtSizes []LabelCount `json:"tshirt_sizes"`
	TopSchools  []LabelCount `json:"top_schools"`
	Levels      []LabelCount `json:"levels"`
	Transport   []LabelCount `json:"transport"`
	ByDay       []DayCount   `json:"by_day"`
	GeneratedAt time.Time    `json:"generated_at"`
}

type StatsService struct {
	db    *gorm.DB
	cache KV
}

func NewStatsService(db *gorm.DB, cache KV) *StatsService {
	return &StatsService{db: db, cache: cache}
}

// Dashboard returns cached statistics when fresh, otherwise recomputes them.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, bool, error) {
	if val, ok, err := s.cache.Get(ctx, statsCacheKey); err == nil && ok {
		var cached DashboardStats
		if json.Unmarshal([]byte(val), &cached) == nil {
			return &cached, true, nil
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, statsCacheKey, string(data), statsCacheTTL); err != nil {
			slog.Warn("cache dashboard stats failed", "error", err)
		}
	}
	return stats, false, nil
}

// Invalidate drops cached statistics after a registration write.
func (s *StatsService) Invalidate(ctx context.Context) {
	if err := s.cache.DelPrefix(ctx, statsCachePrefix); err != nil {
		slog.Warn("clear stats cache failed", "error", err)
	}
}

func (s *StatsService) compute(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{GeneratedAt: time.Now()}
	reg := func() *gorm.DB { return db.Model(&models.Registration{}) }

	if err := reg().Count(&stats.Total).Error; err != nil {
		return nil, database.MapError(err, "registration")
	}
	if err := reg().Where("checked_in = ?", true).Count(&stats.CheckedIn).Error; err != nil {
		return nil, database.MapError(err, "registration")
	}

	groups := []struct {
		column string
		limit  int
		dst    *[]LabelCount
	}{
		{"tshirt_size", 0, &stats.TShirtSizes},
		{"school", 10, &stats.TopSchools},
		{"level_of_study", 0, &stats.Levels},
		{"airport_transportation", 0, &stats.Transport},
	}
	for _, g := range groups {
		q := reg().Select(g.column + " AS label, COUNT(*) AS count").
			Group(g.column).Order("count desc").Order(g.column + " asc")
		if g.limit > 0 {
			q = q.Limit(g.limit)
		}
		if err := q.Scan(g.dst).Error; err != nil {
			return nil, database.MapError(err, "registration")
		}
	}

	var days []struct {
		Day   time.Time
		Count int64
	}
	if err := reg().Select("CAST(created_at AS DATE) AS day, COUNT(*) AS count").
		Group("day").Order("day asc").Scan(&days).Error; err != nil {
		return nil, database.MapError(err, "registration")
	}
	stats.ByDay = make([]DayCount, 0, len(days))
	for _, d := range days {
		stats.ByDay = append(stats.ByDay, DayCount{Date: d.Day.Format("2006-01-02"), Count: d.Count})
	}
	return stats, nil
}
