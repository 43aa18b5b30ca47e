// file: services/blog_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/database"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
	"gorm.io/gorm"
)

const (
	blogViewPrefix = "blog_view:"
	// BlogViewWindow is how long a session's view of a post is remembered.
	BlogViewWindow = 24 * time.Hour
	blogSlugMax    = 200
)

// BlogRepository is the persistence surface BlogService needs.
type BlogRepository interface {
	List(ctx context.Context, includeArchived bool, p utils.PageParams) ([]models.Blog, int64, error)
	Get(ctx context.Context, id uint32) (*models.Blog, error)
	Create(ctx context.Context, b *models.Blog) error
	Update(ctx context.Context, id uint32, values map[string]interface{}) error
	Delete(ctx context.Context, id uint32) error
	IncrementViews(ctx context.Context, id uint32) error
}

type GormBlogRepository struct {
	db *gorm.DB
}

func NewGormBlogRepository(db *gorm.DB) *GormBlogRepository {
	return &GormBlogRepository{db: db}
}

func (r *GormBlogRepository) List(ctx context.Context, includeArchived bool, p utils.PageParams) ([]models.Blog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Blog{})
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Blog
	err := q.Preload("Author").
		Order("created_at desc").Order("id desc").
		Offset(p.Offset()).Limit(p.Limit()).
		Find(&rows).Error
	return rows, total, err
}

func (r *GormBlogRepository) Get(ctx context.Context, id uint32) (*models.Blog, error) {
	var b models.Blog
	if err := r.db.WithContext(ctx).Preload("Author").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBlogRepository) Create(ctx context.Context, b *models.Blog) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *GormBlogRepository) Update(ctx context.Context, id uint32, values map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Blog{ID: id}).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormBlogRepository) Delete(ctx context.Context, id uint32) error {
	res := r.db.WithContext(ctx).Delete(&models.Blog{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormBlogRepository) IncrementViews(ctx context.Context, id uint32) error {
	return r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
}

// ViewTracker remembers which session has already viewed which post.
type ViewTracker struct {
	kv  KV
	ttl time.Duration
}

func NewViewTracker(kv KV) *ViewTracker {
	return &ViewTracker{kv: kv, ttl: BlogViewWindow}
}

// First reports whether this is the session's first view of blogID in the window.
func (t *ViewTracker) First(ctx context.Context, session string, blogID uint32) (bool, error) {
	return t.kv.SetNX(ctx, viewKey(session, blogID), "1", t.ttl)
}

// Forget releases the marker so the next view from session counts again.
func (t *ViewTracker) Forget(ctx context.Context, session string, blogID uint32) error {
	return t.kv.Del(ctx, viewKey(session, blogID))
}

func viewKey(session string, blogID uint32) string {
	return fmt.Sprintf("%s%s:%d", blogViewPrefix, session, blogID)
}

// BlogInput carries editable blog fields.
type BlogInput struct {
	Title   string
	Content string
}

type BlogService struct {
	repo    BlogRepository
	views   *ViewTracker
	storage Storage
}

func NewBlogService(repo BlogRepository, views *ViewTracker, storage Storage) *BlogService {
	return &BlogService{repo: repo, views: views, storage: storage}
}

func (s *BlogService) List(ctx context.Context, includeArchived bool, p utils.PageParams) ([]models.Blog, utils.PageMeta, error) {
	rows, total, err := s.repo.List(ctx, includeArchived, p)
	if err != nil {
		return nil, utils.PageMeta{}, database.MapError(err, "blog")
	}
	return rows, utils.BuildMeta(total, p), nil
}

// Get loads a post. Archived posts are hidden unless includeArchived.
func (s *BlogService) Get(ctx context.Context, id uint32, includeArchived bool) (*models.Blog, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, database.MapError(err, "blog")
	}
	if b.Archived && !includeArchived {
		return nil, apperrors.NewNotFoundError("blog not found")
	}
	return b, nil
}

func validateBlog(in BlogInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		fields["title"] = "Title is required"
	} else if len(in.Title) > 200 {
		fields["title"] = "must be at most 200 characters"
	}
	if strings.TrimSpace(in.Content) == "" {
		fields["content"] = "Content is required"
	}
	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid blog", fields)
	}
	return nil
}

func (s *BlogService) Create(ctx context.Context, in BlogInput, authorID uint32) (*models.Blog, error) {
	if err := validateBlog(in); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	b := &models.Blog{
		Title:     title,
		Slug:      utils.Slugify(title, blogSlugMax),
		Content:   SanitizeHTML(in.Content),
		CreatedBy: &authorID,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, database.MapError(err, "blog")
	}
	return b, nil
}

func (s *BlogService) Update(ctx context.Context, id uint32, in BlogInput) (*models.Blog, error) {
	if err := validateBlog(in); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	err := s.repo.Update(ctx, id, map[string]interface{}{
		"title":   title,
		"slug":    utils.Slugify(title, blogSlugMax),
		"content": SanitizeHTML(in.Content),
	})
	if err != nil {
		return nil, database.MapError(err, "blog")
	}
	return s.Get(ctx, id, true)
}

// SetArchived moves a post to the target archive state. It writes nothing when
// the post is already there and reports whether anything changed.
func (s *BlogService) SetArchived(ctx context.Context, id uint32, target bool) (*models.Blog, bool, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, false, database.MapError(err, "blog")
	}
	if b.Archived == target {
		return b, false, nil
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"archived": target}); err != nil {
		return nil, false, database.MapError(err, "blog")
	}
	b.Archived = target
	return b, true, nil
}

func (s *BlogService) Delete(ctx context.Context, id uint32) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return database.MapError(err, "blog")
	}
	return nil
}

// RecordView bumps the view counter at most once per session and post.
func (s *BlogService) RecordView(ctx context.Context, session string, id uint32) (bool, error) {
	if session == "" {
		return false, nil
	}
	first, err := s.views.First(ctx, session, id)
	if err != nil {
		return false, apperrors.NewSystemError("view tracking failed", err)
	}
	if !first {
		return false, nil
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		if ferr := s.views.Forget(ctx, session, id); ferr != nil {
			slog.Warn("release view marker failed", "blog_id", id, "error", ferr)
		}
		return false, database.MapError(err, "blog")
	}
	return true, nil
}

// UploadCover resizes an image and attaches it to the post.
func (s *BlogService) UploadCover(ctx context.Context, id uint32, up *Upload) (*models.Blog, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, database.MapError(err, "blog")
	}
	url, err := storeCover(ctx, s.storage, BucketBlogs, fmt.Sprintf("blog-%d", id), up)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]interface{}{"cover_url": url}); err != nil {
		return nil, database.MapError(err, "blog")
	}
	return s.Get(ctx, id, true)
}

// MaxCoverBytes bounds raw cover uploads before resizing.
const MaxCoverBytes = 10 << 20

func storeCover(ctx context.Context, storage Storage, bucket, prefix string, up *Upload) (string, error) {
	if up == nil || up.Body == nil {
		return "", apperrors.NewValidationError("missing image", map[string]string{"file": "An image is required"})
	}
	if up.Size > MaxCoverBytes {
		return "", apperrors.NewValidationError("image too large", map[string]string{"file": "must be 10MB or smaller"})
	}
	data, contentType, err := ResizeCover(up.Body)
	if err != nil {
		return "", apperrors.NewValidationError("unsupported image", map[string]string{"file": "must be a JPEG, PNG or GIF image"})
	}
	ext := ".jpg"
	if contentType == "image/png" {
		ext = ".png"
	}
	key := utils.UploadKey(prefix, "cover"+ext, time.Now())
	if _, err := storage.Put(ctx, bucket, key, bytes.NewReader(data), contentType); err != nil {
		return "", apperrors.NewSystemError("cover upload failed", err)
	}
	return storage.PublicURL(bucket, key), nil
}
