package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/alpnix/HackAtDavidson/apperrors"
	"github.com/alpnix/HackAtDavidson/models"
	"github.com/alpnix/HackAtDavidson/utils"
	"gorm.io/gorm"
)

type memBlogRepo struct {
	mu      sync.Mutex
	rows    map[uint32]*models.Blog
	next    uint32
	updates int
	incErr  error
}

func newMemBlogRepo() *memBlogRepo {
	return &memBlogRepo{rows: map[uint32]*models.Blog{}}
}

func (r *memBlogRepo) List(_ context.Context, includeArchived bool, p utils.PageParams) ([]models.Blog, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Blog
	for _, b := range r.rows {
		if b.Archived && !includeArchived {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *memBlogRepo) Get(_ context.Context, id uint32) (*models.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memBlogRepo) Create(_ context.Context, b *models.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	b.ID = r.next
	cp := *b
	r.rows[b.ID] = &cp
	return nil
}

func (r *memBlogRepo) Update(_ context.Context, id uint32, values map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.updates++
	for k, v := range values {
		switch k {
		case "archived":
			b.Archived = v.(bool)
		case "title":
			b.Title = v.(string)
		case "slug":
			b.Slug = v.(string)
		case "content":
			b.Content = v.(string)
		case "cover_url":
			b.CoverURL = v.(string)
		}
	}
	return nil
}

func (r *memBlogRepo) Delete(_ context.Context, id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memBlogRepo) IncrementViews(_ context.Context, id uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incErr != nil {
		return r.incErr
	}
	if b, ok := r.rows[id]; ok {
		b.ViewCount++
	}
	return nil
}

func newTestBlogService(t *testing.T) (*BlogService, *memBlogRepo) {
	t.Helper()
	repo := newMemBlogRepo()
	store := NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	return NewBlogService(repo, NewViewTracker(NewMemoryKV()), store), repo
}

func TestBlogCreateSanitisesAndSlugs(t *testing.T) {
	svc, _ := newTestBlogService(t)
	b, err := svc.Create(context.Background(), BlogInput{
		Title:   "  Hello Davidson!  ",
		Content: `<p>hi</p><script>alert(1)</script>`,
	}, 7)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Title != "Hello Davidson!" {
		t.Errorf("title = %q", b.Title)
	}
	if b.Slug != "hello-davidson" {
		t.Errorf("slug = %q", b.Slug)
	}
	if strings.Contains(b.Content, "script") {
		t.Errorf("content not sanitised: %q", b.Content)
	}
	if b.CreatedBy == nil || *b.CreatedBy != 7 {
		t.Errorf("created_by = %v", b.CreatedBy)
	}
}

func TestBlogCreateRequiresTitleAndContent(t *testing.T) {
	svc, _ := newTestBlogService(t)
	_, err := svc.Create(context.Background(), BlogInput{Title: " ", Content: ""}, 1)
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Type != apperrors.TypeValidation {
		t.Fatalf("want validation error, got %v", err)
	}
	if appErr.Fields["title"] == "" || appErr.Fields["content"] == "" {
		t.Errorf("fields = %v", appErr.Fields)
	}
}

func TestSetArchivedIsIdempotent(t *testing.T) {
	svc, repo := newTestBlogService(t)
	ctx := context.Background()
	b, _ := svc.Create(ctx, BlogInput{Title: "t", Content: "c"}, 1)

	_, changed, err := svc.SetArchived(ctx, b.ID, false)
	if err != nil || changed {
		t.Fatalf("unarchive of live post: changed=%v err=%v", changed, err)
	}
	if repo.updates != 0 {
		t.Fatalf("no-op wrote %d updates", repo.updates)
	}

	got, changed, err := svc.SetArchived(ctx, b.ID, true)
	if err != nil || !changed || !got.Archived {
		t.Fatalf("archive: got=%+v changed=%v err=%v", got, changed, err)
	}
	_, changed, _ = svc.SetArchived(ctx, b.ID, true)
	if changed || repo.updates != 1 {
		t.Errorf("second archive changed=%v updates=%d", changed, repo.updates)
	}

	if _, err := svc.Get(ctx, b.ID, false); !apperrors.IsType(err, apperrors.TypeNotFound) {
		t.Errorf("archived post visible to public: %v", err)
	}
	if _, err := svc.Get(ctx, b.ID, true); err != nil {
		t.Errorf("staff Get: %v", err)
	}
}

func TestRecordViewOncePerSession(t *testing.T) {
	svc, repo := newTestBlogService(t)
	ctx := context.Background()
	b, _ := svc.Create(ctx, BlogInput{Title: "t", Content: "c"}, 1)

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordView(ctx, "session-a", b.ID); err != nil {
			t.Fatal(err)
		}
	}
	counted, _ := svc.RecordView(ctx, "session-b", b.ID)
	if !counted {
		t.Error("second session not counted")
	}
	counted, _ = svc.RecordView(ctx, "", b.ID)
	if counted {
		t.Error("anonymous view counted")
	}

	if got := repo.rows[b.ID].ViewCount; got != 2 {
		t.Errorf("view_count = %d, want 2", got)
	}
}

func TestRecordViewRetriesAfterFailedIncrement(t *testing.T) {
	svc, repo := newTestBlogService(t)
	ctx := context.Background()
	b, _ := svc.Create(ctx, BlogInput{Title: "t", Content: "c"}, 1)

	repo.incErr = errors.New("connection reset")
	if counted, err := svc.RecordView(ctx, "session-a", b.ID); err == nil || counted {
		t.Fatalf("RecordView = %v, %v; want failure", counted, err)
	}

	repo.incErr = nil
	counted, err := svc.RecordView(ctx, "session-a", b.ID)
	if err != nil || !counted {
		t.Fatalf("retry RecordView = %v, %v; want counted", counted, err)
	}
	if got := repo.rows[b.ID].ViewCount; got != 1 {
		t.Errorf("view_count = %d, want 1", got)
	}
}

func TestGormBlogRepositoryIncrementIsAtomic(t *testing.T) {
	db := dryRunDB(t)
	var sql string
	if err := db.Callback().Update().After("gorm:update").Register("test:capture", func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
	}); err != nil {
		t.Fatal(err)
	}
	if err := NewGormBlogRepository(db).IncrementViews(context.Background(), 5); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(sql, `"view_count"=view_count + $1`) {
		t.Errorf("sql = %s", sql)
	}
}
