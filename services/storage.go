// file: services/storage.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/alpnix/HackAtDavidson/config"
)

// Storage buckets.
const (
	BucketBlogs      = "blogs"
	BucketFormCovers = "form-covers"
	BucketResumes    = "resumes"
)

// PublicBuckets may be served without authentication.
var PublicBuckets = []string{BucketBlogs, BucketFormCovers}

var ErrObjectNotFound = errors.New("object not found")

// StoredObject describes an uploaded file.
type StoredObject struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	SHA256      string `json:"sha256"`
	URL         string `json:"url"`
}

// Storage persists uploaded files.
type Storage interface {
	Put(ctx context.Context, bucket, key string, r io.Reader, contentType string) (*StoredObject, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, bucket, key string) error
	PublicURL(bucket, key string) string
}

// NewStorage builds the driver selected in cfg.
func NewStorage(cfg *config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "oss":
		return NewOSSStorage(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSAccessSecret, cfg.OSSBucketPrefix)
	default:
		return NewLocalStorage(cfg.UploadDir, "/uploads"), nil
	}
}

// LocalStorage writes files below Root/<bucket>/<key>.
type LocalStorage struct {
	Root    string
	BaseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStorage) path(bucket, key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if strings.Contains(bucket, "/") || strings.Contains(bucket, "..") || bucket == "" {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	return filepath.Join(s.Root, bucket, clean), nil
}

func (s *LocalStorage) Put(ctx context.Context, bucket, key string, r io.Reader, contentType string) (*StoredObject, error) {
	dst, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, hasher), r)
	if err != nil {
		_ = os.Remove(dst)
		return nil, fmt.Errorf("write file: %w", err)
	}
	return &StoredObject{
		Bucket:      bucket,
		Key:         key,
		Size:        n,
		ContentType: contentType,
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		URL:         s.PublicURL(bucket, key),
	}, nil
}

func (s *LocalStorage) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	p, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	return f, err
}

func (s *LocalStorage) Delete(ctx context.Context, bucket, key string) error {
	p, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *LocalStorage) PublicURL(bucket, key string) string {
	return s.BaseURL + "/" + bucket + "/" + strings.TrimLeft(key, "/")
}

// OSSStorage maps each logical bucket to an Aliyun OSS bucket named prefix+bucket.
type OSSStorage struct {
	client   *oss.Client
	endpoint string
	prefix   string
}

func NewOSSStorage(endpoint, accessKey, secret, prefix string) (*OSSStorage, error) {
	client, err := oss.New(endpoint, accessKey, secret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	return &OSSStorage{client: client, endpoint: endpoint, prefix: prefix}, nil
}

func (s *OSSStorage) bucket(name string) (*oss.Bucket, error) {
	bkt, err := s.client.Bucket(s.prefix + name)
	if err != nil {
		return nil, fmt.Errorf("oss bucket %s: %w", name, err)
	}
	return bkt, nil
}

func (s *OSSStorage) Put(ctx context.Context, bucket, key string, r io.Reader, contentType string) (*StoredObject, error) {
	bkt, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	hasher := sha256.New()
	counter := &countingReader{r: io.TeeReader(r, hasher)}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
	}
	if bucket != BucketResumes {
		opts = append(opts, oss.ContentDisposition("inline"), oss.CacheControl("public, max-age=31536000, immutable"))
	}
	if err := bkt.PutObject(key, counter, opts...); err != nil {
		return nil, fmt.Errorf("oss put %s/%s: %w", bucket, key, err)
	}
	return &StoredObject{
		Bucket:      bucket,
		Key:         key,
		Size:        counter.n,
		ContentType: contentType,
		SHA256:      hex.EncodeToString(hasher.Sum(nil)),
		URL:         s.PublicURL(bucket, key),
	}, nil
}

func (s *OSSStorage) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	bkt, err := s.bucket(bucket)
	if err != nil {
		return nil, err
	}
	body, err := bkt.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		var se oss.ServiceError
		if errors.As(err, &se) && se.StatusCode == 404 {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return body, nil
}

func (s *OSSStorage) Delete(ctx context.Context, bucket, key string) error {
	bkt, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	return bkt.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSStorage) PublicURL(bucket, key string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(s.endpoint, "https://"), "http://")
	return "https://" + s.prefix + bucket + "." + host + "/" + strings.TrimLeft(key, "/")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
