package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

const (
	putTimeout    = 2 * time.Minute
	deleteTimeout = 30 * time.Second
	deleteWorkers = 8
)

// ObjectStore holds uploaded lecture files under bucket relative keys
// ("<user>/<lecture>/<uuid>-<name>").
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	// Delete removes keys concurrently. Missing objects are ignored.
	Delete(ctx context.Context, keys ...string) error
	URL(key string) string
}

type gcsStore struct {
	log    *logger.Logger
	client *storage.Client
	cfg    StorageConfig
}

func NewObjectStore(log *logger.Logger) (ObjectStore, error) {
	cfg, err := StorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("object storage config: %w", err)
	}
	return NewObjectStoreWithConfig(log, cfg)
}

func NewObjectStoreWithConfig(log *logger.Logger, cfg StorageConfig) (ObjectStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("object storage config: %w", err)
	}
	if cfg.Emulated() {
		// The storage client only honours the emulator through the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
	}
	client, err := storage.NewClient(context.Background(), clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	s := &gcsStore{log: log.With("service", "ObjectStore", "bucket", cfg.Bucket), client: client, cfg: cfg}
	s.log.Info("object storage ready", "mode", cfg.Mode, "mode_inferred", cfg.ModeInferred, "public_base_url", cfg.PublicBaseURL)
	return s, nil
}

// clientOptions picks credentials from GOOGLE_APPLICATION_CREDENTIALS_JSON or
// GOOGLE_APPLICATION_CREDENTIALS (inline JSON or a path). Neither means ADC.
func clientOptions(cfg StorageConfig) []option.ClientOption {
	if cfg.Emulated() {
		return []option.ClientOption{option.WithoutAuthentication()}
	}
	opts := []option.ClientOption{option.WithScopes(storage.ScopeReadWrite)}
	creds := envutil.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", envutil.String("GOOGLE_APPLICATION_CREDENTIALS", ""))
	switch {
	case creds == "":
	case strings.HasPrefix(creds, "{"):
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	default:
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

func (s *gcsStore) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.cfg.Bucket).Object(key)
}

func (s *gcsStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, putTimeout)
	defer cancel()
	if contentType == "" {
		contentType = ContentTypeForKey(key)
	}
	w := s.object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}
	s.log.Debug("stored object", "key", key, "content_type", contentType)
	return nil
}

func (s *gcsStore) Delete(ctx context.Context, keys ...string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(deleteWorkers)
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		g.Go(func() error {
			dctx, cancel := context.WithTimeout(gctx, deleteTimeout)
			defer cancel()
			if err := s.object(key).Delete(dctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// URL is where a client downloads key. The emulator serves media through its
// JSON API; real buckets use PublicBaseURL or storage.googleapis.com.
func (s *gcsStore) URL(key string) string {
	return objectURL(s.cfg, key)
}

func objectURL(cfg StorageConfig, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	base := cfg.PublicBaseURL
	if cfg.Emulated() {
		if base == "" {
			base = cfg.EmulatorHost
		}
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(cfg.Bucket), url.PathEscape(key))
	}
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return base + "/" + cfg.Bucket + "/" + key
}

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".json": "application/json",
}

// ContentTypeForKey maps the lecture file extensions uploads accept.
func ContentTypeForKey(key string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(strings.TrimSpace(key)))]; ok {
		return ct
	}
	return "application/octet-stream"
}
