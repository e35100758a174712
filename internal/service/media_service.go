package service

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sociogram/internal/apperrors"
	"sociogram/internal/cache"
	"sociogram/internal/config"
	"sociogram/internal/storage"
)

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// MediaService owns media references: validation, uploads to the object
// store, and resolution of stored references to displayable URLs.
type MediaService interface {
	ValidateImageName(fileName string) error
	Upload(ctx context.Context, ownerID, fileName string, file io.Reader, size int64) (string, string, error)
	UploadDetached(ownerID, fileName string, data []byte, onDone func(ctx context.Context, objectName, mediaURL string))
	DeleteForURL(ctx context.Context, mediaURL string)
	ResolveURL(ctx context.Context, idOrPath string) string
	CacheResolvedURL(ctx context.Context, idOrPath, mediaURL string)
	NewAssetPath(fileName string) string
}

// imageURLTTL bounds how long a resolved media URL memo can outlive the
// upload-completion write that produced it.
const imageURLTTL = 24 * time.Hour

type mediaService struct {
	storage storage.Storage
	cache   cache.Cache
	cfg     *config.Config
}

func NewMediaService(store storage.Storage, cacheLayer cache.Cache, cfg *config.Config) MediaService {
	return &mediaService{
		storage: store,
		cache:   cacheLayer,
		cfg:     cfg,
	}
}

func (m *mediaService) ValidateImageName(fileName string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	if !allowedImageExts[ext] {
		return apperrors.Validation("file type %q is not an allowed image type", ext)
	}
	return nil
}

// NewAssetPath builds the stable local media reference a document keeps until
// (and unless) the object-store upload reconciles it.
func (m *mediaService) NewAssetPath(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return strings.TrimSuffix(m.cfg.AssetsBaseURL, "/") + "/" + uuid.New().String() + ext
}

func (m *mediaService) Upload(ctx context.Context, ownerID, fileName string, file io.Reader, size int64) (string, string, error) {
	objectName, mediaURL, err := m.storage.UploadMedia(ctx, ownerID, fileName, file, size)
	if err != nil {
		return "", "", apperrors.Upstream(err, "media upload")
	}
	return objectName, mediaURL, nil
}

// UploadDetached runs the upload after the caller has already responded. The
// original caller never observes the outcome; failures are only logged.
// onDone receives the object name and public URL and is responsible for the
// out-of-band document update, cache write and broadcast.
func (m *mediaService) UploadDetached(ownerID, fileName string, data []byte, onDone func(ctx context.Context, objectName, mediaURL string)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		objectName, mediaURL, err := m.storage.UploadMedia(ctx, ownerID, fileName, bytes.NewReader(data), int64(len(data)))
		if err != nil {
			log.Warn().Err(err).Str("owner", ownerID).Str("file", fileName).Msg("detached media upload failed")
			return
		}

		if onDone != nil {
			onDone(ctx, objectName, mediaURL)
		}
	}()
}

// DeleteForURL makes a best-effort attempt to remove the underlying object.
// URLs that do not point at the object store (local asset paths) are skipped.
func (m *mediaService) DeleteForURL(ctx context.Context, mediaURL string) {
	base := strings.TrimSuffix(m.cfg.MinIO.PublicURL, "/") + "/"
	if !strings.HasPrefix(mediaURL, base) {
		return
	}

	objectName := strings.TrimPrefix(mediaURL, base)
	if err := m.storage.DeleteMedia(ctx, objectName); err != nil {
		log.Warn().Err(err).Str("object", objectName).Msg("failed to delete media object")
	}
}

// CacheResolvedURL memoizes a resolved URL for a media reference. Only the
// upload-completion path calls this; ResolveURL never caches its fallback.
func (m *mediaService) CacheResolvedURL(ctx context.Context, idOrPath, mediaURL string) {
	m.cache.Set(ctx, cache.ImageKey(idOrPath), mediaURL, imageURLTTL)
}

// ResolveURL maps a stored media reference to a displayable URL. Absolute
// URLs pass through unchanged. A cached resolution (written by the
// upload-completion path) wins over the fallback; the fallback itself is
// never cached here.
func (m *mediaService) ResolveURL(ctx context.Context, idOrPath string) string {
	if idOrPath == "" {
		return ""
	}

	if strings.HasPrefix(idOrPath, "http://") || strings.HasPrefix(idOrPath, "https://") {
		return idOrPath
	}

	if resolved, ok := m.cache.Get(ctx, cache.ImageKey(idOrPath)); ok {
		return resolved
	}

	if strings.HasPrefix(idOrPath, "/") {
		return idOrPath
	}
	return strings.TrimSuffix(m.cfg.AssetsBaseURL, "/") + "/" + idOrPath
}
