package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sociogram/internal/apperrors"
	"sociogram/internal/cache"
)

func newMediaFixture(t *testing.T) (MediaService, *memCache, *fakeStorage) {
	t.Helper()
	clock := newFakeClock()
	cacheLayer := newMemCache(clock.Now)
	store := &fakeStorage{}
	return NewMediaService(store, cacheLayer, testConfig()), cacheLayer, store
}

func TestValidateImageName(t *testing.T) {
	media, _, _ := newMediaFixture(t)

	tests := []struct {
		fileName string
		wantErr  bool
	}{
		{"photo.png", false},
		{"photo.jpg", false},
		{"PHOTO.JPEG", false},
		{"animation.gif", false},
		{"modern.webp", false},
		{"notes.txt", true},
		{"script.sh", true},
		{"noextension", true},
		{"", true},
	}

	for _, tt := range tests {
		err := media.ValidateImageName(tt.fileName)
		if tt.wantErr {
			require.Error(t, err, tt.fileName)
			assert.True(t, apperrors.IsValidation(err), tt.fileName)
		} else {
			assert.NoError(t, err, tt.fileName)
		}
	}
}

func TestResolveURLPassesAbsoluteURLsThrough(t *testing.T) {
	media, _, _ := newMediaFixture(t)
	ctx := context.Background()

	for _, u := range []string{
		"http://localhost:9000/media/media/1/cat.png",
		"https://cdn.example.com/media/cat.png",
	} {
		assert.Equal(t, u, media.ResolveURL(ctx, u))
	}
}

func TestResolveURLEmptyInEmptyOut(t *testing.T) {
	media, _, _ := newMediaFixture(t)
	assert.Empty(t, media.ResolveURL(context.Background(), ""))
}

func TestResolveURLPrefersCachedResolution(t *testing.T) {
	media, cacheLayer, _ := newMediaFixture(t)
	ctx := context.Background()

	assetPath := "/assets/abc123.png"
	assert.Equal(t, assetPath, media.ResolveURL(ctx, assetPath))

	media.CacheResolvedURL(ctx, assetPath, "http://localhost:9000/media/media/1/abc123.png")
	assert.Equal(t, "http://localhost:9000/media/media/1/abc123.png", media.ResolveURL(ctx, assetPath))

	// Resolving never writes the fallback into the cache.
	assert.False(t, cacheLayer.has(cache.ImageKey("/assets/other.png")))
	media.ResolveURL(ctx, "/assets/other.png")
	assert.False(t, cacheLayer.has(cache.ImageKey("/assets/other.png")))
}

func TestResolveURLPrefixesBareReferences(t *testing.T) {
	media, _, _ := newMediaFixture(t)
	assert.Equal(t, "/assets/cat.png", media.ResolveURL(context.Background(), "cat.png"))
}

func TestNewAssetPathIsUniqueAndKeepsExtension(t *testing.T) {
	media, _, _ := newMediaFixture(t)

	first := media.NewAssetPath("cat.PNG")
	second := media.NewAssetPath("cat.PNG")

	assert.True(t, strings.HasPrefix(first, "/assets/"))
	assert.True(t, strings.HasSuffix(first, ".png"))
	assert.NotEqual(t, first, second)
}

func TestDeleteForURLSkipsLocalPaths(t *testing.T) {
	media, _, store := newMediaFixture(t)
	ctx := context.Background()

	media.DeleteForURL(ctx, "/assets/abc123.png")
	assert.Empty(t, store.deletes)

	media.DeleteForURL(ctx, "http://localhost:9000/media/media/1/cat.png")
	require.Len(t, store.deletes, 1)
	assert.Equal(t, "media/1/cat.png", store.deletes[0])
}

func TestUploadWrapsStorageFailure(t *testing.T) {
	media, _, store := newMediaFixture(t)
	store.failNext = true

	_, _, err := media.Upload(context.Background(), "owner", "cat.png", strings.NewReader("png"), 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)
}
