package repository

import (
	"context"
	"time"

	"github.com/noah-isme/sma-adp-timetable/internal/dto"
)

const previewKeyPrefix = "timetable:preview:"

// PreviewRepository keeps timetable previews in Redis until they are applied or expire.
type PreviewRepository struct {
	cache *CacheRepository
}

// NewPreviewRepository wraps a cache repository.
func NewPreviewRepository(cache *CacheRepository) *PreviewRepository {
	return &PreviewRepository{cache: cache}
}

// Save stores preview under its id for ttl.
func (r *PreviewRepository) Save(ctx context.Context, preview dto.TimetablePreview, ttl time.Duration) error {
	return r.cache.Set(ctx, previewKeyPrefix+preview.PreviewID, preview, ttl)
}

// Get loads a preview. A missing or expired preview yields appErrors.ErrCacheMiss.
func (r *PreviewRepository) Get(ctx context.Context, id string) (*dto.TimetablePreview, error) {
	var preview dto.TimetablePreview
	if err := r.cache.Get(ctx, previewKeyPrefix+id, &preview); err != nil {
		return nil, err
	}
	return &preview, nil
}

// Delete drops a preview.
func (r *PreviewRepository) Delete(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, previewKeyPrefix+id)
}
