package service

import (
	"context"
	"sync"
	"time"

	"github.com/noah-isme/sma-adp-timetable/internal/dto"
	appErrors "github.com/noah-isme/sma-adp-timetable/pkg/errors"
)

// memoryPreviewStore keeps previews in process when Redis is disabled.
type memoryPreviewStore struct {
	mu    sync.RWMutex
	now   func() time.Time
	items map[string]dto.TimetablePreview
}

func newMemoryPreviewStore(now func() time.Time) *memoryPreviewStore {
	if now == nil {
		now = time.Now
	}
	return &memoryPreviewStore{now: now, items: make(map[string]dto.TimetablePreview)}
}

func (s *memoryPreviewStore) Save(_ context.Context, preview dto.TimetablePreview, ttl time.Duration) error {
	if preview.ExpiresAt.IsZero() {
		preview.ExpiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge()
	s.items[preview.PreviewID] = preview
	return nil
}

func (s *memoryPreviewStore) Get(_ context.Context, id string) (*dto.TimetablePreview, error) {
	s.mu.RLock()
	preview, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, appErrors.ErrCacheMiss
	}
	if !s.now().Before(preview.ExpiresAt) {
		s.mu.Lock()
		delete(s.items, id)
		s.mu.Unlock()
		return nil, appErrors.ErrCacheMiss
	}
	return &preview, nil
}

func (s *memoryPreviewStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// purge drops expired previews. Callers hold the write lock.
func (s *memoryPreviewStore) purge() {
	now := s.now()
	for id, preview := range s.items {
		if !now.Before(preview.ExpiresAt) {
			delete(s.items, id)
		}
	}
}
