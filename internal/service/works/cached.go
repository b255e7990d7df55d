package works

import (
	"context"
	"errors"
	"fmt"

	"portfolio/internal/logger"
	"portfolio/internal/model"
	"portfolio/internal/repository"
)

// CachedSource persists every successful load from its primary source and
// serves the stored copy when the primary fails.
type CachedSource struct {
	primary Source
	repo    repository.WorkItemRepository
	logger  *logger.Logger
}

// NewCachedSource wraps primary with repo as last-known-good storage.
func NewCachedSource(primary Source, repo repository.WorkItemRepository, logger *logger.Logger) *CachedSource {
	return &CachedSource{primary: primary, repo: repo, logger: logger}
}

func (s *CachedSource) Name() string { return "cached(" + s.primary.Name() + ")" }

// Load tries the primary first, then the stored copy.
func (s *CachedSource) Load(ctx context.Context) ([]model.WorkItem, error) {
	items, err := s.primary.Load(ctx)
	if err == nil {
		if len(items) > 0 {
			if storeErr := s.repo.ReplaceAll(items); storeErr != nil {
				s.logger.Warning("Failed to cache work items: %v", storeErr)
			}
		}
		return items, nil
	}
	if errors.Is(err, context.Canceled) {
		return nil, err
	}

	s.logger.Warning("Work source %s failed, using cached items: %v", s.primary.Name(), err)

	cached, cacheErr := s.repo.GetAll()
	if cacheErr != nil {
		return nil, fmt.Errorf("%w; cache: %v", err, cacheErr)
	}
	if len(cached) == 0 {
		return nil, fmt.Errorf("%w; cache is empty", err)
	}
	return cached, nil
}
