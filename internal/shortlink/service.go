package shortlink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheTTL = 15 * time.Minute

// Service mints and resolves short links with a Redis read-through cache.
type Service struct {
	repo   Repository
	cache  *redis.Client
	logger *slog.Logger
	group  singleflight.Group
}

// NewService constructs a short link service. The cache client may be nil,
// in which case every resolve hits the repository.
func NewService(repo Repository, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Mint creates a new slug pointing at the target, retrying on slug
// collisions.
func (s *Service) Mint(ctx context.Context, namespace string, target uuid.UUID) (string, error) {
	for attempt := 0; attempt < mintAttempts; attempt++ {
		slug, err := newSlug()
		if err != nil {
			return "", err
		}
		link := Link{
			Namespace: namespace,
			Slug:      slug,
			Target:    target,
			CreatedAt: time.Now().UTC(),
		}
		err = s.repo.Insert(ctx, link)
		if errors.Is(err, ErrSlugTaken) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("insert short link: %w", err)
		}
		return slug, nil
	}
	return "", ErrExhausted
}

// Resolve returns the target for a namespace and slug. Concurrent misses
// for the same key are collapsed into a single repository lookup.
func (s *Service) Resolve(ctx context.Context, namespace, slug string) (uuid.UUID, error) {
	key := cacheKey(namespace, slug)

	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var target uuid.UUID
			if err := json.Unmarshal([]byte(raw), &target); err == nil {
				return target, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("short link cache read failed", slog.Any("error", err))
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		link, err := s.repo.Find(ctx, namespace, slug)
		if err != nil {
			return uuid.Nil, err
		}
		if s.cache != nil {
			raw, _ := json.Marshal(link.Target)
			if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
				s.logger.Warn("short link cache write failed", slog.Any("error", err))
			}
		}
		return link.Target, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return v.(uuid.UUID), nil
}

func cacheKey(namespace, slug string) string {
	return "shortlink:" + namespace + ":" + slug
}
