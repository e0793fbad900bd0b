package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/algolovers/newsletter-console-services/internal/cache"
	"github.com/algolovers/newsletter-console-services/internal/events"
	"github.com/algolovers/newsletter-console-services/internal/metrics"
	"github.com/algolovers/newsletter-console-services/models"
	"github.com/rs/zerolog"
)

// tombstone overwrites an entry that could not be deleted. It decodes to a group without an id,
// which lookups treat as a miss.
var tombstone = []byte("null")

// GroupCacheService fronts the group store with a read-through, write-through cache keyed by group id.
// Cache failures are logged and never fail the caller. An entry that cannot be refreshed is dropped.
type GroupCacheService struct {
	store     GroupStore
	cache     cache.Cache
	publisher events.Notifier
}

func NewGroupCacheService(store GroupStore, c cache.Cache, publisher events.Notifier) *GroupCacheService {
	if publisher == nil {
		publisher = events.NoopNotifier{}
	}
	return &GroupCacheService{store: store, cache: c, publisher: publisher}
}

// FindByID returns the group, or nil if it does not exist. Missing groups are not cached.
func (s *GroupCacheService) FindByID(ctx context.Context, groupID string) (*models.Group, error) {
	logger := zerolog.Ctx(ctx)

	value, ok, err := s.cache.Get(ctx, groupID)
	if err != nil {
		metrics.RecordCacheError("get")
		logger.Warn().Err(err).Str("group_id", groupID).Msg("group cache lookup failed")
	}
	if ok {
		var group models.Group
		err := json.Unmarshal(value, &group)
		if err == nil && group.ID != "" {
			metrics.RecordCacheLookup(true)
			return &group, nil
		}
		if err != nil {
			logger.Warn().Str("group_id", groupID).Msg("discarding undecodable group cache entry")
		}
	}
	metrics.RecordCacheLookup(false)

	return s.Load(ctx, groupID)
}

// Load reads the group from the store, bypassing the cache, and refreshes its entry.
// Writes that depend on membership load through here.
func (s *GroupCacheService) Load(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		s.invalidate(ctx, groupID)
		return nil, nil
	}

	s.put(ctx, group)
	return group, nil
}

// Save persists the group, refreshes its cache entry and announces the change.
func (s *GroupCacheService) Save(ctx context.Context, group *models.Group) error {
	if err := s.store.SaveGroup(ctx, group); err != nil {
		return err
	}

	s.put(ctx, group)
	s.publish(ctx, group.ID, events.ActionUpdated)
	return nil
}

// Delete removes the group from the store and the cache.
func (s *GroupCacheService) Delete(ctx context.Context, group *models.Group) error {
	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return err
	}

	s.invalidate(ctx, group.ID)
	s.publish(ctx, group.ID, events.ActionDeleted)
	return nil
}

// ReplaceQuestions swaps the questions of a group without touching its membership, then drops the
// cached group so the next read sees the stored state.
func (s *GroupCacheService) ReplaceQuestions(ctx context.Context, groupID string, questions []models.Question) error {
	if err := s.store.ReplaceQuestions(ctx, groupID, questions); err != nil {
		return err
	}

	s.invalidate(ctx, groupID)
	s.publish(ctx, groupID, events.ActionUpdated)
	return nil
}

// Evict drops the cache entry for a group without touching the store.
func (s *GroupCacheService) Evict(ctx context.Context, groupID string) error {
	if err := s.cache.Delete(ctx, groupID); err != nil {
		metrics.RecordCacheError("delete")
		return fmt.Errorf("could not evict group %s: %w", groupID, err)
	}
	return nil
}

// HandleEvent evicts the group named by an event from another instance.
func (s *GroupCacheService) HandleEvent(ctx context.Context, event events.GroupEvent) error {
	zerolog.Ctx(ctx).Debug().Str("group_id", event.GroupID).Str("action", event.Action).
		Str("origin", event.Origin).Msg("evicting group after remote change")
	return s.Evict(ctx, event.GroupID)
}

func (s *GroupCacheService) put(ctx context.Context, group *models.Group) {
	value, err := json.Marshal(group)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("group_id", group.ID).Msg("could not encode group for cache")
		return
	}
	if err := s.cache.Set(ctx, group.ID, value); err != nil {
		metrics.RecordCacheError("set")
		zerolog.Ctx(ctx).Warn().Err(err).Str("group_id", group.ID).Msg("group cache write failed")
		s.invalidate(ctx, group.ID)
	}
}

// invalidate removes the entry for a group. If the delete fails the entry is overwritten with a
// tombstone instead, so an outdated group is never served.
func (s *GroupCacheService) invalidate(ctx context.Context, groupID string) {
	logger := zerolog.Ctx(ctx)

	err := s.Evict(ctx, groupID)
	if err == nil {
		return
	}
	logger.Warn().Err(err).Str("group_id", groupID).Msg("group cache eviction failed")

	if err := s.cache.Set(ctx, groupID, tombstone); err != nil {
		metrics.RecordCacheError("set")
		logger.Error().Err(err).Str("group_id", groupID).Msg("group cache entry may be stale")
	}
}

func (s *GroupCacheService) publish(ctx context.Context, groupID, action string) {
	err := s.publisher.Publish(ctx, events.GroupEvent{GroupID: groupID, Action: action})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("group_id", groupID).Msg("failed to publish group event")
	}
}
