// Package service exposes the operations the HTTP layer calls: subscribing
// a repo, inspecting the accumulated log and clearing captured state.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"repowatch.app/watcher/internal/domain"
	"repowatch.app/watcher/internal/store"
)

const inspectLimit = 20

type SubscribeResult struct {
	Key               domain.WatchKey
	AlreadySubscribed bool
}

type InspectResult struct {
	Count  int
	Events []domain.ClassifiedEvent
}

type WatchService interface {
	Subscribe(ctx context.Context, repoURL string) (SubscribeResult, error)
	Inspect(ctx context.Context) InspectResult
	Clear(ctx context.Context)
}

type watchService struct {
	registry *store.WatchRegistry
	ledger   *store.DedupLedger
	events   *store.EventLog
}

func NewWatchService(stores *store.Stores) WatchService {
	return &watchService{
		registry: stores.Registry(),
		ledger:   stores.Ledger(),
		events:   stores.Events(),
	}
}

// Subscribe parses the locator and registers the watch key. Subscribing an
// already watched repo is a no-op that reports AlreadySubscribed; its
// polling state is left alone.
func (s *watchService) Subscribe(ctx context.Context, repoURL string) (SubscribeResult, error) {
	key, err := domain.ParseRepoURL(repoURL)
	if err != nil {
		return SubscribeResult{}, fmt.Errorf("parsing repo url: %w", err)
	}

	added := s.registry.Add(key)
	if added {
		slog.InfoContext(ctx, "repo subscribed", "repo", key, "watched", s.registry.Len())
	}

	return SubscribeResult{Key: key, AlreadySubscribed: !added}, nil
}

// Inspect reports the total log size and the most recent events.
func (s *watchService) Inspect(ctx context.Context) InspectResult {
	return InspectResult{
		Count:  s.events.Len(),
		Events: s.events.Recent(inspectLimit),
	}
}

// Clear empties the event log and the dedup ledger. Previously seen events
// re-delivered upstream are accepted as new afterwards.
func (s *watchService) Clear(ctx context.Context) {
	s.events.Clear()
	s.ledger.Clear()
	slog.InfoContext(ctx, "event log and dedup ledger cleared")
}
