// Package poller implements the conditional fetch for a single watched repo
// and the scheduling loop that fans those fetches out on a fixed cadence.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"repowatch.app/watcher/common/logger"
	"repowatch.app/watcher/internal/classifier"
	"repowatch.app/watcher/internal/domain"
	"repowatch.app/watcher/internal/github"
	"repowatch.app/watcher/internal/store"
)

// Outcome is the terminal state of one poll attempt. Every failure mode
// resolves to one of these; nothing escapes the poll boundary.
type Outcome string

const (
	// OutcomeUpdated means the feed returned a body; Result.Events holds
	// the not-yet-seen entries.
	OutcomeUpdated Outcome = "updated"
	// OutcomeUnchanged means the upstream answered 304 to our validator.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeRemoved means the repo is gone upstream; the manager must
	// drop it from the registry.
	OutcomeRemoved Outcome = "removed"
	// OutcomeRejected covers auth failures and rate limiting; polling
	// continues unchanged next cycle.
	OutcomeRejected Outcome = "rejected"
	// OutcomeError covers network failures and unexpected statuses.
	OutcomeError Outcome = "error"
)

// EventLister is the slice of the GitHub client the poller consumes.
type EventLister interface {
	ListRepoEvents(ctx context.Context, repo domain.WatchKey, etag string) (github.EventsPage, error)
}

// Result is the per-repo output of a cycle, collected by the manager.
type Result struct {
	Key     domain.WatchKey
	Outcome Outcome
	Events  []domain.ClassifiedEvent
}

type Poller struct {
	client   EventLister
	registry *store.WatchRegistry
	ledger   *store.DedupLedger
}

func New(client EventLister, registry *store.WatchRegistry, ledger *store.DedupLedger) *Poller {
	return &Poller{
		client:   client,
		registry: registry,
		ledger:   ledger,
	}
}

// Poll performs one conditional fetch for the entry. The stored validator is
// sent upstream; on success the new validator is recorded and the returned
// raw events are deduped and classified oldest-first, so within the batch
// ascending recency is preserved.
func (p *Poller) Poll(ctx context.Context, entry store.WatchEntry) Result {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		Repo:      logger.Ptr(entry.Key.String()),
		Component: "watcher.poller",
	})

	page, err := p.client.ListRepoEvents(ctx, entry.Key, entry.ETag)
	checkedAt := time.Now().UTC()

	switch {
	case errors.Is(err, github.ErrNotFound):
		slog.InfoContext(ctx, "repo gone upstream, unwatching")
		return Result{Key: entry.Key, Outcome: OutcomeRemoved}
	case errors.Is(err, github.ErrRateLimited), errors.Is(err, github.ErrUnauthorized):
		slog.WarnContext(ctx, "poll rejected by upstream", "error", err)
		p.registry.UpdateAfterPoll(entry.Key, "", checkedAt)
		return Result{Key: entry.Key, Outcome: OutcomeRejected}
	case err != nil:
		slog.WarnContext(ctx, "poll failed, will retry next cycle", "error", err)
		p.registry.UpdateAfterPoll(entry.Key, "", checkedAt)
		return Result{Key: entry.Key, Outcome: OutcomeError}
	}

	if page.NotModified {
		p.registry.UpdateAfterPoll(entry.Key, "", checkedAt)
		return Result{Key: entry.Key, Outcome: OutcomeUnchanged}
	}

	p.registry.UpdateAfterPoll(entry.Key, page.ETag, checkedAt)

	// The feed is newest-first; walk it backwards so the batch comes out
	// oldest-first.
	var fresh []domain.ClassifiedEvent
	for i := len(page.Events) - 1; i >= 0; i-- {
		raw := page.Events[i]
		if raw.ID == "" || !p.ledger.MarkIfNew(raw.ID) {
			continue
		}
		fresh = append(fresh, classifier.Classify(entry.Key, raw))

		eventCtx := logger.WithLogFields(ctx, logger.LogFields{
			EventType: logger.Ptr(raw.Type),
			EventID:   logger.Ptr(raw.ID),
		})
		slog.DebugContext(eventCtx, "event recorded", "actor", raw.Actor.Login)
	}

	if len(fresh) > 0 {
		slog.DebugContext(ctx, "new events classified",
			"count", len(fresh),
			"suggested_interval", page.PollInterval)
	}

	return Result{Key: entry.Key, Outcome: OutcomeUpdated, Events: fresh}
}
