package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"repowatch.app/watcher/internal/domain"
	"repowatch.app/watcher/internal/metrics"
	"repowatch.app/watcher/internal/store"
)

// Manager runs the scheduling loop: every interval it snapshots the
// registry, fans out one Poll per watched repo, applies removals and merges
// the fresh batches into the bounded log. One slow or failing repo never
// delays or aborts the others.
type Manager struct {
	poller   *Poller
	registry *store.WatchRegistry
	events   *store.EventLog
	metrics  *metrics.Metrics
	interval time.Duration
	tracer   trace.Tracer

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func NewManager(poller *Poller, registry *store.WatchRegistry, events *store.EventLog, m *metrics.Metrics, interval time.Duration) *Manager {
	return &Manager{
		poller:    poller,
		registry:  registry,
		events:    events,
		metrics:   m,
		interval:  interval,
		tracer:    otel.Tracer("watcher.poller"),
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Run loops until the context is cancelled or Stop is called.
func (m *Manager) Run(ctx context.Context) error {
	defer close(m.stoppedCh)

	slog.InfoContext(ctx, "poll manager started", "interval", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stopCh:
			slog.InfoContext(ctx, "poll manager stopping")
			return nil
		case <-ticker.C:
			m.RunCycle(ctx)
		}
	}
}

func (m *Manager) Stop() {
	close(m.stopCh)
	<-m.stoppedCh
}

// RunCycle executes one fan-out/fan-in pass. Exported so tests can drive
// cycles without the ticker.
func (m *Manager) RunCycle(ctx context.Context) {
	snapshot := m.registry.Snapshot()
	m.metrics.WatchedRepos.Set(float64(len(snapshot)))
	if len(snapshot) == 0 {
		return
	}

	ctx, span := m.tracer.Start(ctx, "poll.cycle",
		trace.WithAttributes(attribute.Int("watch.count", len(snapshot))))
	defer span.End()

	start := time.Now()

	results := make(chan Result, len(snapshot))
	var wg sync.WaitGroup
	for _, entry := range snapshot {
		wg.Add(1)
		go func(entry store.WatchEntry) {
			defer wg.Done()
			results <- m.pollSafe(ctx, entry)
		}(entry)
	}
	wg.Wait()
	close(results)

	var (
		batch    []domain.ClassifiedEvent
		outcomes = make(map[Outcome]int, 5)
	)
	for result := range results {
		outcomes[result.Outcome]++
		m.metrics.PollsTotal.WithLabelValues(string(result.Outcome)).Inc()

		switch result.Outcome {
		case OutcomeRemoved:
			m.registry.Remove(result.Key)
		case OutcomeUpdated:
			batch = append(batch, result.Events...)
		}
	}

	if len(batch) > 0 {
		m.events.Merge(batch)
		m.metrics.EventsRecorded.Add(float64(len(batch)))
	}
	m.metrics.EventLogSize.Set(float64(m.events.Len()))
	m.metrics.CycleDuration.Observe(time.Since(start).Seconds())

	slog.InfoContext(ctx, "poll cycle complete",
		"repos", len(snapshot),
		"new_events", len(batch),
		"updated", outcomes[OutcomeUpdated],
		"unchanged", outcomes[OutcomeUnchanged],
		"removed", outcomes[OutcomeRemoved],
		"rejected", outcomes[OutcomeRejected],
		"errors", outcomes[OutcomeError],
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// pollSafe keeps a panicking poll from taking the cycle down with it.
func (m *Manager) pollSafe(ctx context.Context, entry store.WatchEntry) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in poll",
				"panic", r,
				"repo", entry.Key)
			result = Result{Key: entry.Key, Outcome: OutcomeError}
		}
	}()
	return m.poller.Poll(ctx, entry)
}
