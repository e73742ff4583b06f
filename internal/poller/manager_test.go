package poller_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"repowatch.app/watcher/internal/domain"
	"repowatch.app/watcher/internal/github"
	"repowatch.app/watcher/internal/metrics"
	"repowatch.app/watcher/internal/poller"
	"repowatch.app/watcher/internal/store"
)

var _ = Describe("Manager", func() {
	var (
		ctx      context.Context
		registry *store.WatchRegistry
		ledger   *store.DedupLedger
		events   *store.EventLog
		m        *metrics.Metrics
	)

	BeforeEach(func() {
		ctx = context.Background()
		registry = store.NewWatchRegistry()
		ledger = store.NewDedupLedger()
		events = store.NewEventLog(200)
		m = metrics.New()
	})

	newManager := func(lister poller.EventLister, interval time.Duration) *poller.Manager {
		p := poller.New(lister, registry, ledger)
		return poller.NewManager(p, registry, events, m, interval)
	}

	Describe("RunCycle", func() {
		It("skips the network entirely when nothing is watched", func() {
			lister := newMockLister(nil)
			newManager(lister, time.Minute).RunCycle(ctx)
			Expect(lister.callCount()).To(BeZero())
		})

		It("polls every watched repo once", func() {
			registry.Add("golang/go")
			registry.Add("torvalds/linux")
			lister := newMockLister(nil)

			newManager(lister, time.Minute).RunCycle(ctx)

			Expect(lister.callCount()).To(Equal(2))
		})

		It("merges batches from all repos into the log", func() {
			registry.Add("golang/go")
			registry.Add("torvalds/linux")
			lister := newMockLister(func(repo domain.WatchKey, _ string) (github.EventsPage, error) {
				return github.EventsPage{Events: []github.RawEvent{
					rawEvent(string(repo)+"-1", "WatchEvent", `{"action":"started"}`),
				}}, nil
			})

			newManager(lister, time.Minute).RunCycle(ctx)

			Expect(events.Len()).To(Equal(2))
		})

		It("deregisters repos the upstream reports gone", func() {
			registry.Add("golang/go")
			registry.Add("gone/gone")
			lister := newMockLister(func(repo domain.WatchKey, _ string) (github.EventsPage, error) {
				if repo == "gone/gone" {
					return github.EventsPage{}, github.ErrNotFound
				}
				return github.EventsPage{}, nil
			})

			mgr := newManager(lister, time.Minute)
			mgr.RunCycle(ctx)

			Expect(registry.Len()).To(Equal(1))
			_, ok := registry.Get("gone/gone")
			Expect(ok).To(BeFalse())

			// next cycle only fetches the survivor
			before := lister.callCount()
			mgr.RunCycle(ctx)
			Expect(lister.callCount()).To(Equal(before + 1))
		})

		It("isolates one repo's failure from the others", func() {
			registry.Add("golang/go")
			registry.Add("flaky/repo")
			lister := newMockLister(func(repo domain.WatchKey, _ string) (github.EventsPage, error) {
				if repo == "flaky/repo" {
					panic("decoder exploded")
				}
				return github.EventsPage{Events: []github.RawEvent{
					rawEvent("ok-1", "WatchEvent", `{"action":"started"}`),
				}}, nil
			})

			Expect(func() {
				newManager(lister, time.Minute).RunCycle(ctx)
			}).NotTo(Panic())

			Expect(events.Len()).To(Equal(1))
			Expect(registry.Len()).To(Equal(2))
		})

		It("counts each poll outcome once", func() {
			registry.Add("fresh/repo")
			registry.Add("quiet/repo")
			registry.Add("gone/repo")
			registry.Add("limited/repo")
			registry.Add("broken/repo")
			lister := newMockLister(func(repo domain.WatchKey, etag string) (github.EventsPage, error) {
				switch repo {
				case "fresh/repo":
					return github.EventsPage{Events: []github.RawEvent{
						rawEvent("fresh-1", "WatchEvent", `{"action":"started"}`),
					}}, nil
				case "quiet/repo":
					return github.EventsPage{ETag: etag, NotModified: true}, nil
				case "gone/repo":
					return github.EventsPage{}, github.ErrNotFound
				case "limited/repo":
					return github.EventsPage{}, github.ErrRateLimited
				default:
					return github.EventsPage{}, errors.New("dial tcp: connection refused")
				}
			})

			newManager(lister, time.Minute).RunCycle(ctx)

			for outcome, want := range map[poller.Outcome]float64{
				poller.OutcomeUpdated:   1,
				poller.OutcomeUnchanged: 1,
				poller.OutcomeRemoved:   1,
				poller.OutcomeRejected:  1,
				poller.OutcomeError:     1,
			} {
				counter := m.PollsTotal.WithLabelValues(string(outcome))
				Expect(testutil.ToFloat64(counter)).To(Equal(want), string(outcome))
			}
			Expect(testutil.ToFloat64(m.EventsRecorded)).To(Equal(1.0))
			Expect(testutil.ToFloat64(m.WatchedRepos)).To(Equal(5.0))
			Expect(testutil.ToFloat64(m.EventLogSize)).To(Equal(1.0))
		})

		It("does not grow the log past capacity", func() {
			events = store.NewEventLog(3)
			registry.Add("golang/go")
			cycle := 0
			lister := newMockLister(func(_ domain.WatchKey, _ string) (github.EventsPage, error) {
				cycle++
				return github.EventsPage{Events: []github.RawEvent{
					rawEvent(time.Now().Format("150405.000000000")+"-a", "WatchEvent", `{"action":"started"}`),
					rawEvent(time.Now().Format("150405.000000000")+"-b", "WatchEvent", `{"action":"started"}`),
				}}, nil
			})

			mgr := newManager(lister, time.Minute)
			for i := 0; i < 4; i++ {
				mgr.RunCycle(ctx)
			}

			Expect(cycle).To(Equal(4))
			Expect(events.Len()).To(Equal(3))
		})
	})

	Describe("Run", func() {
		It("cycles on the ticker until stopped", func() {
			registry.Add("golang/go")
			lister := newMockLister(nil)
			mgr := newManager(lister, 20*time.Millisecond)

			go func() {
				defer GinkgoRecover()
				_ = mgr.Run(ctx)
			}()

			Eventually(lister.callCount).Should(BeNumerically(">=", 2))
			mgr.Stop()
			settled := lister.callCount()
			Consistently(lister.callCount, 100*time.Millisecond).Should(Equal(settled))
		})

		It("returns the context error on cancellation", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			mgr := newManager(newMockLister(nil), time.Minute)

			errCh := make(chan error, 1)
			go func() {
				errCh <- mgr.Run(cancelCtx)
			}()
			cancel()

			Eventually(errCh).Should(Receive(MatchError(context.Canceled)))
		})
	})
})
