package store_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"repowatch.app/watcher/internal/store"
)

var _ = Describe("WatchRegistry", func() {
	var registry *store.WatchRegistry

	BeforeEach(func() {
		registry = store.NewWatchRegistry()
	})

	Describe("Add", func() {
		It("registers a new key", func() {
			Expect(registry.Add("golang/go")).To(BeTrue())
			Expect(registry.Len()).To(Equal(1))
		})

		It("is idempotent and keeps existing polling state", func() {
			Expect(registry.Add("golang/go")).To(BeTrue())
			checkedAt := time.Now()
			registry.UpdateAfterPoll("golang/go", `W/"abc"`, checkedAt)

			Expect(registry.Add("golang/go")).To(BeFalse())

			entry, ok := registry.Get("golang/go")
			Expect(ok).To(BeTrue())
			Expect(entry.ETag).To(Equal(`W/"abc"`))
			Expect(entry.LastCheckedAt).To(BeTemporally("==", checkedAt))
		})
	})

	Describe("Remove", func() {
		It("drops the key", func() {
			registry.Add("golang/go")
			registry.Remove("golang/go")
			Expect(registry.Len()).To(BeZero())
			_, ok := registry.Get("golang/go")
			Expect(ok).To(BeFalse())
		})

		It("tolerates unknown keys", func() {
			registry.Remove("nobody/nothing")
			Expect(registry.Len()).To(BeZero())
		})
	})

	Describe("Snapshot", func() {
		It("returns entries sorted by key", func() {
			registry.Add("torvalds/linux")
			registry.Add("golang/go")
			registry.Add("gin-gonic/gin")

			snapshot := registry.Snapshot()
			keys := make([]string, len(snapshot))
			for i, e := range snapshot {
				keys[i] = e.Key.String()
			}
			Expect(keys).To(Equal([]string{"gin-gonic/gin", "golang/go", "torvalds/linux"}))
		})

		It("is a copy unaffected by later mutation", func() {
			registry.Add("golang/go")
			snapshot := registry.Snapshot()
			registry.Remove("golang/go")
			Expect(snapshot).To(HaveLen(1))
			Expect(snapshot[0].Key.String()).To(Equal("golang/go"))
		})
	})

	Describe("UpdateAfterPoll", func() {
		BeforeEach(func() {
			registry.Add("golang/go")
		})

		It("stores a new validator and timestamp", func() {
			checkedAt := time.Now()
			registry.UpdateAfterPoll("golang/go", `W/"v1"`, checkedAt)
			entry, _ := registry.Get("golang/go")
			Expect(entry.ETag).To(Equal(`W/"v1"`))
			Expect(entry.LastCheckedAt).To(BeTemporally("==", checkedAt))
		})

		It("keeps the stored validator when the new one is empty", func() {
			registry.UpdateAfterPoll("golang/go", `W/"v1"`, time.Now())
			later := time.Now().Add(time.Minute)
			registry.UpdateAfterPoll("golang/go", "", later)

			entry, _ := registry.Get("golang/go")
			Expect(entry.ETag).To(Equal(`W/"v1"`))
			Expect(entry.LastCheckedAt).To(BeTemporally("==", later))
		})

		It("does not resurrect a removed entry", func() {
			registry.Remove("golang/go")
			registry.UpdateAfterPoll("golang/go", `W/"v1"`, time.Now())
			Expect(registry.Len()).To(BeZero())
		})
	})
})
