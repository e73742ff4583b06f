package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"repowatch.app/watcher/internal/domain"
	"repowatch.app/watcher/internal/http/handler"
	"repowatch.app/watcher/internal/service"
)

type mockWatchService struct {
	subscribeFn func(ctx context.Context, repoURL string) (service.SubscribeResult, error)
	inspectFn   func(ctx context.Context) service.InspectResult
	clearCalled bool
}

func (m *mockWatchService) Subscribe(ctx context.Context, repoURL string) (service.SubscribeResult, error) {
	if m.subscribeFn != nil {
		return m.subscribeFn(ctx, repoURL)
	}
	return service.SubscribeResult{}, nil
}

func (m *mockWatchService) Inspect(ctx context.Context) service.InspectResult {
	if m.inspectFn != nil {
		return m.inspectFn(ctx)
	}
	return service.InspectResult{}
}

func (m *mockWatchService) Clear(ctx context.Context) {
	m.clearCalled = true
}

var _ = Describe("WatchHandler", func() {
	var (
		router *gin.Engine
		svc    *mockWatchService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockWatchService{}
		h := handler.NewWatchHandler(svc)
		router.POST("/subscribe", h.Subscribe)
		router.GET("/inspect", h.Inspect)
		router.DELETE("/clear", h.Clear)
		router.GET("/", handler.Home)
	})

	Describe("POST /subscribe", func() {
		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			return w
		}

		It("returns subscribed with the canonical key", func() {
			svc.subscribeFn = func(_ context.Context, repoURL string) (service.SubscribeResult, error) {
				Expect(repoURL).To(Equal("https://github.com/golang/go"))
				return service.SubscribeResult{Key: "golang/go"}, nil
			}

			w := post(`{"repoUrl":"https://github.com/golang/go"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]string
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("subscribed"))
			Expect(resp["repo"]).To(Equal("golang/go"))
		})

		It("returns already_subscribed on repeat subscription", func() {
			svc.subscribeFn = func(_ context.Context, _ string) (service.SubscribeResult, error) {
				return service.SubscribeResult{Key: "golang/go", AlreadySubscribed: true}, nil
			}

			w := post(`{"repoUrl":"https://github.com/golang/go"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("already_subscribed"))
		})

		It("returns 400 with the format hint for an unparsable locator", func() {
			svc.subscribeFn = func(_ context.Context, _ string) (service.SubscribeResult, error) {
				return service.SubscribeResult{}, domain.ErrInvalidRepoURL
			}

			w := post(`{"repoUrl":"https://example.com/x"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Invalid GitHub repo URL. Format: https://github.com/user/repo"))
		})

		It("returns 400 for a malformed body", func() {
			w := post(`{`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 when repoUrl is missing", func() {
			w := post(`{}`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /inspect", func() {
		It("returns the count and the recent events", func() {
			svc.inspectFn = func(_ context.Context) service.InspectResult {
				return service.InspectResult{
					Count: 42,
					Events: []domain.ClassifiedEvent{{
						ID:            7,
						Repo:          "golang/go",
						SourceEventID: "111",
						Type:          domain.EventTypePush,
						Actor:         "alice",
						Detail: domain.CommitPushDetail{
							Action: "commits-pushed", Branch: "main",
							CommitCount: 1, Messages: []string{"fix"},
						},
						RecordedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
					}},
				}
			}

			req := httptest.NewRequest(http.MethodGet, "/inspect", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Count int `json:"count"`
				Data  []struct {
					Repo    string         `json:"repo"`
					Actor   string         `json:"actor"`
					Details map[string]any `json:"details"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Count).To(Equal(42))
			Expect(resp.Data).To(HaveLen(1))
			Expect(resp.Data[0].Repo).To(Equal("golang/go"))
			Expect(resp.Data[0].Details["action"]).To(Equal("commits-pushed"))
			Expect(resp.Data[0].Details["branch"]).To(Equal("main"))
		})

		It("returns an empty array, not null, for an empty log", func() {
			req := httptest.NewRequest(http.MethodGet, "/inspect", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(w.Body.String())).To(Equal(`{"count":0,"data":[]}`))
		})
	})

	Describe("DELETE /clear", func() {
		It("clears state and confirms", func() {
			req := httptest.NewRequest(http.MethodDelete, "/clear", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(svc.clearCalled).To(BeTrue())
			Expect(w.Body.String()).To(ContainSubstring("cleared"))
		})
	})

	Describe("GET /", func() {
		It("serves the viewer page", func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/html"))
			Expect(w.Body.String()).To(ContainSubstring("repowatch"))
			Expect(w.Body.String()).To(ContainSubstring("/inspect"))
		})
	})
})
