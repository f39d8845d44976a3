package router_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ludvigisaksen/PA-AI/internal/http/handler"
	"github.com/ludvigisaksen/PA-AI/internal/http/middleware"
	"github.com/ludvigisaksen/PA-AI/internal/http/router"
	"github.com/ludvigisaksen/PA-AI/internal/store"
)

type stubRunner struct{}

func (stubRunner) Run(context.Context) error { return nil }

var _ = Describe("Router", func() {
	var engine *gin.Engine

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		engine = gin.New()
		engine.Use(middleware.Recovery(), middleware.Logger("pa.test.http", nil))
	})

	Describe("state routes", func() {
		BeforeEach(func() {
			router.SetupStateRoutes(engine, handler.NewStateHandler(store.NewMemoryStores()))
		})

		It("serves the task table round trip", func() {
			Expect(serve(http.MethodPost, "/state/tasks", `{"tasks":[{"title":"Ship report"}]}`).Code).To(Equal(http.StatusOK))

			w := serve(http.MethodGet, "/state/tasks", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"title":"Ship report"`))
		})

		DescribeTable("answers unknown routes with a JSON 404",
			func(method, path string) {
				w := serve(method, path, "")

				Expect(w.Code).To(Equal(http.StatusNotFound))
				Expect(w.Body.String()).To(MatchJSON(`{"error":"Not found"}`))
			},
			Entry("unknown path", http.MethodGet, "/state/nope"),
			Entry("unsupported method", http.MethodDelete, "/state/tasks"),
			Entry("briefing is not mounted", http.MethodGet, "/cron/daily-briefing"),
		)

		It("answers health checks", func() {
			for _, path := range []string{"/", "/health"} {
				w := serve(http.MethodGet, path, "")
				Expect(w.Code).To(Equal(http.StatusOK))
				Expect(w.Body.String()).To(Equal("OK"))
			}
		})
	})

	Describe("ops routes", func() {
		BeforeEach(func() {
			router.SetupOpsRoutes(engine, handler.NewOpsHandler(stubRunner{}))
		})

		It("mounts the daily briefing trigger", func() {
			w := serve(http.MethodGet, "/cron/daily-briefing", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("Daily briefing sent"))
		})

		It("does not expose the state tables", func() {
			Expect(serve(http.MethodGet, "/state/tasks", "").Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("recovery", func() {
		It("turns a panic into a JSON 500", func() {
			engine.GET("/boom", func(*gin.Context) { panic("boom") })

			w := serve(http.MethodGet, "/boom", "")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Internal server error"}`))
		})
	})
})
