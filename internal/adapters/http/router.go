package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/edumate/edumate-orchestrator/internal/config"
	"github.com/edumate/edumate-orchestrator/internal/core/ports"
	"github.com/edumate/edumate-orchestrator/internal/observability/metrics"
)

type Dependencies struct {
	Ingest      ports.ImageIngestor
	Process     ports.SubmissionProcessor
	Runs        ports.RunReader
	Queue       ports.ProcessQueue
	Provision   ports.AssignmentProvisioner
	Attachments ports.RubricAttachmentManager
	Gradebook   ports.GradebookService
	Sessions    ports.SessionService

	Metrics        *metrics.HTTPServerMetrics
	MetricsHandler http.Handler
}

type Router struct {
	cfg  config.Config
	deps Dependencies
}

func NewRouter(cfg config.Config, deps Dependencies) *Router {
	return &Router{cfg: cfg, deps: deps}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	r.Use(middleware.Recoverer)
	if rt.deps.Metrics != nil {
		r.Use(rt.deps.Metrics.Middleware)
	}

	r.Get("/healthz", rt.healthz)
	if rt.deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", rt.deps.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		if rt.cfg.InboundRateLimit > 0 {
			r.Use(rateLimitMiddleware(rt.cfg.InboundRateLimit, rt.cfg.InboundRateBurst))
		}
		if rt.cfg.MaxInFlightRequests > 0 {
			r.Use(func(next http.Handler) http.Handler {
				return backpressureMiddleware(next, rt.cfg.MaxInFlightRequests, 100*time.Millisecond)
			})
		}

		r.Post("/session/login", rt.login)

		r.Group(func(r chi.Router) {
			r.Use(rt.sessionMiddleware)

			r.Post("/session/logout", rt.logout)

			r.Put("/submissions/{submissionID}/images", rt.uploadSubmissionImages)
			r.Post("/submissions/{submissionID}/process", rt.processSubmission)
			r.Get("/submissions/{submissionID}/runs/latest", rt.latestRun)

			r.Route("/classrooms/{classroomID}", func(r chi.Router) {
				r.Post("/assignments", rt.provisionAssignment)
				r.Get("/rubrics", rt.listRubrics)
				r.Get("/students/{studentID}/submissions", rt.listSubmissions)
				r.Get("/students/{studentID}/progress", rt.progress)
				r.Get("/students/{studentID}/gradebook.xlsx", rt.exportGradebook)
			})

			r.Put("/rubrics/{rubricID}/documents", rt.uploadRubricDocuments)
			r.Put("/rubrics/{rubricID}/images", rt.uploadRubricImages)
			r.Delete("/rubrics/{rubricID}/images/{imageID}", rt.deleteRubricImage)
		})
	})

	return r
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("http_response_encode_failed", "error", err)
	}
}
