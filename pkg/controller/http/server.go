package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/utils/logging"
)

// LookupUseCase is the lookup surface served over HTTP
type LookupUseCase interface {
	Jurisdictions() []*model.Jurisdiction
	Requirements(ctx context.Context, id types.JurisdictionID, sel model.Selection, forceRefresh bool) (*model.LookupResult, error)
	Guidance(ctx context.Context, id types.JurisdictionID, controlID string) (*model.Guidance, error)
	About(ctx context.Context) (*model.Content, error)
	Members(ctx context.Context) (*model.Content, error)
	CacheStatus() *model.CacheStatus
	ClearCache(ctx context.Context, id types.JurisdictionID) error
	Prefetch(ctx context.Context) model.PrefetchResult
}

type Server struct {
	router  *chi.Mux
	lookup  LookupUseCase
	version string
}

type Options func(*Server)

func WithVersion(version string) Options {
	return func(s *Server) {
		s.version = version
	}
}

func New(lookup LookupUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		lookup: lookup,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/jurisdictions", s.jurisdictionsHandler)
		r.Get("/jurisdictions/{id}/requirements", s.requirementsHandler)
		r.Get("/jurisdictions/{id}/requirements/{controlId}/guidance", s.guidanceHandler)

		r.Get("/cache", s.cacheStatusHandler)
		r.Delete("/cache", s.clearCacheHandler)
		r.Delete("/cache/{id}", s.clearCacheHandler)
		r.Post("/prefetch", s.prefetchHandler)

		r.Get("/content/about", s.aboutHandler)
		r.Get("/content/members", s.membersHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.From(r.Context()).With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(logging.With(r.Context(), logger))

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
