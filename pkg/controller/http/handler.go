package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-lookup/pkg/domain/model"
	"github.com/secmon-lab/grc-lookup/pkg/domain/types"
	"github.com/secmon-lab/grc-lookup/pkg/usecase"
	"github.com/secmon-lab/grc-lookup/pkg/utils/errutil"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrConfig), errors.Is(err, usecase.ErrRequirementNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrFetch), errors.Is(err, model.ErrParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       s.version,
		"jurisdictions": len(s.lookup.Jurisdictions()),
	})
}

func (s *Server) jurisdictionsHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Jurisdictions []*model.Jurisdiction `json:"jurisdictions"`
	}
	writeJSON(w, r, http.StatusOK, response{Jurisdictions: s.lookup.Jurisdictions()})
}

func (s *Server) requirementsHandler(w http.ResponseWriter, r *http.Request) {
	id := types.JurisdictionID(chi.URLParam(r, "id"))
	query := r.URL.Query()

	sel := model.Selection{
		Framework: query.Get("framework"),
		RiskLevel: query.Get("risk_level"),
		Domain:    query.Get("domain"),
	}

	refresh := false
	if v := query.Get("refresh"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid refresh parameter", goerr.V("refresh", v)), http.StatusBadRequest)
			return
		}
		refresh = b
	}

	result, err := s.lookup.Requirements(r.Context(), id, sel, refresh)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) guidanceHandler(w http.ResponseWriter, r *http.Request) {
	id := types.JurisdictionID(chi.URLParam(r, "id"))
	controlID := chi.URLParam(r, "controlId")

	g, err := s.lookup.Guidance(r.Context(), id, controlID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, g)
}

func (s *Server) cacheStatusHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.lookup.CacheStatus())
}

func (s *Server) clearCacheHandler(w http.ResponseWriter, r *http.Request) {
	id := types.JurisdictionID(chi.URLParam(r, "id"))
	if err := s.lookup.ClearCache(r.Context(), id); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, s.lookup.CacheStatus())
}

func (s *Server) prefetchHandler(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Jurisdictions model.PrefetchResult `json:"jurisdictions"`
	}
	writeJSON(w, r, http.StatusOK, response{Jurisdictions: s.lookup.Prefetch(r.Context())})
}

func (s *Server) aboutHandler(w http.ResponseWriter, r *http.Request) {
	page, err := s.lookup.About(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}

func (s *Server) membersHandler(w http.ResponseWriter, r *http.Request) {
	page, err := s.lookup.Members(r.Context())
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	writeJSON(w, r, http.StatusOK, page)
}
