// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"trustwatch/internal/app"
	"trustwatch/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/brands/{domain}", h.getBrand)
	s.mux.Get("/v1/brands/{domain}/weeks/{week}", h.getWeeklyReport)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func (h *Handlers) getBrand(w http.ResponseWriter, r *http.Request) {
	dom := chi.URLParam(r, "domain")
	resp, err := h.Q.GetBrand(r.Context(), dom)
	if err != nil {
		if errors.Is(err, domain.ErrBrandNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "brand not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "brand lookup failed")
		return
	}

	etag, body := calcETagAndBody(resp)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getBrand body")
	}
}

func (h *Handlers) getWeeklyReport(w http.ResponseWriter, r *http.Request) {
	dom := chi.URLParam(r, "domain")
	week, err := domain.ParseWeek(chi.URLParam(r, "week"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid week", "week must look like 2026-W04")
		return
	}

	out, err := h.Q.WeeklyReport(r.Context(), dom, week)
	switch {
	case errors.Is(err, domain.ErrBrandNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "brand not found")
		return
	case errors.Is(err, domain.ErrEmptyWeek):
		writeProblem(w, http.StatusNotFound, "Not Found", "no reviews stored for that week")
		return
	case err != nil:
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "report build failed")
		return
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write weekly report body")
	}
}
