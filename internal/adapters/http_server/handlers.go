package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"feedback_gate/internal/app"
)

type Handlers struct{ S *app.Service }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/sessions", h.createSession)
	s.mux.Get("/v1/sessions/{id}", h.getSession)
	s.mux.Put("/v1/sessions/{id}/identity", h.putIdentity)
	s.mux.Put("/v1/sessions/{id}/rating", h.putRating)
	s.mux.Put("/v1/sessions/{id}/review", h.putReview)
	s.mux.Post("/v1/sessions/{id}/touch", h.touch)
	s.mux.Post("/v1/sessions/{id}/submit", h.submit)
	s.mux.Post("/v1/sessions/{id}/complaint", h.complaint)
	s.mux.Post("/v1/sessions/{id}/dismiss", h.dismiss)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeView(w http.ResponseWriter, v app.View) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write session view failed")
	}
}

// writeServiceErr maps the router's sentinel errors onto problem responses.
func writeServiceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
	case errors.Is(err, app.ErrBadStars):
		writeProblem(w, http.StatusBadRequest, "Invalid rating", err.Error())
	case errors.Is(err, app.ErrNotCapturing), errors.Is(err, app.ErrReviewTooShort):
		writeProblem(w, http.StatusConflict, "Not allowed", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "Internal", err.Error())
	}
}

// decode tolerates an empty body; fields simply keep their zero values.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "body must be JSON")
		return false
	}
	return true
}

func (h *Handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeviceKey string `json:"deviceKey"`
	}
	if !decode(w, r, &body) {
		return
	}
	writeView(w, h.S.CreateSession(r.Context(), body.DeviceKey))
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.S.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeView(w, v)
}

func (h *Handlers) putIdentity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	}
	if !decode(w, r, &body) {
		return
	}
	v, err := h.S.SetIdentity(r.Context(), chi.URLParam(r, "id"), body.Name, body.Phone)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeView(w, v)
}

func (h *Handlers) putRating(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Stars int `json:"stars"`
	}
	if !decode(w, r, &body) {
		return
	}
	v, err := h.S.SetRating(chi.URLParam(r, "id"), body.Stars)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeView(w, v)
}

func (h *Handlers) putReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if !decode(w, r, &body) {
		return
	}
	v, err := h.S.SetReview(chi.URLParam(r, "id"), body.Text)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeView(w, v)
}

func (h *Handlers) touch(w http.ResponseWriter, r *http.Request) {
	v, err := h.S.MarkTouched(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeView(w, v)
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	// the honeypot travels in the body under a name a human never fills in
	var body struct {
		Website string `json:"website"`
	}
	if !decode(w, r, &body) {
		return
	}
	v, err := h.S.Submit(r.Context(), chi.URLParam(r, "id"), body.Website, r.UserAgent(), r.Referer())
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeView(w, v)
}

func (h *Handlers) complaint(w http.ResponseWriter, r *http.Request) {
	v, err := h.S.SendComplaint(r.Context(), chi.URLParam(r, "id"), r.UserAgent(), r.Referer())
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeView(w, v)
}

func (h *Handlers) dismiss(w http.ResponseWriter, r *http.Request) {
	v, err := h.S.Dismiss(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeView(w, v)
}
