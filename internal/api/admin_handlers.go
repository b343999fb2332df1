package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/services"
)

// POST /api/admin/tracks
// { title, artist, genre, audio_url } where audio_url is the upload storage URL.
func (rt *Router) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := rt.svc.Tracks.AddTrack(r.Context(), actor(r), services.TrackInput{
		Title:    req.Title,
		Artist:   req.Artist,
		Genre:    req.Genre,
		AudioURL: req.AudioURL,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("track_id", t.ID).Str("genre", t.Genre).Msg("track added")
	writeJSON(w, http.StatusCreated, t)
}

// DELETE /api/admin/tracks/{id}
func (rt *Router) handleDeleteTrack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := rt.svc.Tracks.DeleteTrack(r.Context(), actor(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

// GET /api/admin/totals
func (rt *Router) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := rt.svc.Stats.Totals(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
