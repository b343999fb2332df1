package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soaringjerry/Sanctuary/internal/services"
)

// GET /api/tracks, GET /api/admin/tracks
func (rt *Router) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := rt.svc.Tracks.ListTracks(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

// GET /api/player/queue?tab=all|liked|recommended&genre=&q=&current=&dir=next|previous&playlist=id,id
func (rt *Router) handlePlayerQueue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := services.QueueRequest{
		Tab:       q.Get("tab"),
		Genre:     q.Get("genre"),
		Search:    q.Get("q"),
		Current:   q.Get("current"),
		Direction: q.Get("dir"),
	}
	if raw := q.Get("playlist"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				req.Playlist = append(req.Playlist, id)
			}
		}
	}
	step, err := rt.svc.Player.Step(r.Context(), currentUser(r), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, step)
}

// GET /api/recommendations?cap=9
func (rt *Router) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	size := 0
	if raw := r.URL.Query().Get("cap"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeServiceError(w, r, services.NewInvalidError("cap must be a positive integer"))
			return
		}
		size = n
	}
	rec, err := rt.svc.Recommendations.Recommend(r.Context(), currentUser(r), size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// GET /api/me/preferences
func (rt *Router) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := rt.svc.Preferences.Get(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PUT /api/me/preferences
func (rt *Router) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := rt.svc.Preferences.Update(r.Context(), currentUser(r), req.Theme, req.ContentDensity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /api/me/likes
func (rt *Router) handleLikedTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := rt.svc.Preferences.LikedTracks(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

// POST /api/me/likes/{trackID}
func (rt *Router) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "trackID")
	liked, err := rt.svc.Preferences.ToggleLike(r.Context(), currentUser(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"track_id": id, "liked": liked})
}
