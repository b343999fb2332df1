package services

import (
	"context"
	"strings"

	"github.com/soaringjerry/Sanctuary/internal/models"
	"github.com/soaringjerry/Sanctuary/internal/player"
	"github.com/soaringjerry/Sanctuary/internal/recommend"
)

type PlayerService struct {
	catalog CatalogStore
	prefs   *PreferenceService
}

// QueueRequest selects a tab view and a step within it.
type QueueRequest struct {
	Tab     string
	Genre   string
	Search  string
	Current string
	// Direction is "next", "previous" or "" for the first track.
	Direction string
	// Playlist is the recommended tab's track ids in play order.
	Playlist []string
}

// QueueStep is the chosen track and the filtered queue it came from.
type QueueStep struct {
	Tab      player.Tab     `json:"tab"`
	Track    *models.Track  `json:"track"`
	Position int            `json:"position"`
	Total    int            `json:"total"`
	Queue    []models.Track `json:"queue"`
}

func NewPlayerService(catalog CatalogStore, prefs *PreferenceService) *PlayerService {
	return &PlayerService{catalog: catalog, prefs: prefs}
}

func (s *PlayerService) Step(ctx context.Context, userID string, req QueueRequest) (*QueueStep, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLoginRequired
	}
	tab, ok := player.ParseTab(req.Tab)
	if !ok {
		return nil, NewInvalidError("unknown tab")
	}
	genre := strings.TrimSpace(req.Genre)
	if strings.EqualFold(genre, player.AllGenres) {
		genre = ""
	}
	if genre != "" {
		g, ok := recommend.ParseGenre(genre)
		if !ok {
			return nil, NewInvalidError("unknown genre")
		}
		genre = string(g)
	}

	var tracks []models.Track
	var err error
	switch tab {
	case player.TabLiked:
		tracks, err = s.prefs.LikedTracks(ctx, userID)
	case player.TabRecommended:
		tracks, err = s.playlist(ctx, req.Playlist)
	default:
		tracks, err = s.catalog.ListTracks(ctx)
	}
	if err != nil {
		return nil, err
	}

	q := player.NewQueue(tab, player.Filter(tracks, genre, req.Search))
	step := &QueueStep{Tab: tab, Total: q.Len(), Queue: q.Tracks()}
	var t models.Track
	switch strings.ToLower(strings.TrimSpace(req.Direction)) {
	case "next":
		t, ok = q.Next(req.Current)
	case "previous", "prev":
		t, ok = q.Previous(req.Current)
	case "":
		t, ok = q.First()
	default:
		return nil, NewInvalidError("direction must be next or previous")
	}
	if ok {
		step.Track = &t
		for i, qt := range step.Queue {
			if qt.ID == t.ID {
				step.Position = i
				break
			}
		}
	}
	return step, nil
}

// playlist resolves ids against the catalog, keeping their order and
// dropping unknown or repeated ids.
func (s *PlayerService) playlist(ctx context.Context, ids []string) ([]models.Track, error) {
	catalog, err := s.catalog.ListTracks(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Track, len(catalog))
	for _, t := range catalog {
		byID[t.ID] = t
	}
	out := make([]models.Track, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		t, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, t)
	}
	return out, nil
}
