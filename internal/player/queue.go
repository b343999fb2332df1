// Package player holds the track-navigation rules of the music player: title
// ordering, genre and search filtering, and wrap-around next/previous within the
// active tab.
package player

import (
	"sort"
	"strings"

	"github.com/soaringjerry/Sanctuary/internal/models"
)

// Tab is a player view with its own play order.
type Tab string

const (
	TabAll         Tab = "all"
	TabLiked       Tab = "liked"
	TabRecommended Tab = "recommended"
)

// ParseTab defaults to TabAll.
func ParseTab(s string) (Tab, bool) {
	switch Tab(strings.ToLower(strings.TrimSpace(s))) {
	case "", TabAll:
		return TabAll, true
	case TabLiked:
		return TabLiked, true
	case TabRecommended:
		return TabRecommended, true
	}
	return "", false
}

// AllGenres is the genre filter value that disables genre filtering.
const AllGenres = "All"

// SortByTitle returns a copy ordered by title, case-insensitively, with ties by id.
func SortByTitle(tracks []models.Track) []models.Track {
	out := append([]models.Track(nil), tracks...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
		if a != b {
			return a < b
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Filter keeps tracks of the given genre whose title or artist contains search.
// An empty genre or AllGenres matches every genre.
func Filter(tracks []models.Track, genre, search string) []models.Track {
	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if genre != "" && genre != AllGenres && t.Genre != genre {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Artist), search) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Queue is an immutable play order.
type Queue struct {
	tracks []models.Track
}

// NewQueue builds the play order for a tab. The recommended tab keeps playlist
// order; the others play by title.
func NewQueue(tab Tab, tracks []models.Track) *Queue {
	if tab == TabRecommended {
		return &Queue{tracks: append([]models.Track(nil), tracks...)}
	}
	return &Queue{tracks: SortByTitle(tracks)}
}

// Tracks returns the queue in play order.
func (q *Queue) Tracks() []models.Track {
	return append([]models.Track(nil), q.tracks...)
}

// Len is the number of queued tracks.
func (q *Queue) Len() int { return len(q.tracks) }

func (q *Queue) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, t := range q.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Next returns the track after currentID, wrapping to the start. With no current
// track, or one outside the queue, it returns the first track.
func (q *Queue) Next(currentID string) (models.Track, bool) {
	if len(q.tracks) == 0 {
		return models.Track{}, false
	}
	i := q.indexOf(currentID)
	return q.tracks[(i+1)%len(q.tracks)], true
}

// Previous returns the track before currentID, wrapping to the end. With no
// current track, or one outside the queue, it returns the last track.
func (q *Queue) Previous(currentID string) (models.Track, bool) {
	n := len(q.tracks)
	if n == 0 {
		return models.Track{}, false
	}
	i := q.indexOf(currentID)
	if i < 0 {
		return q.tracks[n-1], true
	}
	return q.tracks[(i-1+n)%n], true
}

// First is what a bare play button starts with.
func (q *Queue) First() (models.Track, bool) {
	if len(q.tracks) == 0 {
		return models.Track{}, false
	}
	return q.tracks[0], true
}
