package services

import (
	"context"
	"strings"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/models"
	"github.com/soaringjerry/Sanctuary/internal/player"
)

const (
	DefaultTheme   = "light"
	DefaultDensity = "comfortable"
)

// Themes and densities offered by the player settings.
var (
	Themes    = []string{"light", "dark", "nature", "ocean", "nature-dark", "ocean-dark"}
	Densities = []string{"compact", "comfortable"}
)

type PreferenceStore interface {
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpsertPreferences(ctx context.Context, p *models.Preferences) error
	GetTrack(ctx context.Context, id string) (*models.Track, error)
	// ToggleLike flips the like and returns the new state.
	ToggleLike(ctx context.Context, userID, trackID string) (bool, error)
	ListLikedTrackIDs(ctx context.Context, userID string) ([]string, error)
}

type PreferenceService struct {
	store PreferenceStore
	now   func() time.Time
}

func NewPreferenceService(store PreferenceStore) *PreferenceService {
	return &PreferenceService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.Preferences, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLoginRequired
	}
	p, err := s.store.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &models.Preferences{UserID: userID, Theme: DefaultTheme, ContentDensity: DefaultDensity}, nil
	}
	return p, nil
}

// Update changes the given settings. Empty values keep the current setting.
func (s *PreferenceService) Update(ctx context.Context, userID, theme, density string) (*models.Preferences, error) {
	cur, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	theme = strings.ToLower(strings.TrimSpace(theme))
	density = strings.ToLower(strings.TrimSpace(density))
	if theme != "" {
		if !contains(Themes, theme) {
			return nil, NewInvalidError("unknown theme")
		}
		cur.Theme = theme
	}
	if density != "" {
		if !contains(Densities, density) {
			return nil, NewInvalidError("unknown content density")
		}
		cur.ContentDensity = density
	}
	cur.UpdatedAt = s.now()
	if err := s.store.UpsertPreferences(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}

func (s *PreferenceService) ToggleLike(ctx context.Context, userID, trackID string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrLoginRequired
	}
	t, err := s.store.GetTrack(ctx, strings.TrimSpace(trackID))
	if err != nil {
		return false, err
	}
	if t == nil {
		return false, ErrTrackNotFound
	}
	return s.store.ToggleLike(ctx, userID, t.ID)
}

// LikedTracks returns the user's liked tracks in title order. Likes of
// deleted tracks are skipped.
func (s *PreferenceService) LikedTracks(ctx context.Context, userID string) ([]models.Track, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLoginRequired
	}
	ids, err := s.store.ListLikedTrackIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Track, 0, len(ids))
	for _, id := range ids {
		t, err := s.store.GetTrack(ctx, id)
		if err != nil {
			return nil, err
		}
		if t != nil {
			out = append(out, *t)
		}
	}
	return player.SortByTitle(out), nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
