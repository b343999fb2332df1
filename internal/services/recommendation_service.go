package services

import (
	"context"
	"strings"

	"github.com/soaringjerry/Sanctuary/internal/dass"
	"github.com/soaringjerry/Sanctuary/internal/metrics"
	"github.com/soaringjerry/Sanctuary/internal/models"
	"github.com/soaringjerry/Sanctuary/internal/recommend"
)

// MaxPlaylistSize bounds the size a caller may request.
const MaxPlaylistSize = 50

type CatalogStore interface {
	ListTracks(ctx context.Context) ([]models.Track, error)
}

type RecommendationService struct {
	mood        *MoodService
	catalog     CatalogStore
	strategy    recommend.Strategy
	defaultSize int
	shuffler    recommend.Shuffler
}

// Recommendation is a generated playlist. It is never persisted.
type Recommendation struct {
	Strategy recommend.Strategy `json:"strategy"`
	// Assessed is false when no current submission exists and all subscales
	// were read as Normal.
	Assessed bool              `json:"assessed"`
	Result   dass.Result       `json:"result"`
	Genres   []recommend.Genre `json:"genres"`
	Tracks   []models.Track    `json:"tracks"`
}

func NewRecommendationService(mood *MoodService, catalog CatalogStore, strategy recommend.Strategy, defaultSize int, shuffler recommend.Shuffler) *RecommendationService {
	if strategy == "" {
		strategy = recommend.PerSubscale
	}
	if defaultSize <= 0 {
		defaultSize = recommend.DefaultPlaylistSize
	}
	if shuffler == nil {
		shuffler = recommend.NewRandom(0)
	}
	return &RecommendationService{mood: mood, catalog: catalog, strategy: strategy, defaultSize: defaultSize, shuffler: shuffler}
}

// Recommend builds a playlist for the user's current scores. size <= 0 uses the
// configured default.
func (s *RecommendationService) Recommend(ctx context.Context, userID string, size int) (*Recommendation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLoginRequired
	}
	if size <= 0 {
		size = s.defaultSize
	}
	if size > MaxPlaylistSize {
		return nil, NewInvalidError("playlist size too large")
	}
	latest, err := s.mood.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec := &Recommendation{Strategy: s.strategy}
	if latest != nil {
		rec.Assessed = true
		rec.Result = latest.Result
	} else {
		rec.Result = dass.Assess(dass.Scores{})
	}
	rec.Genres = recommend.ForResult(s.strategy, rec.Result)

	catalog, err := s.catalog.ListTracks(ctx)
	if err != nil {
		return nil, err
	}
	rec.Tracks = recommend.BuildPlaylist(rec.Genres, catalog, size, s.shuffler)
	if rec.Tracks == nil {
		rec.Tracks = []models.Track{}
	}
	metrics.RecordPlaylist(string(s.strategy), len(rec.Tracks))
	return rec, nil
}
