package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/metrics"
	"github.com/soaringjerry/Sanctuary/internal/models"
	"github.com/soaringjerry/Sanctuary/internal/recommend"
	"github.com/soaringjerry/Sanctuary/internal/storage"
)

type TrackStore interface {
	AddTrack(ctx context.Context, t *models.Track) error
	GetTrack(ctx context.Context, id string) (*models.Track, error)
	// ListTracks returns the catalog newest first.
	ListTracks(ctx context.Context) ([]models.Track, error)
	// DeleteTrack also drops likes referencing the track.
	DeleteTrack(ctx context.Context, id string) (bool, error)
	AddAudit(ctx context.Context, entry models.AuditEntry)
}

type TrackService struct {
	store TrackStore
	files storage.Deleter
	now   func() time.Time
	idGen func() string
}

type TrackInput struct {
	Title    string
	Artist   string
	Genre    string
	AudioURL string
}

func NewTrackService(store TrackStore, files storage.Deleter) *TrackService {
	if files == nil {
		files = storage.Noop{}
	}
	return &TrackService{
		store: store,
		files: files,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: uuid.NewString,
	}
}

func (s *TrackService) AddTrack(ctx context.Context, actor string, in TrackInput) (*models.Track, error) {
	title := strings.TrimSpace(in.Title)
	artist := strings.TrimSpace(in.Artist)
	if title == "" || artist == "" {
		return nil, NewInvalidError("title/artist required")
	}
	genre, ok := recommend.ParseGenre(in.Genre)
	if !ok {
		return nil, NewInvalidError("unknown genre")
	}
	audioURL := strings.TrimSpace(in.AudioURL)
	if !isHTTPURL(audioURL) {
		return nil, NewInvalidError("audio_url must be an absolute http(s) URL")
	}
	t := &models.Track{
		ID:        s.idGen(),
		Title:     title,
		Artist:    artist,
		Genre:     string(genre),
		AudioURL:  audioURL,
		CreatedAt: s.now(),
	}
	if err := s.store.AddTrack(ctx, t); err != nil {
		return nil, err
	}
	s.store.AddAudit(ctx, models.AuditEntry{Time: t.CreatedAt, Actor: actor, Action: "track.add", Target: t.ID, Note: t.Title})
	return t, nil
}

// DeleteTrack removes the track and its uploaded file. A failed file deletion
// is logged and counted but does not block removing the catalog entry.
func (s *TrackService) DeleteTrack(ctx context.Context, actor, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return NewInvalidError("track id required")
	}
	t, err := s.store.GetTrack(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTrackNotFound
	}
	if key := storage.KeyFromURL(t.AudioURL); key != "" {
		if err := s.files.DeleteFiles(ctx, key); err != nil {
			metrics.RecordStorageDeleteFailure()
			logging.Ctx(ctx).Warn().Err(err).Str("track_id", id).Str("file_key", key).Msg("delete uploaded file failed")
		}
	}
	ok, err := s.store.DeleteTrack(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTrackNotFound
	}
	s.store.AddAudit(ctx, models.AuditEntry{Time: s.now(), Actor: actor, Action: "track.delete", Target: id, Note: t.Title})
	return nil
}

func (s *TrackService) ListTracks(ctx context.Context) ([]models.Track, error) {
	tracks, err := s.store.ListTracks(ctx)
	if err != nil {
		return nil, err
	}
	if tracks == nil {
		tracks = []models.Track{}
	}
	return tracks, nil
}

func (s *TrackService) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	t, err := s.store.GetTrack(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTrackNotFound
	}
	return t, nil
}

// SeedIfEmpty imports tracks when the catalog has none. Invalid entries are
// skipped. It returns the number imported.
func (s *TrackService) SeedIfEmpty(ctx context.Context, seed []TrackInput) (int, error) {
	existing, err := s.store.ListTracks(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	n := 0
	for _, in := range seed {
		if _, err := s.AddTrack(ctx, "system", in); err != nil {
			if _, ok := AsServiceError(err); ok {
				logging.Warn().Err(err).Str("title", in.Title).Msg("skipping seed track")
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
