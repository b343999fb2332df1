package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/models"
)

type trackStubStore struct {
	tracks map[string]*models.Track
	audits []models.AuditEntry
}

func newTrackStubStore() *trackStubStore {
	return &trackStubStore{tracks: map[string]*models.Track{}}
}

func (s *trackStubStore) AddTrack(_ context.Context, t *models.Track) error {
	copy := *t
	s.tracks[t.ID] = &copy
	return nil
}

func (s *trackStubStore) GetTrack(_ context.Context, id string) (*models.Track, error) {
	if t, ok := s.tracks[id]; ok {
		copy := *t
		return &copy, nil
	}
	return nil, nil
}

func (s *trackStubStore) ListTracks(_ context.Context) ([]models.Track, error) {
	out := make([]models.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *trackStubStore) DeleteTrack(_ context.Context, id string) (bool, error) {
	if _, ok := s.tracks[id]; !ok {
		return false, nil
	}
	delete(s.tracks, id)
	return true, nil
}

func (s *trackStubStore) AddAudit(_ context.Context, e models.AuditEntry) { s.audits = append(s.audits, e) }

type recordingDeleter struct {
	keys []string
	err  error
}

func (d *recordingDeleter) DeleteFiles(_ context.Context, keys ...string) error {
	d.keys = append(d.keys, keys...)
	return d.err
}

func newTestTrackService(store TrackStore, files *recordingDeleter) *TrackService {
	svc := NewTrackService(store, files)
	n := 0
	svc.idGen = func() string { n++; return "t" + string(rune('0'+n)) }
	base := time.Unix(1_700_000_000, 0).UTC()
	svc.now = func() time.Time { return base.Add(time.Duration(n) * time.Minute) }
	return svc
}

func TestTrackAddValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestTrackService(newTrackStubStore(), &recordingDeleter{})
	cases := []TrackInput{
		{Title: "", Artist: "A", Genre: "Lofi", AudioURL: "https://utfs.io/f/a"},
		{Title: "T", Artist: "A", Genre: "Polka", AudioURL: "https://utfs.io/f/a"},
		{Title: "T", Artist: "A", Genre: "Lofi", AudioURL: "utfs.io/f/a"},
		{Title: "T", Artist: "A", Genre: "Lofi", AudioURL: "ftp://utfs.io/f/a"},
	}
	for _, in := range cases {
		if _, err := svc.AddTrack(ctx, "admin", in); err == nil {
			t.Fatalf("expected error for %+v", in)
		}
	}
	tr, err := svc.AddTrack(ctx, "admin", TrackInput{Title: " Rain ", Artist: "Mira", Genre: "lofi", AudioURL: "https://utfs.io/f/abc"})
	if err != nil {
		t.Fatalf("AddTrack returned error: %v", err)
	}
	if tr.Title != "Rain" || tr.Genre != "Lofi" || tr.ID == "" {
		t.Fatalf("unexpected track %+v", tr)
	}
}

func TestTrackListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newTestTrackService(newTrackStubStore(), &recordingDeleter{})
	for _, title := range []string{"first", "second", "third"} {
		if _, err := svc.AddTrack(ctx, "admin", TrackInput{Title: title, Artist: "A", Genre: "Nature", AudioURL: "https://utfs.io/f/" + title}); err != nil {
			t.Fatal(err)
		}
	}
	tracks, err := svc.ListTracks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tracks) != 3 || tracks[0].Title != "third" || tracks[2].Title != "first" {
		t.Fatalf("unexpected order %+v", tracks)
	}
}

func TestTrackDeleteRemovesFile(t *testing.T) {
	ctx := context.Background()
	store := newTrackStubStore()
	files := &recordingDeleter{}
	svc := newTestTrackService(store, files)
	tr, err := svc.AddTrack(ctx, "admin", TrackInput{Title: "T", Artist: "A", Genre: "Dark", AudioURL: "https://utfs.io/f/key123"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTrack(ctx, "admin", tr.ID); err != nil {
		t.Fatalf("DeleteTrack returned error: %v", err)
	}
	if len(files.keys) != 1 || files.keys[0] != "key123" {
		t.Fatalf("expected file key deletion, got %v", files.keys)
	}
	if err := svc.DeleteTrack(ctx, "admin", tr.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.GetTrack(ctx, tr.ID); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTrackDeleteSurvivesStorageFailure(t *testing.T) {
	ctx := context.Background()
	store := newTrackStubStore()
	svc := newTestTrackService(store, &recordingDeleter{err: errors.New("storage down")})
	tr, err := svc.AddTrack(ctx, "admin", TrackInput{Title: "T", Artist: "A", Genre: "Dark", AudioURL: "https://utfs.io/f/key123"})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTrack(ctx, "admin", tr.ID); err != nil {
		t.Fatalf("storage failure must not block deletion: %v", err)
	}
	if len(store.tracks) != 0 {
		t.Fatalf("track row should be removed")
	}
}

func TestTrackSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	store := newTrackStubStore()
	svc := newTestTrackService(store, &recordingDeleter{})
	seed := []TrackInput{
		{Title: "A", Artist: "X", Genre: "Ambient", AudioURL: "https://utfs.io/f/a"},
		{Title: "B", Artist: "X", Genre: "bogus", AudioURL: "https://utfs.io/f/b"},
	}
	n, err := svc.SeedIfEmpty(ctx, seed)
	if err != nil || n != 1 {
		t.Fatalf("expected one seeded track, got %d %v", n, err)
	}
	n, err = svc.SeedIfEmpty(ctx, seed)
	if err != nil || n != 0 {
		t.Fatalf("non-empty catalog must not be reseeded, got %d %v", n, err)
	}
}
