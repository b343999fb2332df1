package api

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/models"
)

// ErrDuplicateEmail is returned when adding a user whose email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// MemoryStore keeps everything in process memory. It backs development runs
// with database.driver=memory and the handler tests.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	userByEmail map[string]string
	resetCodes  map[string]*models.ResetCode
	tracks      map[string]*models.Track
	assessments []models.Assessment
	prompted    map[string]time.Time
	prefs       map[string]*models.Preferences
	likes       map[string]map[string]time.Time
	audit       []models.AuditEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[string]*models.User{},
		userByEmail: map[string]string{},
		resetCodes:  map[string]*models.ResetCode{},
		tracks:      map[string]*models.Track{},
		prompted:    map[string]time.Time{},
		prefs:       map[string]*models.Preferences{},
		likes:       map[string]map[string]time.Time{},
	}
}

func (s *MemoryStore) AddUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.userByEmail[u.Email]; ok {
		return ErrDuplicateEmail
	}
	cp := *u
	s.users[u.ID] = &cp
	s.userByEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.userByEmail[email]; ok {
		cp := *s.users[id]
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, userID string, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	u.PassHash = append([]byte(nil), hash...)
	return nil
}

func (s *MemoryStore) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func (s *MemoryStore) PutResetCode(_ context.Context, rc *models.ResetCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rc
	s.resetCodes[rc.Email] = &cp
	return nil
}

func (s *MemoryStore) GetResetCode(_ context.Context, email string) (*models.ResetCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rc, ok := s.resetCodes[email]; ok {
		cp := *rc
		return &cp, nil
	}
	return nil, nil
}

// ClaimResetAttempt counts one verification attempt against the code for
// email. It reports false once limit attempts have been used or no code exists.
func (s *MemoryStore) ClaimResetAttempt(_ context.Context, email string, limit int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc, ok := s.resetCodes[email]
	if !ok || rc.Attempts >= limit {
		return false, nil
	}
	rc.Attempts++
	return true, nil
}

func (s *MemoryStore) DeleteResetCode(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resetCodes, email)
	return nil
}

func (s *MemoryStore) AddTrack(_ context.Context, t *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tracks[t.ID] = &cp
	return nil
}

func (s *MemoryStore) GetTrack(_ context.Context, id string) (*models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tracks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) ListTracks(_ context.Context) ([]models.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Track, 0, len(s.tracks))
	for _, t := range s.tracks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteTrack(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tracks[id]; !ok {
		return false, nil
	}
	delete(s.tracks, id)
	for _, liked := range s.likes {
		delete(liked, id)
	}
	return true, nil
}

func (s *MemoryStore) CountTracks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tracks), nil
}

func (s *MemoryStore) AddAssessment(_ context.Context, a *models.Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assessments = append(s.assessments, *a)
	return nil
}

func (s *MemoryStore) ListAssessments(_ context.Context, userID string) ([]models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Assessment
	for _, a := range s.assessments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) LatestAssessments(_ context.Context) ([]models.Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	latest := map[string]models.Assessment{}
	for _, a := range s.assessments {
		if cur, ok := latest[a.UserID]; !ok || a.SubmittedAt.After(cur.SubmittedAt) {
			latest[a.UserID] = a
		}
	}
	out := make([]models.Assessment, 0, len(latest))
	for _, a := range latest {
		out = append(out, a)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) DeleteAssessments(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.assessments[:0]
	n := 0
	for _, a := range s.assessments {
		if a.UserID == userID {
			n++
			continue
		}
		kept = append(kept, a)
	}
	s.assessments = kept
	return n, nil
}

func (s *MemoryStore) MarkPrompted(_ context.Context, userID, sessionID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userID + "\x00" + sessionID
	if _, ok := s.prompted[key]; ok {
		return true, nil
	}
	s.prompted[key] = at
	return false, nil
}

// PrunePrompted forgets sessions prompted before the cutoff.
func (s *MemoryStore) PrunePrompted(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, at := range s.prompted {
		if at.Before(before) {
			delete(s.prompted, key)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) GetPreferences(_ context.Context, userID string) (*models.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.prefs[userID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *MemoryStore) UpsertPreferences(_ context.Context, p *models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.prefs[p.UserID] = &cp
	return nil
}

func (s *MemoryStore) ToggleLike(_ context.Context, userID, trackID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	liked := s.likes[userID]
	if liked == nil {
		liked = map[string]time.Time{}
		s.likes[userID] = liked
	}
	if _, ok := liked[trackID]; ok {
		delete(liked, trackID)
		return false, nil
	}
	liked[trackID] = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) ListLikedTrackIDs(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.likes[userID]))
	for id := range s.likes[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) AddAudit(_ context.Context, e models.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
}

func (s *MemoryStore) ListAudit(_ context.Context) []models.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.AuditEntry(nil), s.audit...)
}

func (s *MemoryStore) Close() error { return nil }

func sortNewestFirst(list []models.Assessment) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].SubmittedAt.After(list[j].SubmittedAt) })
}
