package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/dass"
	"github.com/soaringjerry/Sanctuary/internal/models"
)

type moodStubStore struct {
	assessments []models.Assessment
	prompted    map[string]time.Time
}

func newMoodStubStore() *moodStubStore {
	return &moodStubStore{prompted: map[string]time.Time{}}
}

func (s *moodStubStore) AddAssessment(_ context.Context, a *models.Assessment) error {
	s.assessments = append(s.assessments, *a)
	return nil
}

func (s *moodStubStore) ListAssessments(_ context.Context, userID string) ([]models.Assessment, error) {
	var out []models.Assessment
	for _, a := range s.assessments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func (s *moodStubStore) MarkPrompted(_ context.Context, userID, sessionID string, at time.Time) (bool, error) {
	key := userID + "/" + sessionID
	if _, seen := s.prompted[key]; seen {
		return true, nil
	}
	s.prompted[key] = at
	return false, nil
}

func (s *moodStubStore) PrunePrompted(_ context.Context, before time.Time) (int, error) {
	n := 0
	for key, at := range s.prompted {
		if at.Before(before) {
			delete(s.prompted, key)
			n++
		}
	}
	return n, nil
}

func (s *moodStubStore) DeleteAssessments(_ context.Context, userID string) (int, error) {
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

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMoodService(store MoodStore, opts MoodOptions) (*MoodService, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0).UTC()}
	svc := NewMoodService(store, opts)
	svc.now = clock.now
	return svc, clock
}

func fullAnswers(v int) dass.Answers {
	a := dass.Answers{}
	for i := 1; i <= dass.QuestionCount; i++ {
		a[i] = v
	}
	return a
}

func TestMoodSubmitComputesAndStores(t *testing.T) {
	ctx := context.Background()
	store := newMoodStubStore()
	svc, _ := newTestMoodService(store, MoodOptions{})

	sub, err := svc.Submit(ctx, "u1", dass.Answers{3: 3, 5: 3, 10: 3, 13: 3, 16: 3, 2: 1})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if sub.Assessment.Scores != (dass.Scores{Depression: 30, Anxiety: 2}) {
		t.Fatalf("unexpected scores %+v", sub.Assessment.Scores)
	}
	if sub.Result.Label(dass.Depression) != dass.ExtremelySevere || sub.Result.Label(dass.Anxiety) != dass.Normal {
		t.Fatalf("unexpected labels %+v", sub.Result.Labels)
	}
	if len(store.assessments) != 1 || store.assessments[0].UserID != "u1" {
		t.Fatalf("assessment not stored: %+v", store.assessments)
	}

	if _, err := svc.Submit(ctx, "", fullAnswers(0)); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("expected login required, got %v", err)
	}
}

func TestMoodSubmitStrict(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestMoodService(newMoodStubStore(), MoodOptions{RequireComplete: true})
	_, err := svc.Submit(ctx, "u1", dass.Answers{1: 2})
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorInvalid {
		t.Fatalf("expected invalid for incomplete answers, got %v", err)
	}
	if _, err := svc.Submit(ctx, "u1", fullAnswers(1)); err != nil {
		t.Fatalf("complete answers rejected: %v", err)
	}
}

func TestMoodLatestExpires(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestMoodService(newMoodStubStore(), MoodOptions{RepromptAfter: 48 * time.Hour})
	latest, err := svc.Latest(ctx, "u1")
	if err != nil || latest != nil {
		t.Fatalf("expected no latest, got %+v %v", latest, err)
	}
	if _, err := svc.Submit(ctx, "u1", fullAnswers(1)); err != nil {
		t.Fatal(err)
	}
	clock.advance(time.Hour)
	if _, err := svc.Submit(ctx, "u1", fullAnswers(2)); err != nil {
		t.Fatal(err)
	}
	latest, err = svc.Latest(ctx, "u1")
	if err != nil || latest == nil {
		t.Fatalf("expected latest, got %v", err)
	}
	if latest.Assessment.Scores.Depression != 28 {
		t.Fatalf("expected newest submission, got %+v", latest.Assessment.Scores)
	}
	clock.advance(49 * time.Hour)
	latest, err = svc.Latest(ctx, "u1")
	if err != nil || latest != nil {
		t.Fatalf("expected expiry, got %+v %v", latest, err)
	}
	history, err := svc.History(ctx, "u1")
	if err != nil || len(history) != 2 {
		t.Fatalf("history should keep expired entries: %d %v", len(history), err)
	}
}

func TestMoodStatusRepromptPolicy(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestMoodService(newMoodStubStore(), MoodOptions{RepromptAfter: 24 * time.Hour})

	st, err := svc.Status(ctx, "u1", "s1")
	if err != nil || !st.Prompt || st.Reason != "new_session" {
		t.Fatalf("first status should prompt: %+v %v", st, err)
	}
	st, err = svc.Status(ctx, "u1", "s1")
	if err != nil || !st.Prompt || st.Reason != "expired" {
		t.Fatalf("prompted session without scores should still prompt: %+v %v", st, err)
	}
	if _, err := svc.Submit(ctx, "u1", fullAnswers(1)); err != nil {
		t.Fatal(err)
	}
	st, err = svc.Status(ctx, "u1", "s1")
	if err != nil || st.Prompt || st.Latest == nil {
		t.Fatalf("fresh scores in a prompted session should not prompt: %+v %v", st, err)
	}
	st, err = svc.Status(ctx, "u1", "s2")
	if err != nil || !st.Prompt {
		t.Fatalf("a new login session should prompt: %+v %v", st, err)
	}
	clock.advance(25 * time.Hour)
	st, err = svc.Status(ctx, "u1", "s2")
	if err != nil || !st.Prompt || st.Reason != "expired" {
		t.Fatalf("expired scores should prompt: %+v %v", st, err)
	}
}

func TestMoodRepromptsAtExactlyTheWindow(t *testing.T) {
	ctx := context.Background()
	svc, clock := newTestMoodService(newMoodStubStore(), MoodOptions{})
	if _, err := svc.Submit(ctx, "u1", fullAnswers(1)); err != nil {
		t.Fatal(err)
	}
	if st, err := svc.Status(ctx, "u1", "s1"); err != nil || st.Reason != "new_session" {
		t.Fatalf("first status: %+v %v", st, err)
	}

	clock.advance(DefaultRepromptAfter - time.Second)
	st, err := svc.Status(ctx, "u1", "s1")
	if err != nil || st.Prompt || st.Latest == nil {
		t.Fatalf("a second before the window the scores are current: %+v %v", st, err)
	}

	clock.advance(time.Second)
	st, err = svc.Status(ctx, "u1", "s1")
	if err != nil || !st.Prompt || st.Reason != "expired" || st.Latest != nil {
		t.Fatalf("exactly %s after submitting should prompt: %+v %v", DefaultRepromptAfter, st, err)
	}
}

func TestMoodPruneSessions(t *testing.T) {
	ctx := context.Background()
	store := newMoodStubStore()
	svc, clock := newTestMoodService(store, MoodOptions{})
	if _, err := svc.Status(ctx, "u1", "old"); err != nil {
		t.Fatal(err)
	}
	clock.advance(48 * time.Hour)
	if _, err := svc.Status(ctx, "u1", "new"); err != nil {
		t.Fatal(err)
	}

	n, err := svc.PruneSessions(ctx, 24*time.Hour)
	if err != nil || n != 1 {
		t.Fatalf("PruneSessions = %d %v, want 1", n, err)
	}
	if _, ok := store.prompted["u1/old"]; ok {
		t.Fatalf("old session should be pruned")
	}
	if n, _ := svc.PruneSessions(ctx, 0); n != 0 {
		t.Fatalf("zero max age must not prune")
	}
	st, _ := svc.Status(ctx, "u1", "new")
	if st.Reason == "new_session" {
		t.Fatalf("recent session should survive pruning")
	}
}

func TestMoodQuestionnaire(t *testing.T) {
	svc, _ := newTestMoodService(newMoodStubStore(), MoodOptions{})
	q := svc.Questionnaire()
	if len(q.Questions) != dass.QuestionCount || len(q.Answers) != 4 || q.MaxAnswer != 3 {
		t.Fatalf("unexpected questionnaire %+v", q)
	}
}
