package services

import (
	"context"
	"strings"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/dass"
	"github.com/soaringjerry/Sanctuary/internal/metrics"
	"github.com/soaringjerry/Sanctuary/internal/models"
)

type MoodStore interface {
	AddAssessment(ctx context.Context, a *models.Assessment) error
	// ListAssessments returns a user's submissions newest first.
	ListAssessments(ctx context.Context, userID string) ([]models.Assessment, error)
	// MarkPrompted records that a session has seen the questionnaire and
	// reports whether it had already been recorded.
	MarkPrompted(ctx context.Context, userID, sessionID string, at time.Time) (bool, error)
	PrunePrompted(ctx context.Context, before time.Time) (int, error)
}

type MoodService struct {
	store           MoodStore
	now             func() time.Time
	idGen           func(prefix string, n int) string
	repromptAfter   time.Duration
	requireComplete bool
}

type MoodOptions struct {
	// RepromptAfter is how long a submission stays current.
	RepromptAfter time.Duration
	// RequireComplete rejects submissions with missing or out-of-range answers.
	RequireComplete bool
}

// Submission is a stored assessment with its interpretation.
type Submission struct {
	Assessment models.Assessment `json:"assessment"`
	Result     dass.Result       `json:"result"`
}

// MoodStatus tells the client whether to show the questionnaire.
type MoodStatus struct {
	Prompt bool        `json:"prompt"`
	Reason string      `json:"reason,omitempty"`
	Latest *Submission `json:"latest,omitempty"`
}

const DefaultRepromptAfter = 7 * 24 * time.Hour

func NewMoodService(store MoodStore, opts MoodOptions) *MoodService {
	if opts.RepromptAfter <= 0 {
		opts.RepromptAfter = DefaultRepromptAfter
	}
	return &MoodService{
		store:           store,
		now:             func() time.Time { return time.Now().UTC() },
		idGen:           func(prefix string, n int) string { return prefix + shortID(n) },
		repromptAfter:   opts.RepromptAfter,
		requireComplete: opts.RequireComplete,
	}
}

func (s *MoodService) Submit(ctx context.Context, userID string, answers dass.Answers) (*Submission, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLoginRequired
	}
	if s.requireComplete {
		if err := dass.Validate(answers); err != nil {
			return nil, NewInvalidError(err.Error())
		}
	}
	scores := dass.ComputeScores(answers)
	a := models.Assessment{
		ID:          s.idGen("a", 12),
		UserID:      userID,
		Scores:      scores,
		SubmittedAt: s.now(),
	}
	if err := s.store.AddAssessment(ctx, &a); err != nil {
		return nil, err
	}
	res := dass.Assess(scores)
	metrics.RecordAssessment(string(res.OverallLabel))
	return &Submission{Assessment: a, Result: res}, nil
}

// Latest returns the newest submission still inside the re-prompt window, or
// nil once it has expired.
func (s *MoodService) Latest(ctx context.Context, userID string) (*Submission, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLoginRequired
	}
	list, err := s.store.ListAssessments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	a := list[0]
	if s.now().Sub(a.SubmittedAt) >= s.repromptAfter {
		return nil, nil
	}
	return &Submission{Assessment: a, Result: dass.Assess(a.Scores)}, nil
}

// Status reports whether this session should be shown the questionnaire and
// marks the session as prompted.
func (s *MoodService) Status(ctx context.Context, userID, sessionID string) (*MoodStatus, error) {
	latest, err := s.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := false
	if strings.TrimSpace(sessionID) != "" {
		seen, err = s.store.MarkPrompted(ctx, userID, sessionID, s.now())
		if err != nil {
			return nil, err
		}
	}
	st := &MoodStatus{Latest: latest}
	switch {
	case !seen:
		st.Prompt, st.Reason = true, "new_session"
	case latest == nil:
		st.Prompt, st.Reason = true, "expired"
	}
	return st, nil
}

// PruneSessions forgets prompted sessions older than maxAge. Pass the token
// TTL: older sessions can no longer authenticate.
func (s *MoodService) PruneSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	return s.store.PrunePrompted(ctx, s.now().Add(-maxAge))
}

func (s *MoodService) History(ctx context.Context, userID string) ([]Submission, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLoginRequired
	}
	list, err := s.store.ListAssessments(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Submission, 0, len(list))
	for _, a := range list {
		out = append(out, Submission{Assessment: a, Result: dass.Assess(a.Scores)})
	}
	return out, nil
}

// Questionnaire is the static DASS-21 item list with the answer scale.
type Questionnaire struct {
	Questions []dass.Question `json:"questions"`
	Answers   []string        `json:"answers"`
	MinAnswer int             `json:"min_answer"`
	MaxAnswer int             `json:"max_answer"`
}

func (s *MoodService) Questionnaire() Questionnaire {
	return Questionnaire{
		Questions: dass.Questions(),
		Answers:   append([]string(nil), dass.AnswerLabels[:]...),
		MinAnswer: dass.MinAnswer,
		MaxAnswer: dass.MaxAnswer,
	}
}
