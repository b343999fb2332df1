package services

import (
	"context"
	"github.com/soaringjerry/Sanctuary/internal/dass"
	"github.com/soaringjerry/Sanctuary/internal/models"
)

type StatsStore interface {
	CountUsers(ctx context.Context) (int, error)
	CountTracks(ctx context.Context) (int, error)
	// LatestAssessments returns each user's newest submission.
	LatestAssessments(ctx context.Context) ([]models.Assessment, error)
}

type StatsService struct {
	store StatsStore
}

// Totals backs the admin dashboard counters.
type Totals struct {
	Users  int `json:"users"`
	Tracks int `json:"tracks"`
	// Assessed counts users with at least one submission.
	Assessed int `json:"assessed"`
	// ByOverallLabel buckets each user's latest submission by overall severity.
	ByOverallLabel map[dass.Severity]int `json:"by_overall_label"`
}

func NewStatsService(store StatsStore) *StatsService {
	return &StatsService{store: store}
}

func (s *StatsService) Totals(ctx context.Context) (*Totals, error) {
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	tracks, err := s.store.CountTracks(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.store.LatestAssessments(ctx)
	if err != nil {
		return nil, err
	}
	t := &Totals{Users: users, Tracks: tracks, Assessed: len(latest), ByOverallLabel: make(map[dass.Severity]int, len(dass.Severities))}
	for _, sev := range dass.Severities {
		t.ByOverallLabel[sev] = 0
	}
	for _, a := range latest {
		t.ByOverallLabel[dass.Assess(a.Scores).OverallLabel]++
	}
	return t, nil
}
