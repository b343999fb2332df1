package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/dass"
	"github.com/soaringjerry/Sanctuary/internal/models"
)

type HistoryStore interface {
	ListAssessments(ctx context.Context, userID string) ([]models.Assessment, error)
	DeleteAssessments(ctx context.Context, userID string) (int, error)
	AddAudit(ctx context.Context, entry models.AuditEntry)
}

// HistoryService is the user's self-service view of their stored submissions.
type HistoryService struct {
	store HistoryStore
	now   func() time.Time
}

func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store, now: func() time.Time { return time.Now().UTC() }}
}

var historyHeader = []string{
	"submitted_at",
	"depression", "anxiety", "stress",
	"depression_label", "anxiety_label", "stress_label",
	"depression_pct", "anxiety_pct", "stress_pct",
	"overall_pct", "overall_label",
}

// ExportCSV renders every submission of the user, newest first.
func (s *HistoryService) ExportCSV(ctx context.Context, userID string) ([]byte, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrLoginRequired
	}
	list, err := s.store.ListAssessments(ctx, userID)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write(historyHeader)
	for _, a := range list {
		r := dass.Assess(a.Scores)
		rec := []string{
			a.SubmittedAt.UTC().Format(time.RFC3339),
			strconv.Itoa(a.Scores.Depression),
			strconv.Itoa(a.Scores.Anxiety),
			strconv.Itoa(a.Scores.Stress),
			string(r.Label(dass.Depression)),
			string(r.Label(dass.Anxiety)),
			string(r.Label(dass.Stress)),
			strconv.Itoa(r.Percentages[dass.Depression]),
			strconv.Itoa(r.Percentages[dass.Anxiety]),
			strconv.Itoa(r.Percentages[dass.Stress]),
			strconv.Itoa(r.Overall),
			string(r.OverallLabel),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DeleteHistory removes every stored submission of the user.
func (s *HistoryService) DeleteHistory(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, ErrLoginRequired
	}
	n, err := s.store.DeleteAssessments(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.store.AddAudit(ctx, models.AuditEntry{Time: s.now(), Actor: userID, Action: "history.delete", Target: userID, Note: strconv.Itoa(n)})
	return n, nil
}
