package api

import (
	"context"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/models"
	"github.com/soaringjerry/Sanctuary/internal/services"
)

// Store is the persistence surface the server needs. Lookups of missing rows
// return nil without an error.
type Store interface {
	AddUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID string, hash []byte) error
	CountUsers(ctx context.Context) (int, error)

	PutResetCode(ctx context.Context, rc *models.ResetCode) error
	GetResetCode(ctx context.Context, email string) (*models.ResetCode, error)
	ClaimResetAttempt(ctx context.Context, email string, limit int) (bool, error)
	DeleteResetCode(ctx context.Context, email string) error

	AddTrack(ctx context.Context, t *models.Track) error
	GetTrack(ctx context.Context, id string) (*models.Track, error)
	ListTracks(ctx context.Context) ([]models.Track, error)
	DeleteTrack(ctx context.Context, id string) (bool, error)
	CountTracks(ctx context.Context) (int, error)

	AddAssessment(ctx context.Context, a *models.Assessment) error
	ListAssessments(ctx context.Context, userID string) ([]models.Assessment, error)
	LatestAssessments(ctx context.Context) ([]models.Assessment, error)
	DeleteAssessments(ctx context.Context, userID string) (int, error)
	MarkPrompted(ctx context.Context, userID, sessionID string, at time.Time) (bool, error)
	PrunePrompted(ctx context.Context, before time.Time) (int, error)

	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpsertPreferences(ctx context.Context, p *models.Preferences) error
	ToggleLike(ctx context.Context, userID, trackID string) (bool, error)
	ListLikedTrackIDs(ctx context.Context, userID string) ([]string, error)

	AddAudit(ctx context.Context, e models.AuditEntry)
	ListAudit(ctx context.Context) []models.AuditEntry

	Close() error
}

var (
	_ Store                    = (*MemoryStore)(nil)
	_ services.AuthStore       = Store(nil)
	_ services.TrackStore      = Store(nil)
	_ services.MoodStore       = Store(nil)
	_ services.PreferenceStore = Store(nil)
	_ services.StatsStore      = Store(nil)
	_ services.HistoryStore    = Store(nil)
	_ services.CatalogStore    = Store(nil)
)
