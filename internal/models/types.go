package models

import (
	"time"

	"github.com/soaringjerry/Sanctuary/internal/dass"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account with its profile role.
type User struct {
	ID        string
	Email     string
	Name      string
	PassHash  []byte
	Role      string
	CreatedAt time.Time
}

// Track is an uploaded audio file with its catalog metadata. Genre is one of the
// nine recommendation tags.
type Track struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Genre     string    `json:"genre"`
	AudioURL  string    `json:"audio_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Assessment is one stored questionnaire submission. Only the scaled scores are
// kept; labels and percentages are derived on read.
type Assessment struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Scores      dass.Scores `json:"scores"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// Preferences holds per-user player settings.
type Preferences struct {
	UserID         string    `json:"-"`
	Theme          string    `json:"theme"`
	ContentDensity string    `json:"content_density"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ResetCode is a pending password reset one-time code. Only its hash is stored.
type ResetCode struct {
	Email     string
	CodeHash  []byte
	ExpiresAt time.Time
	Attempts  int
}

// AuditEntry records an administrative or account action.
type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}
