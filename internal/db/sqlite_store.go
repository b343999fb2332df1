package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/soaringjerry/Sanctuary/internal/api"
	"github.com/soaringjerry/Sanctuary/internal/dass"
	"github.com/soaringjerry/Sanctuary/internal/logging"
	"github.com/soaringjerry/Sanctuary/internal/models"
)

const auditLimit = 500

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		logging.Error().Err(err).Str("op", prefix).Msg("sqlite store")
	}
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// --- Users ---

const userColumns = `id, email, name, pass_hash, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PassHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) AddUser(ctx context.Context, u *models.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PassHash, u.Role, u.CreatedAt.UTC())
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
		return api.ErrDuplicateEmail
	}
	return err
}

func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (s *SQLiteStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (s *SQLiteStore) UpdatePassword(ctx context.Context, userID string, hash []byte) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET pass_hash = ? WHERE id = ?`, hash, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("user not found")
	}
	return nil
}

func (s *SQLiteStore) count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	return n, err
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) { return s.count(ctx, "users") }

// --- Password reset codes ---

func (s *SQLiteStore) PutResetCode(ctx context.Context, rc *models.ResetCode) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO reset_codes (email, code_hash, expires_at, attempts) VALUES (?, ?, ?, ?)
ON CONFLICT(email) DO UPDATE SET code_hash = excluded.code_hash, expires_at = excluded.expires_at, attempts = excluded.attempts`,
		rc.Email, rc.CodeHash, rc.ExpiresAt.UTC(), rc.Attempts)
	return err
}

func (s *SQLiteStore) GetResetCode(ctx context.Context, email string) (*models.ResetCode, error) {
	var rc models.ResetCode
	err := s.db.QueryRowContext(ctx,
		`SELECT email, code_hash, expires_at, attempts FROM reset_codes WHERE email = ?`, email).
		Scan(&rc.Email, &rc.CodeHash, &rc.ExpiresAt, &rc.Attempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// ClaimResetAttempt counts one verification attempt against the code for
// email. The guarded UPDATE keeps concurrent claims from overshooting limit.
func (s *SQLiteStore) ClaimResetAttempt(ctx context.Context, email string, limit int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reset_codes SET attempts = attempts + 1 WHERE email = ? AND attempts < ?`, email, limit)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *SQLiteStore) DeleteResetCode(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reset_codes WHERE email = ?`, email)
	return err
}

// --- Tracks ---

const trackColumns = `id, title, artist, genre, audio_url, created_at`

func scanTrack(row interface{ Scan(...any) error }) (*models.Track, error) {
	var t models.Track
	if err := row.Scan(&t.ID, &t.Title, &t.Artist, &t.Genre, &t.AudioURL, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) AddTrack(ctx context.Context, t *models.Track) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracks (`+trackColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Artist, t.Genre, t.AudioURL, t.CreatedAt.UTC())
	return err
}

func (s *SQLiteStore) GetTrack(ctx context.Context, id string) (*models.Track, error) {
	return scanTrack(s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id))
}

func (s *SQLiteStore) ListTracks(ctx context.Context) ([]models.Track, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+trackColumns+` FROM tracks ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.Track{}
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// DeleteTrack removes the track and every like that points at it.
func (s *SQLiteStore) DeleteTrack(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM liked_tracks WHERE track_id = ?`, id); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, tx.Commit()
}

func (s *SQLiteStore) CountTracks(ctx context.Context) (int, error) { return s.count(ctx, "tracks") }

// --- Assessments ---

const assessmentColumns = `id, user_id, depression, anxiety, stress, submitted_at`

func (s *SQLiteStore) queryAssessments(ctx context.Context, query string, args ...any) ([]models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Assessment
	for rows.Next() {
		var a models.Assessment
		var sc dass.Scores
		if err := rows.Scan(&a.ID, &a.UserID, &sc.Depression, &sc.Anxiety, &sc.Stress, &a.SubmittedAt); err != nil {
			return nil, err
		}
		a.Scores = sc
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) AddAssessment(ctx context.Context, a *models.Assessment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (`+assessmentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Scores.Depression, a.Scores.Anxiety, a.Scores.Stress, a.SubmittedAt.UTC())
	return err
}

func (s *SQLiteStore) ListAssessments(ctx context.Context, userID string) ([]models.Assessment, error) {
	return s.queryAssessments(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE user_id = ? ORDER BY submitted_at DESC, id DESC`, userID)
}

// LatestAssessments returns each user's newest submission.
func (s *SQLiteStore) LatestAssessments(ctx context.Context) ([]models.Assessment, error) {
	return s.queryAssessments(ctx, `
SELECT ` + assessmentColumns + ` FROM assessments a
WHERE a.id = (
    SELECT b.id FROM assessments b WHERE b.user_id = a.user_id
    ORDER BY b.submitted_at DESC, b.id DESC LIMIT 1
)
ORDER BY submitted_at DESC`)
}

func (s *SQLiteStore) DeleteAssessments(ctx context.Context, userID string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assessments WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) MarkPrompted(ctx context.Context, userID, sessionID string, at time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO prompt_sessions (user_id, session_id, prompted_at) VALUES (?, ?, ?)`,
		userID, sessionID, at.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 0, err
}

func (s *SQLiteStore) PrunePrompted(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM prompt_sessions WHERE prompted_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// --- Preferences and likes ---

func (s *SQLiteStore) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	p := models.Preferences{UserID: userID}
	err := s.db.QueryRowContext(ctx,
		`SELECT theme, content_density, updated_at FROM preferences WHERE user_id = ?`, userID).
		Scan(&p.Theme, &p.ContentDensity, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLiteStore) UpsertPreferences(ctx context.Context, p *models.Preferences) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO preferences (user_id, theme, content_density, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET theme = excluded.theme, content_density = excluded.content_density, updated_at = excluded.updated_at`,
		p.UserID, p.Theme, p.ContentDensity, p.UpdatedAt.UTC())
	return err
}

func (s *SQLiteStore) ToggleLike(ctx context.Context, userID, trackID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM liked_tracks WHERE user_id = ? AND track_id = ?`, userID, trackID)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if removed == 0 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO liked_tracks (user_id, track_id, liked_at) VALUES (?, ?, ?)`,
			userID, trackID, time.Now().UTC()); err != nil {
			return false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return removed == 0, nil
}

func (s *SQLiteStore) ListLikedTrackIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT track_id FROM liked_tracks WHERE user_id = ? ORDER BY track_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// --- Audit ---

func (s *SQLiteStore) AddAudit(ctx context.Context, e models.AuditEntry) {
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit (ts, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		ts.UTC(), e.Actor, e.Action, toNullString(e.Target), toNullString(e.Note))
	s.logErr("AddAudit", err)
}

// ListAudit returns the most recent entries in insertion order.
func (s *SQLiteStore) ListAudit(ctx context.Context) []models.AuditEntry {
	rows, err := s.db.QueryContext(ctx, `
SELECT ts, actor, action, target, note FROM (
    SELECT id, ts, actor, action, target, note FROM audit ORDER BY id DESC LIMIT ?
) ORDER BY id ASC`, auditLimit)
	if err != nil {
		s.logErr("ListAudit", err)
		return nil
	}
	defer rows.Close()
	out := make([]models.AuditEntry, 0)
	for rows.Next() {
		var e models.AuditEntry
		var target, note sql.NullString
		if err := rows.Scan(&e.Time, &e.Actor, &e.Action, &target, &note); err != nil {
			s.logErr("ListAudit", err)
			return out
		}
		e.Target, e.Note = target.String, note.String
		out = append(out, e)
	}
	s.logErr("ListAudit", rows.Err())
	return out
}
