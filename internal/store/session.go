package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Outcome is how an armed session finished.
type Outcome string

const (
	// OutcomeBlinked means a blink ended the session.
	OutcomeBlinked Outcome = "blinked"
	// OutcomeCancelled means the player quit while armed.
	OutcomeCancelled Outcome = "cancelled"
)

// Value stores an Outcome as plain text.
func (o Outcome) Value() (driver.Value, error) {
	return string(o), nil
}

// SessionResult is a finished session as stored in the database.
type SessionResult struct {
	ID             string    `db:"id" json:"id"`
	StartedAt      time.Time `db:"started_at" json:"started_at"`
	EndedAt        time.Time `db:"ended_at" json:"ended_at"`
	ElapsedSeconds int64     `db:"elapsed_seconds" json:"elapsed_seconds"`
	Outcome        Outcome   `db:"outcome" json:"outcome"`
	FaceWidth      int       `db:"face_width" json:"face_width"`
}

const (
	queryCreateSession = `
		INSERT INTO sessions (id, started_at, ended_at, elapsed_seconds, outcome, face_width)
		VALUES (:id, :started_at, :ended_at, :elapsed_seconds, :outcome, :face_width)`

	querySelectSession = `
		SELECT id, started_at, ended_at, elapsed_seconds, outcome, face_width
		FROM sessions`

	queryGetSessionByID = querySelectSession + ` WHERE id = ?`

	queryListSessions = querySelectSession + `
		ORDER BY started_at DESC
		LIMIT ?`

	queryBestSession = querySelectSession + `
		WHERE outcome = ?
		ORDER BY elapsed_seconds DESC, started_at ASC
		LIMIT 1`

	queryDeleteSession = `DELETE FROM sessions WHERE id = ?`
)

// SessionRepository provides access to stored session results.
type SessionRepository struct {
	db *sqlx.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session result.
func (r *SessionRepository) Create(res *SessionResult) error {
	_, err := r.db.NamedExec(queryCreateSession, res)
	return err
}

// GetByID retrieves a session result by its ID.
func (r *SessionRepository) GetByID(id string) (*SessionResult, error) {
	return r.getOne(queryGetSessionByID, id)
}

// List returns the most recent session results first. A non-positive
// limit returns every row.
func (r *SessionRepository) List(limit int) ([]SessionResult, error) {
	if limit <= 0 {
		limit = -1
	}

	results := []SessionResult{}
	if err := r.db.Select(&results, queryListSessions, limit); err != nil {
		return nil, err
	}
	return results, nil
}

// Best returns the blinked session that lasted longest, earliest first on
// ties. Cancelled sessions never count.
func (r *SessionRepository) Best() (*SessionResult, error) {
	return r.getOne(queryBestSession, OutcomeBlinked)
}

// Delete removes a session result by its ID.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(queryDeleteSession, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *SessionRepository) getOne(query string, args ...any) (*SessionResult, error) {
	var res SessionResult
	if err := r.db.Get(&res, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}
