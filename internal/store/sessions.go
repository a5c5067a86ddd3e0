package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sessionColumns = `id, task_id, start_time, end_time, duration, created_at`

func scanSession(r rowScanner) (Session, error) {
	var e Session
	var startTime, endTime, createdAt string
	if err := r.Scan(&e.ID, &e.TaskID, &startTime, &endTime, &e.Duration, &createdAt); err != nil {
		return e, err
	}
	e.StartTime = parseTime(startTime)
	e.EndTime = parseTime(endTime)
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

// CreateSession records a finished session and adds its duration to the
// owning task's total time in the same transaction. An empty ID is filled
// in; callers that already track the session locally pass their own.
func (s *Store) CreateSession(in Session) (*Session, error) {
	if in.TaskID == "" {
		return nil, errors.New("create session: missing task id")
	}
	if in.Duration < 1 {
		return nil, fmt.Errorf("create session: duration %d < 1", in.Duration)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin session tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, user_id, task_id, start_time, end_time, duration, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, s.userID, in.TaskID, formatTime(in.StartTime), formatTime(in.EndTime), in.Duration, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	_, err = tx.Exec(
		`UPDATE tasks SET total_time = total_time + ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		in.Duration, formatTime(time.Now()), in.TaskID, s.userID,
	)
	if err != nil {
		return nil, fmt.Errorf("add session time to task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit session: %w", err)
	}

	sess, err := s.GetSession(in.ID)
	if err != nil {
		return nil, err
	}
	s.feed.publish(Change{Table: TableSessions, Type: ChangeInsert, ID: sess.ID, Row: *sess})
	return sess, nil
}

func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? AND user_id = ?`, id, s.userID,
	)
	e, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return &e, nil
}

// ListSessions returns every session of the user, oldest first.
func (s *Store) ListSessions() ([]Session, error) {
	return s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? ORDER BY start_time, id`, s.userID,
	)
}

// ListSessionsBetween returns sessions starting in [from, to), oldest first.
func (s *Store) ListSessionsBetween(from, to time.Time) ([]Session, error) {
	return s.querySessions(
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = ? AND start_time >= ? AND start_time < ?
		 ORDER BY start_time, id`,
		s.userID, formatTime(from), formatTime(to),
	)
}

func (s *Store) querySessions(query string, args ...any) ([]Session, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		e, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, e)
	}
	return sessions, rows.Err()
}

// GetTodayTotal sums the durations of sessions that started today in loc.
func (s *Store) GetTodayTotal(now time.Time) (int64, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var total sql.NullInt64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(duration), 0)
		FROM sessions
		WHERE user_id = ? AND start_time >= ? AND start_time < ?`,
		s.userID, formatTime(dayStart), formatTime(dayStart.AddDate(0, 0, 1)),
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}
