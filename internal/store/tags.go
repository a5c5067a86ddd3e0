package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (s *Store) CreateTag(name, color string) (*Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	id := uuid.NewString()
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO tags (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, s.userID, name, color, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	tag, err := s.GetTag(id)
	if err != nil {
		return nil, err
	}
	s.feed.publish(Change{Table: TableTags, Type: ChangeInsert, ID: id, Row: *tag})
	return tag, nil
}

func (s *Store) GetTag(id string) (*Tag, error) {
	t := &Tag{}
	var createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, color, created_at FROM tags WHERE id = ? AND user_id = ?`, id, s.userID,
	).Scan(&t.ID, &t.Name, &t.Color, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tag %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tag %s: %w", id, err)
	}
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}

func (s *Store) ListTags() ([]Tag, error) {
	rows, err := s.db.Query(
		`SELECT id, name, color, created_at FROM tags WHERE user_id = ? ORDER BY created_at, name`, s.userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt = parseTime(createdAt)
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Store) UpdateTag(id, name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	res, err := s.db.Exec(
		`UPDATE tags SET name = ?, color = ? WHERE id = ? AND user_id = ?`,
		name, color, id, s.userID,
	)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update tag %s: %w", id, ErrNotFound)
	}
	tag, err := s.GetTag(id)
	if err != nil {
		return err
	}
	s.feed.publish(Change{Table: TableTags, Type: ChangeUpdate, ID: id, Row: *tag})
	return nil
}

// DeleteTag removes the tag; tasks that used it keep existing without a tag.
func (s *Store) DeleteTag(id string) error {
	res, err := s.db.Exec(`DELETE FROM tags WHERE id = ? AND user_id = ?`, id, s.userID)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete tag %s: %w", id, ErrNotFound)
	}
	s.feed.publish(Change{Table: TableTags, Type: ChangeDelete, ID: id})
	return nil
}

// EnsureDefaultTags creates the system default tags when the user has none
// and reports whether it did.
func (s *Store) EnsureDefaultTags() (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM tags WHERE user_id = ?`, s.userID).Scan(&n); err != nil {
		return false, fmt.Errorf("count tags: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	for _, d := range defaultTags {
		if _, err := s.CreateTag(d.Name, d.Color); err != nil {
			return false, fmt.Errorf("create default tag %q: %w", d.Name, err)
		}
	}
	return true, nil
}
