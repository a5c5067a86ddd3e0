package store

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrEmptyText = errors.New("task text is empty")
	ErrEmptyName = errors.New("tag name is empty")
)

type Tag struct {
	ID        string
	Name      string
	Color     string // hex, e.g. "#6C63FF"
	CreatedAt time.Time
}

// Task is a todo item. TotalTime always equals the sum of Duration over its
// sessions; the store keeps it in sync on CreateSession.
type Task struct {
	ID        string
	Text      string
	Completed bool
	TotalTime int64 // seconds
	TagID     *string
	Sessions  []Session // filled by callers that group ListSessions by task
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Session struct {
	ID        string
	TaskID    string
	StartTime time.Time
	EndTime   time.Time
	Duration  int64 // seconds, accumulated while running
	CreatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// defaultTags are created for a user who has none.
var defaultTags = []struct{ Name, Color string }{
	{"Work", "#6C63FF"},
	{"Study", "#2EC4B6"},
	{"Personal", "#FF6B6B"},
	{"Health", "#2ECC71"},
	{"Reading", "#F39C12"},
}
