package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/sadopc/pomotrack/internal/store"
)

type fakeRepo struct {
	tags     []store.Tag
	tasks    []store.Task
	sessions []store.Session
	err      error
}

func (f *fakeRepo) ListTags() ([]store.Tag, error)         { return f.tags, f.err }
func (f *fakeRepo) ListTasks() ([]store.Task, error)       { return f.tasks, nil }
func (f *fakeRepo) ListSessions() ([]store.Session, error) { return f.sessions, nil }

var base = time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

func sumDurations(t store.Task) int64 {
	var n int64
	for _, s := range t.Sessions {
		n += s.Duration
	}
	return n
}

func newState(t *testing.T) *State {
	t.Helper()
	repo := &fakeRepo{
		tags: []store.Tag{{ID: "work", Name: "Work", Color: "#6C63FF"}},
		tasks: []store.Task{
			{ID: "a", Text: "write report", TagID: ptr("work"), TotalTime: 1800},
			{ID: "b", Text: "read book"},
		},
		sessions: []store.Session{
			{ID: "s2", TaskID: "a", StartTime: base.Add(time.Hour), Duration: 600},
			{ID: "s1", TaskID: "a", StartTime: base, Duration: 1200},
			{ID: "s3", TaskID: "gone", StartTime: base, Duration: 60},
		},
	}
	s, err := Load(repo)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

// ============================================================
// Load
// ============================================================

func TestLoadGroupsSessionsByTask(t *testing.T) {
	s := newState(t)

	a, ok := s.Task("a")
	if !ok {
		t.Fatal("task a missing")
	}
	if len(a.Sessions) != 2 {
		t.Fatalf("expected 2 sessions on a, got %d", len(a.Sessions))
	}
	if a.Sessions[0].ID != "s1" {
		t.Fatalf("sessions not sorted by start: first is %s", a.Sessions[0].ID)
	}
	if b, _ := s.Task("b"); len(b.Sessions) != 0 {
		t.Fatalf("expected no sessions on b, got %d", len(b.Sessions))
	}
	if s.TotalSessions() != 2 {
		t.Fatalf("orphaned session should be dropped, got %d sessions", s.TotalSessions())
	}
}

func TestLoadError(t *testing.T) {
	_, err := Load(&fakeRepo{err: errors.New("boom")})
	if err == nil {
		t.Fatal("expected error")
	}
}

// ============================================================
// Optimistic updates
// ============================================================

func TestAddSessionToTodoKeepsTotalTime(t *testing.T) {
	s := newState(t)

	for _, d := range []int64{1500, 1, 42} {
		if !s.AddSessionToTodo("a", store.Session{ID: "n", StartTime: base, Duration: d}) {
			t.Fatal("add session failed")
		}
	}
	a, _ := s.Task("a")
	if a.TotalTime != sumDurations(a) {
		t.Fatalf("TotalTime %d != sum of durations %d", a.TotalTime, sumDurations(a))
	}
	if a.TotalTime != 1800+1500+1+42 {
		t.Fatalf("unexpected TotalTime %d", a.TotalTime)
	}
	if a.Sessions[len(a.Sessions)-1].TaskID != "a" {
		t.Fatal("session task id not set")
	}
}

func TestAddSessionToUnknownTask(t *testing.T) {
	s := newState(t)
	if s.AddSessionToTodo("nope", store.Session{Duration: 10}) {
		t.Fatal("expected false for unknown task")
	}
}

func TestToggleCompleted(t *testing.T) {
	s := newState(t)

	done, ok := s.ToggleCompleted("b")
	if !ok || !done {
		t.Fatalf("expected completed, got done=%v ok=%v", done, ok)
	}
	done, _ = s.ToggleCompleted("b")
	if done {
		t.Fatal("expected toggled back")
	}
	if _, ok := s.ToggleCompleted("nope"); ok {
		t.Fatal("expected ok=false for unknown task")
	}
}

func TestAddAndRemoveTask(t *testing.T) {
	s := newState(t)

	s.AddTask(store.Task{ID: "c", Text: "new"})
	if len(s.Tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(s.Tasks))
	}
	s.AddTask(store.Task{ID: "c", Text: "renamed"})
	if len(s.Tasks) != 3 {
		t.Fatal("re-adding an id should replace")
	}
	s.RemoveTask("c")
	if _, ok := s.Task("c"); ok {
		t.Fatal("task c should be removed")
	}
	s.RemoveTask("c")
}

func TestRemoveTagClearsReferences(t *testing.T) {
	s := newState(t)

	s.RemoveTag("work")
	if len(s.Tags) != 0 {
		t.Fatalf("expected no tags, got %d", len(s.Tags))
	}
	a, _ := s.Task("a")
	if a.TagID != nil {
		t.Fatal("task a should lose its tag")
	}
}

// ============================================================
// Reconciliation
// ============================================================

func TestApplyRequestsReload(t *testing.T) {
	cases := []store.Change{
		{Table: store.TableTasks, Type: store.ChangeInsert, ID: "x"},
		{Table: store.TableTags, Type: store.ChangeInsert, ID: "x"},
		{Table: store.TableSessions, Type: store.ChangeInsert, ID: "x"},
		{Type: store.ChangeReload},
		{Table: store.TableTasks, Type: store.ChangeUpdate, ID: "unknown", Row: store.Task{ID: "unknown"}},
	}
	for _, c := range cases {
		s := newState(t)
		if !s.Apply(c) {
			t.Errorf("%s %s: expected reload", c.Table, c.Type)
		}
	}
}

func TestApplyPatchesTaskUpdate(t *testing.T) {
	s := newState(t)

	reload := s.Apply(store.Change{
		Table: store.TableTasks,
		Type:  store.ChangeUpdate,
		ID:    "a",
		Row:   store.Task{ID: "a", Text: "edited elsewhere", Completed: true, TotalTime: 1800},
	})
	if reload {
		t.Fatal("update should patch, not reload")
	}
	a, _ := s.Task("a")
	if a.Text != "edited elsewhere" || !a.Completed {
		t.Fatalf("task not patched: %+v", a)
	}
	if len(a.Sessions) != 2 {
		t.Fatalf("patch dropped sessions: %d", len(a.Sessions))
	}
}

func TestApplyDeletes(t *testing.T) {
	s := newState(t)

	if s.Apply(store.Change{Table: store.TableTasks, Type: store.ChangeDelete, ID: "b"}) {
		t.Fatal("delete should patch")
	}
	if _, ok := s.Task("b"); ok {
		t.Fatal("task b should be gone")
	}

	if s.Apply(store.Change{Table: store.TableTags, Type: store.ChangeDelete, ID: "work"}) {
		t.Fatal("delete should patch")
	}
	if a, _ := s.Task("a"); a.TagID != nil {
		t.Fatal("tag reference should be cleared")
	}
}

func TestApplyTagUpdate(t *testing.T) {
	s := newState(t)

	s.Apply(store.Change{
		Table: store.TableTags,
		Type:  store.ChangeUpdate,
		ID:    "work",
		Row:   store.Tag{ID: "work", Name: "Deep Work", Color: "#000000"},
	})
	tag, _ := s.Tag("work")
	if tag.Name != "Deep Work" {
		t.Fatalf("tag not patched: %+v", tag)
	}
}
