// Package snapshot keeps the in-memory copy of a user's tags, tasks and
// sessions that the UI renders from.
//
// Writes are optimistic: the UI patches the State first and persists in the
// background, never rolling back on failure. Changes from the store feed are
// reconciled last-writer-wins; inserts and session events ask for a full
// reload instead of a patch.
package snapshot

import (
	"fmt"
	"sort"

	"github.com/sadopc/pomotrack/internal/store"
)

// Repository is the read side of the task store.
type Repository interface {
	ListTags() ([]store.Tag, error)
	ListTasks() ([]store.Task, error)
	ListSessions() ([]store.Session, error)
}

type State struct {
	Tags  []store.Tag
	Tasks []store.Task
}

// Load reads everything from r and attaches each session to its task.
// Sessions of deleted tasks are dropped.
func Load(r Repository) (*State, error) {
	tags, err := r.ListTags()
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	tasks, err := r.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	sessions, err := r.ListSessions()
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	byTask := make(map[string][]store.Session, len(tasks))
	for _, s := range sessions {
		byTask[s.TaskID] = append(byTask[s.TaskID], s)
	}
	for i := range tasks {
		ss := byTask[tasks[i].ID]
		sort.SliceStable(ss, func(a, b int) bool { return ss[a].StartTime.Before(ss[b].StartTime) })
		tasks[i].Sessions = ss
	}
	return &State{Tags: tags, Tasks: tasks}, nil
}

func (s *State) taskIndex(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) tagIndex(id string) int {
	for i := range s.Tags {
		if s.Tags[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) Task(id string) (store.Task, bool) {
	if i := s.taskIndex(id); i >= 0 {
		return s.Tasks[i], true
	}
	return store.Task{}, false
}

func (s *State) Tag(id string) (store.Tag, bool) {
	if i := s.tagIndex(id); i >= 0 {
		return s.Tags[i], true
	}
	return store.Tag{}, false
}

// AddSessionToTodo appends sess to the task and adds its duration to the
// task's TotalTime. It reports false when the task is unknown.
func (s *State) AddSessionToTodo(taskID string, sess store.Session) bool {
	i := s.taskIndex(taskID)
	if i < 0 {
		return false
	}
	sess.TaskID = taskID
	s.Tasks[i].Sessions = append(s.Tasks[i].Sessions, sess)
	s.Tasks[i].TotalTime += sess.Duration
	return true
}

func (s *State) AddTask(t store.Task) {
	if i := s.taskIndex(t.ID); i >= 0 {
		s.Tasks[i] = t
		return
	}
	s.Tasks = append(s.Tasks, t)
}

func (s *State) RemoveTask(id string) {
	if i := s.taskIndex(id); i >= 0 {
		s.Tasks = append(s.Tasks[:i], s.Tasks[i+1:]...)
	}
}

// ToggleCompleted flips the completed flag locally and returns the new value.
// ok is false when the task is unknown.
func (s *State) ToggleCompleted(id string) (completed, ok bool) {
	i := s.taskIndex(id)
	if i < 0 {
		return false, false
	}
	s.Tasks[i].Completed = !s.Tasks[i].Completed
	return s.Tasks[i].Completed, true
}

func (s *State) AddTag(t store.Tag) {
	if i := s.tagIndex(t.ID); i >= 0 {
		s.Tags[i] = t
		return
	}
	s.Tags = append(s.Tags, t)
}

// RemoveTag drops the tag and clears it from every task that used it.
func (s *State) RemoveTag(id string) {
	if i := s.tagIndex(id); i >= 0 {
		s.Tags = append(s.Tags[:i], s.Tags[i+1:]...)
	}
	for i := range s.Tasks {
		if s.Tasks[i].TagID != nil && *s.Tasks[i].TagID == id {
			s.Tasks[i].TagID = nil
		}
	}
}

// TotalSessions counts sessions across all tasks.
func (s *State) TotalSessions() int {
	n := 0
	for _, t := range s.Tasks {
		n += len(t.Sessions)
	}
	return n
}
