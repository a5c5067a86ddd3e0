package snapshot

import "github.com/sadopc/pomotrack/internal/store"

// Apply reconciles one change from the store feed. It patches task and tag
// updates and deletes in place and returns true when the caller should
// reload the whole snapshot instead.
func (s *State) Apply(c store.Change) (reload bool) {
	if c.Type == store.ChangeReload {
		return true
	}

	switch c.Table {
	case store.TableSessions:
		return true

	case store.TableTasks:
		switch c.Type {
		case store.ChangeInsert:
			return true
		case store.ChangeDelete:
			s.RemoveTask(c.ID)
		case store.ChangeUpdate:
			row, ok := c.Row.(store.Task)
			if !ok {
				return true
			}
			i := s.taskIndex(c.ID)
			if i < 0 {
				return true
			}
			sessions := s.Tasks[i].Sessions
			s.Tasks[i] = row
			s.Tasks[i].Sessions = sessions
		}

	case store.TableTags:
		switch c.Type {
		case store.ChangeInsert:
			return true
		case store.ChangeDelete:
			s.RemoveTag(c.ID)
		case store.ChangeUpdate:
			row, ok := c.Row.(store.Tag)
			if !ok {
				return true
			}
			s.AddTag(row)
		}
	}
	return false
}
