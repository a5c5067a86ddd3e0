package store

import (
	"context"
	"sync"
	"time"
)

type Table string

const (
	TableTags     Table = "tags"
	TableTasks    Table = "tasks"
	TableSessions Table = "sessions"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "insert"
	ChangeUpdate ChangeType = "update"
	ChangeDelete ChangeType = "delete"
	// ChangeReload means another process wrote to the database; the table is
	// unknown and consumers should reload everything.
	ChangeReload ChangeType = "reload"
)

// Change is delivered to subscribers after a successful write. Row holds the
// written record (Tag, Task or Session value) for inserts and updates; it is
// nil for deletes and reloads.
type Change struct {
	Table Table
	Type  ChangeType
	ID    string
	Row   any
}

const subscriberBuffer = 64

type subscriber struct {
	ch     chan Change
	tables map[Table]bool
}

type feed struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
}

func newFeed() *feed {
	return &feed{subs: make(map[int]*subscriber)}
}

func (f *feed) subscribe(tables []Table) (<-chan Change, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := &subscriber{ch: make(chan Change, subscriberBuffer)}
	if len(tables) > 0 {
		sub.tables = make(map[Table]bool, len(tables))
		for _, t := range tables {
			sub.tables[t] = true
		}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if s, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(s.ch)
			}
		})
	}
	return sub.ch, cancel
}

// publish never blocks a writer; a subscriber with a full buffer misses the
// event.
func (f *feed) publish(c Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.tables != nil && c.Type != ChangeReload && !s.tables[c.Table] {
			continue
		}
		select {
		case s.ch <- c:
		default:
		}
	}
}

func (f *feed) closeAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, s := range f.subs {
		close(s.ch)
		delete(f.subs, id)
	}
}

// Subscribe returns a channel of changes for the given tables (all tables
// when none are given) and a cancel func that closes it.
func (s *Store) Subscribe(tables ...Table) (<-chan Change, func()) {
	return s.feed.subscribe(tables)
}

// Watch polls SQLite's data_version until ctx is done and publishes a reload
// change whenever another connection has committed to the database file.
func (s *Store) Watch(ctx context.Context, interval time.Duration) error {
	last, err := s.dataVersion(ctx)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			v, err := s.dataVersion(ctx)
			if err != nil {
				return err
			}
			if v != last {
				last = v
				s.feed.publish(Change{Type: ChangeReload})
			}
		}
	}
}

func (s *Store) dataVersion(ctx context.Context) (int64, error) {
	var v int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, err
	}
	return v, nil
}
