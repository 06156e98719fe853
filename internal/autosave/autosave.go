// Package autosave implements the draft cache and autosave scheduler: an
// in-process staging area that buffers the latest edit per (user, document),
// throttles persistence to at most one commit per interval, detects
// conflicting concurrent writes at persist time, and exposes explicit
// conflict-resolution strategies.
//
// The cache is best-effort and never authoritative: the document repository
// remains the source of truth, and entries may be evicted at any time.
package autosave

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/content"
	"inkwell/internal/models"
)

// State names the lifecycle phase of a draft cache entry.
type State string

const (
	StateEmpty    State = "empty"    // no buffered edit for this key
	StatePending  State = "pending"  // edit buffered, not yet persisted
	StateSaved    State = "saved"    // buffer matches the store
	StateConflict State = "conflict" // store changed behind the buffer; awaiting resolution
)

// Resolution strategies accepted by Resolve.
const (
	KeepLocal  = "keep_local"
	KeepRemote = "keep_remote"
	Merge      = "merge"
)

// Defaults applied by NewScheduler when the config leaves fields zero.
const (
	DefaultInterval    = 30 * time.Second
	DefaultMaxVersions = 50
	DefaultMaxIdle     = 24 * time.Hour
)

// Key identifies a draft buffer. Distinct users editing the same document
// hold distinct buffers.
type Key struct {
	UserID     uuid.UUID
	DocumentID uuid.UUID
}

// Conflict records both sides of a detected divergence so the caller can
// present a resolution choice. Nothing is persisted while it stands.
type Conflict struct {
	DetectedAt  time.Time `json:"detected_at"`
	RemoteTitle string    `json:"remote_title"`
	RemoteBody  string    `json:"remote_body"`
	LocalTitle  string    `json:"local_title"`
	LocalBody   string    `json:"local_body"`
}

// Status is a point-in-time, read-only view of a draft buffer.
type Status struct {
	State                State      `json:"state"`
	LastModified         *time.Time `json:"last_modified,omitempty"`
	LastSaved            *time.Time `json:"last_saved,omitempty"`
	SecondsUntilNextSave int        `json:"seconds_until_next_save"`
	Conflict             *Conflict  `json:"conflict,omitempty"`
}

// Persister is the slice of the document repository the scheduler needs.
// *content.Service satisfies it; tests substitute an in-memory fake.
type Persister interface {
	Get(ctx context.Context, id, ownerID uuid.UUID) (*models.Document, error)
	Update(ctx context.Context, id, ownerID uuid.UUID, p content.Patch, changeSummary string) (*models.Document, error)
	PruneVersions(documentID uuid.UUID, keepLatest int) (int64, error)
}

// entry is the mutable per-key draft buffer. mu guards the buffered state
// and must only be held briefly; saveMu serializes persistence (and
// eviction) for the key and may be held across store I/O.
type entry struct {
	mu     sync.Mutex
	saveMu sync.Mutex

	title        string
	body         string
	lastModified time.Time // server clock at the latest buffered edit
	lastSaved    time.Time // zero until the first confirmed persist
	lastAttempt  time.Time // last time a persist was kicked off
	pending      bool
	state        State
	conflict     *Conflict
	timerArmed   bool // a trailing persist is scheduled for this throttle window
	evicted      bool // entry was removed from the map; do not reuse
}

// Config tunes a Scheduler. Zero fields fall back to the defaults.
type Config struct {
	Interval    time.Duration // minimum spacing between persist attempts per key
	MaxVersions int           // retention cap applied after autosave commits
	MaxIdle     time.Duration // idle age at which entries are evicted
}

// Scheduler is the draft cache plus its autosave machinery. Construct it
// explicitly and share one instance per process; it holds no global state.
type Scheduler struct {
	persister   Persister
	interval    time.Duration
	maxVersions int
	maxIdle     time.Duration
	now         func() time.Time // injected clock; all timestamps are server-assigned

	mu      sync.Mutex
	entries map[Key]*entry
}

// NewScheduler creates a scheduler persisting through p.
func NewScheduler(p Persister, cfg Config) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxVersions < 1 {
		cfg.MaxVersions = DefaultMaxVersions
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = DefaultMaxIdle
	}
	return &Scheduler{
		persister:   p,
		interval:    cfg.Interval,
		maxVersions: cfg.MaxVersions,
		maxIdle:     cfg.MaxIdle,
		now:         time.Now,
		entries:     make(map[Key]*entry),
	}
}

// Schedule buffers an edit and marks it pending. The buffer is overwritten
// unconditionally (last write wins). If no persist has been attempted for
// this key within the interval, an asynchronous persist starts immediately;
// otherwise a trailing persist is armed for the remainder of the window, so
// a burst of edits commits exactly once, carrying the final buffer.
//
// Schedule never blocks on I/O.
func (s *Scheduler) Schedule(key Key, title, body string) Status {
	now := s.now()
	e := s.entry(key)

	e.mu.Lock()
	e.title = title
	e.body = body
	e.lastModified = now
	e.pending = true
	e.state = StatePending
	// A buffered conflict described a superseded edit; the fresh buffer
	// goes back through normal conflict detection.
	e.conflict = nil

	fireNow := false
	var delay time.Duration
	switch {
	case e.lastAttempt.IsZero() || now.Sub(e.lastAttempt) >= s.interval:
		e.lastAttempt = now
		fireNow = true
	case !e.timerArmed:
		e.timerArmed = true
		delay = s.interval - now.Sub(e.lastAttempt)
	}
	st := e.statusLocked(now, s.interval)
	e.mu.Unlock()

	if fireNow {
		go s.persist(key)
	} else if delay > 0 {
		time.AfterFunc(delay, func() { s.persist(key) })
	}
	return st
}

// ForceSave bypasses the interval throttle and attempts a persist
// synchronously. A key with no buffered edit reports StateEmpty rather
// than erroring.
func (s *Scheduler) ForceSave(key Key) Status {
	if s.lookup(key) == nil {
		return Status{State: StateEmpty}
	}
	s.persist(key)
	return s.Status(key)
}

// Status returns the current view of a draft buffer. It never mutates state.
func (s *Scheduler) Status(key Key) Status {
	e := s.lookup(key)
	if e == nil {
		return Status{State: StateEmpty}
	}
	now := s.now()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked(now, s.interval)
}

// Resolve applies a conflict-resolution strategy to a key. KeepLocal
// re-stamps the buffer with the current server time and retries the
// persist, overriding the remote change. KeepRemote discards the buffer in
// favor of the stored content and marks the entry saved. Merge replaces the
// buffered body with mergedBody and retries. Any other resolution is a
// validation error.
func (s *Scheduler) Resolve(ctx context.Context, key Key, resolution, mergedBody string) (Status, error) {
	e := s.lookup(key)
	if e == nil {
		return Status{State: StateEmpty}, content.ErrNotFound
	}

	switch resolution {
	case KeepLocal:
		now := s.now()
		e.mu.Lock()
		e.lastModified = now // re-stamp so the remote write no longer reads as newer
		e.pending = true
		e.state = StatePending
		e.conflict = nil
		e.mu.Unlock()
		s.persist(key)
		return s.Status(key), nil

	case KeepRemote:
		doc, err := s.persister.Get(ctx, key.DocumentID, key.UserID)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				s.remove(key, e)
				return Status{State: StateEmpty}, content.ErrNotFound
			}
			return s.Status(key), err
		}
		now := s.now()
		e.mu.Lock()
		e.title = doc.Title
		e.body = doc.Body
		e.lastModified = now
		e.lastSaved = now
		e.pending = false
		e.state = StateSaved
		e.conflict = nil
		e.mu.Unlock()
		return s.Status(key), nil

	case Merge:
		if mergedBody == "" {
			return s.Status(key), &content.ValidationError{Field: "merged_body", Reason: "required for merge resolution"}
		}
		now := s.now()
		e.mu.Lock()
		e.body = mergedBody
		e.lastModified = now
		e.pending = true
		e.state = StatePending
		e.conflict = nil
		e.mu.Unlock()
		s.persist(key)
		return s.Status(key), nil

	default:
		return s.Status(key), &content.ValidationError{Field: "resolution", Reason: "must be keep_local, keep_remote, or merge"}
	}
}

// persist is the single-flight save step for one key. It loads the stored
// document, detects no-ops and conflicts, and otherwise commits the buffer
// through the repository. Store failures leave the entry pending so a later
// attempt retries; the interactive caller never sees a persist failure.
func (s *Scheduler) persist(key Key) {
	e := s.lookup(key)
	if e == nil {
		return
	}
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	e.timerArmed = false
	if !e.pending || e.state == StateConflict {
		e.mu.Unlock()
		return
	}
	title, body, snapshot := e.title, e.body, e.lastModified
	e.lastAttempt = s.now()
	e.mu.Unlock()

	ctx := context.Background()
	doc, err := s.persister.Get(ctx, key.DocumentID, key.UserID)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			// The document is gone; the buffer has nothing to attach to.
			s.remove(key, e)
			return
		}
		slog.Warn("autosave load failed", "document_id", key.DocumentID, "error", err)
		return
	}

	// Byte-identical buffer: confirm saved without touching the store, so
	// no-op autosaves never create spurious versions.
	if doc.Title == title && doc.Body == body {
		e.mu.Lock()
		if e.lastModified.Equal(snapshot) {
			e.pending = false
			e.state = StateSaved
			e.lastSaved = s.now()
		}
		e.mu.Unlock()
		return
	}

	// Another writer committed after this buffer snapshot was taken:
	// suspend, record both sides, persist nothing.
	if doc.UpdatedAt.After(snapshot) {
		e.mu.Lock()
		if e.lastModified.Equal(snapshot) {
			e.state = StateConflict
			e.conflict = &Conflict{
				DetectedAt:  s.now(),
				RemoteTitle: doc.Title,
				RemoteBody:  doc.Body,
				LocalTitle:  title,
				LocalBody:   body,
			}
			slog.Info("autosave conflict detected",
				"document_id", key.DocumentID,
				"user_id", key.UserID,
			)
		}
		e.mu.Unlock()
		return
	}

	if _, err := s.persister.Update(ctx, key.DocumentID, key.UserID,
		content.Patch{Title: &title, Body: &body}, "Auto-saved"); err != nil {
		slog.Warn("autosave persist failed", "document_id", key.DocumentID, "error", err)
		return
	}

	e.mu.Lock()
	e.lastSaved = s.now()
	// A newer edit may have landed while we were writing; only clear
	// pending if the buffer is still the one we persisted.
	if e.lastModified.Equal(snapshot) {
		e.pending = false
		e.state = StateSaved
	}
	e.mu.Unlock()

	if _, err := s.persister.PruneVersions(key.DocumentID, s.maxVersions); err != nil {
		slog.Warn("version prune failed", "document_id", key.DocumentID, "error", err)
	}
}

// EvictIdle removes entries whose last edit predates the idle cutoff,
// regardless of save state — this cache is not a durability guarantee.
// It takes each entry's save lock so it never evicts mid-persist. Returns
// the number of entries removed.
func (s *Scheduler) EvictIdle() int {
	cutoff := s.now().Add(-s.maxIdle)

	s.mu.Lock()
	snapshot := make(map[Key]*entry, len(s.entries))
	for k, e := range s.entries {
		snapshot[k] = e
	}
	s.mu.Unlock()

	evicted := 0
	for key, e := range snapshot {
		e.saveMu.Lock()
		e.mu.Lock()
		if e.lastModified.Before(cutoff) {
			e.mu.Unlock()
			e.saveMu.Unlock()
			s.remove(key, e)
			evicted++
			continue
		}
		e.mu.Unlock()
		e.saveMu.Unlock()
	}

	if evicted > 0 {
		slog.Info("draft cache swept", "evicted", evicted)
	}
	return evicted
}

// RunSweeper periodically evicts idle entries until ctx is cancelled.
// Intended to run as a background goroutine owned by the server process.
func (s *Scheduler) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.EvictIdle()
		}
	}
}

// entry returns the live entry for key, creating it if needed. It loops in
// case a concurrent sweep evicts the entry between creation and use.
func (s *Scheduler) entry(key Key) *entry {
	for {
		s.mu.Lock()
		e, ok := s.entries[key]
		if !ok {
			e = &entry{state: StateEmpty}
			s.entries[key] = e
		}
		s.mu.Unlock()

		e.mu.Lock()
		alive := !e.evicted
		e.mu.Unlock()
		if alive {
			return e
		}
	}
}

// lookup returns the entry for key or nil.
func (s *Scheduler) lookup(key Key) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key]
}

// remove drops an entry from the map, tolerating the case where a newer
// entry has already replaced it.
func (s *Scheduler) remove(key Key, e *entry) {
	e.mu.Lock()
	e.evicted = true
	e.mu.Unlock()

	s.mu.Lock()
	if s.entries[key] == e {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

// statusLocked builds a Status. Caller holds e.mu.
func (e *entry) statusLocked(now time.Time, interval time.Duration) Status {
	st := Status{State: e.state}
	if !e.lastModified.IsZero() {
		t := e.lastModified
		st.LastModified = &t
	}
	if !e.lastSaved.IsZero() {
		t := e.lastSaved
		st.LastSaved = &t
	}
	if e.conflict != nil {
		c := *e.conflict
		st.Conflict = &c
	}
	if !e.lastAttempt.IsZero() {
		if remaining := interval - now.Sub(e.lastAttempt); remaining > 0 {
			st.SecondsUntilNextSave = int(remaining.Round(time.Second) / time.Second)
		}
	}
	return st
}
