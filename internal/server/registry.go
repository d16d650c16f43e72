package server

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/cv-wizard/internal/entries"
	"github.com/jonathan/cv-wizard/internal/export"
	"github.com/jonathan/cv-wizard/internal/photo"
	"github.com/jonathan/cv-wizard/internal/rendering"
	"github.com/jonathan/cv-wizard/internal/state"
	"github.com/jonathan/cv-wizard/internal/storage"
	"github.com/jonathan/cv-wizard/internal/wizard"
)

// Session is one wizard with its own state, entry units and export guard.
type Session struct {
	ID      uuid.UUID
	Store   *state.Store
	Entries *entries.Manager
	Wizard  *wizard.Controller
	Photos  *photo.Loader
	Exports *export.Pipeline

	mu       sync.Mutex
	lastSeen time.Time
	artifact *Artifact
}

// Artifact is a finished export kept for download after a streamed export.
type Artifact struct {
	ID        uuid.UUID
	File      *export.File
	CreatedAt time.Time
}

// keep stores file as the session's latest artifact, replacing any previous one.
func (s *Session) keep(file *export.File) *Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifact = &Artifact{ID: uuid.New(), File: file, CreatedAt: time.Now()}
	return s.artifact
}

// Artifact returns the latest artifact if its ID matches.
func (s *Session) Artifact(id uuid.UUID) (*Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.artifact == nil || s.artifact.ID != id {
		return nil, false
	}
	return s.artifact, true
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen.Before(cutoff)
}

// SessionDeps are the collaborators shared by every session.
type SessionDeps struct {
	Renderer      *rendering.Renderer
	Rasterizer    export.Rasterizer
	Assembler     export.Assembler
	Export        export.Options
	MaxPhotoBytes int64
	Verbose       bool
}

// Registry maps session IDs to live sessions. Sessions evicted from memory
// are rebuilt from their stored snapshot on the next request.
type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	storage  storage.Storage
	deps     SessionDeps
	now      func() time.Time
}

// NewRegistry creates a registry persisting through st.
func NewRegistry(st storage.Storage, deps SessionDeps) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		storage:  st,
		deps:     deps,
		now:      time.Now,
	}
}

func (r *Registry) build(id uuid.UUID) *Session {
	store := state.New(r.storage, storage.SnapshotKey(id.String()))
	return &Session{
		ID:      id,
		Store:   store,
		Entries: entries.NewManager(store, nil),
		Wizard:  wizard.New(store),
		Photos:  photo.NewLoader(store, r.deps.MaxPhotoBytes, r.deps.Verbose),
		Exports: export.New(store, r.deps.Renderer, r.deps.Rasterizer, r.deps.Assembler, r.deps.Export),
	}
}

// Create starts a fresh session. Any snapshot under the new key is erased.
func (r *Registry) Create(ctx context.Context) (*Session, error) {
	sess := r.build(uuid.New())
	if err := sess.Store.Start(ctx); err != nil {
		return nil, err
	}
	sess.touch(r.now())

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	if r.deps.Verbose {
		log.Printf("[SESSION] created %s", sess.ID)
	}
	return sess, nil
}

// Get returns the live session for id, restoring it from storage when it is
// not in memory. A session with no stored snapshot does not exist.
func (r *Registry) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		sess.touch(r.now())
		return sess, nil
	}

	sess = r.build(id)
	res, err := sess.Store.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if !res.Restored {
		return nil, &ErrSessionNotFound{SessionID: id}
	}
	sess.Entries.RestoreAll()
	sess.touch(r.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	// Another request may have restored it first.
	if existing, ok := r.sessions[id]; ok {
		return existing, nil
	}
	r.sessions[id] = sess
	log.Printf("[SESSION] restored %s from storage", id)
	return sess, nil
}

// Remove erases the session's snapshot and forgets it. The store is
// discarded, so a photo read still running cannot write the snapshot back.
func (r *Registry) Remove(ctx context.Context, id uuid.UUID) error {
	sess, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := sess.Store.Discard(ctx); err != nil {
		return err
	}
	sess.Entries.Clear()

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Evict drops sessions idle since before now-idle from memory. Their
// snapshots stay in storage. Sessions with an export running are kept.
func (r *Registry) Evict(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, sess := range r.sessions {
		if sess.idleSince(cutoff) && !sess.Exports.Busy() && !sess.Store.PhotoReadPending() {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
