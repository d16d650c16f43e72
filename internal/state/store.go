// Package state owns the authoritative AppState of one wizard session and its snapshot persistence.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/jonathan/cv-wizard/internal/schemas"
	"github.com/jonathan/cv-wizard/internal/storage"
	"github.com/jonathan/cv-wizard/internal/types"
)

// Store holds one AppState. Every exported mutation persists the whole
// state before returning, so persist is the single write path to storage.
type Store struct {
	mu      sync.Mutex
	key     string
	storage storage.Storage
	state   types.AppState

	discarded bool
	photo     photoReads
}

// New creates a Store bound to one snapshot key. The state starts at the
// defaults; call Start or Restore before use.
func New(s storage.Storage, key string) *Store {
	return &Store{
		key:     key,
		storage: s,
		state:   types.NewAppState(),
	}
}

// Key returns the snapshot key the store persists to.
func (s *Store) Key() string {
	return s.key
}

// Start is a fresh application start: any prior snapshot under the key is
// erased and the state is reset to defaults.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(ctx, s.key); err != nil {
		return &PersistError{Op: "clear", Key: s.key, Cause: err}
	}
	s.state = types.NewAppState()
	return s.persistLocked(ctx)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() types.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Restore loads the persisted snapshot, if any, and shallow-merges its
// top-level fields onto the default state. The result tells the caller what
// to replay into the UI.
func (s *Store) Restore(ctx context.Context) (*RestoreResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, found, err := s.storage.Load(ctx, s.key)
	if err != nil {
		return nil, &PersistError{Op: "load", Key: s.key, Cause: err}
	}
	if !found {
		s.state = types.NewAppState()
		return newRestoreResult(false, s.state), nil
	}

	if err := schemas.ValidateSnapshot(data); err != nil {
		return nil, &SnapshotError{Key: s.key, Cause: err}
	}
	merged, err := mergeSnapshot(types.NewAppState(), data)
	if err != nil {
		return nil, &SnapshotError{Key: s.key, Cause: err}
	}
	s.state = merged
	return newRestoreResult(true, s.state), nil
}

// Change is one edit of the state. Several changes passed to Apply are
// committed and persisted together.
type Change func(*types.AppState) error

// Apply runs changes in order on a copy of the state. The copy replaces the
// state and is persisted only when every change succeeds.
func (s *Store) Apply(ctx context.Context, changes ...Change) error {
	return s.mutate(ctx, func(st *types.AppState) error {
		for _, change := range changes {
			if err := change(st); err != nil {
				return err
			}
		}
		return nil
	})
}

// WithPersonalDetails replaces the personal details partition.
func WithPersonalDetails(details types.PersonalDetails) Change {
	return func(st *types.AppState) error {
		st.PersonalDetails = types.PersonalDetails{}
		for k, v := range details {
			st.PersonalDetails[k] = v
		}
		return nil
	}
}

// WithTexts stores the free-text blocks and the references flag.
func WithTexts(t types.Texts) Change {
	return func(st *types.AppState) error {
		st.Experiences.ApplyTexts(t)
		return nil
	}
}

// WithStep records the step navigated to.
func WithStep(step types.Step) Change {
	return func(st *types.AppState) error {
		if !step.Valid() {
			return fmt.Errorf("invalid step %d", step)
		}
		st.CurrentStep = step
		return nil
	}
}

// UpsertEntry replaces the record with the same id in collection c or
// appends it.
func (s *Store) UpsertEntry(ctx context.Context, c types.Collection, rec types.Entry) error {
	return s.mutate(ctx, func(st *types.AppState) error {
		return st.Experiences.Upsert(c, rec)
	})
}

// DeleteEntry removes the record with the given id from collection c and
// reports whether one existed. The state is persisted either way.
func (s *Store) DeleteEntry(ctx context.Context, c types.Collection, id string) (bool, error) {
	var removed bool
	err := s.mutate(ctx, func(st *types.AppState) error {
		var err error
		removed, err = st.Experiences.Remove(c, id)
		return err
	})
	return removed, err
}

// SetReferencesOnRequest toggles the "available on request" notice.
func (s *Store) SetReferencesOnRequest(ctx context.Context, on bool) error {
	return s.mutate(ctx, func(st *types.AppState) error {
		st.Experiences.ReferencesOnRequest = on
		return nil
	})
}

// SetStep records the step navigated to.
func (s *Store) SetStep(ctx context.Context, step types.Step) error {
	return s.Apply(ctx, WithStep(step))
}

// SelectTemplate records the chosen template.
func (s *Store) SelectTemplate(ctx context.Context, id types.TemplateID) error {
	return s.mutate(ctx, func(st *types.AppState) error {
		st.SelectedTemplate = id
		return nil
	})
}

// SetPhoto replaces the photo payload. The last write wins.
func (s *Store) SetPhoto(ctx context.Context, dataURL string) error {
	return s.mutate(ctx, func(st *types.AppState) error {
		st.PhotoData = dataURL
		return nil
	})
}

// ClearPhoto removes the photo payload.
func (s *Store) ClearPhoto(ctx context.Context) error {
	return s.SetPhoto(ctx, "")
}

// Discard closes the store and then runs ResetAll. Later mutations,
// including photo reads still in flight, fail with ErrDiscarded and never
// write the key again.
func (s *Store) Discard(ctx context.Context) error {
	s.mu.Lock()
	s.discarded = true
	s.mu.Unlock()
	return s.ResetAll(ctx)
}

// ResetPartial clears one partition back to its defaults and keeps the other.
func (s *Store) ResetPartial(ctx context.Context, scope Scope) error {
	return s.mutate(ctx, func(st *types.AppState) error {
		switch scope {
		case ScopePersonal:
			st.PersonalDetails = types.PersonalDetails{}
			st.PhotoData = ""
		case ScopeExperiences:
			st.Experiences = types.NewExperienceState()
		default:
			return &ScopeError{Scope: string(scope)}
		}
		return nil
	})
}

// ResetAll erases the snapshot and returns the store to the initial state.
// Nothing is persisted afterwards until the next mutation.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = types.NewAppState()
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return &PersistError{Op: "clear", Key: s.key, Cause: err}
	}
	return nil
}

func (s *Store) mutate(ctx context.Context, fn func(*types.AppState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.discarded {
		return ErrDiscarded
	}
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	data, err := s.encode(next)
	if err != nil {
		return err
	}
	s.state = next
	return s.saveLocked(ctx, data)
}

func (s *Store) persistLocked(ctx context.Context) error {
	data, err := s.encode(s.state)
	if err != nil {
		return err
	}
	return s.saveLocked(ctx, data)
}

// encode serializes st and checks it against the snapshot schema, so that
// nothing is written that Restore would refuse.
func (s *Store) encode(st types.AppState) ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, &PersistError{Op: "encode", Key: s.key, Cause: err}
	}
	if err := schemas.ValidateSnapshot(data); err != nil {
		return nil, &SnapshotError{Key: s.key, Cause: err}
	}
	return data, nil
}

func (s *Store) saveLocked(ctx context.Context, data []byte) error {
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		log.Printf("[STORE] failed to persist snapshot %s: %v", s.key, err)
		return &PersistError{Op: "save", Key: s.key, Cause: err}
	}
	return nil
}

// mergeSnapshot overwrites each top-level field of base that is present in
// data. Nested objects are replaced, not merged.
func mergeSnapshot(base types.AppState, data []byte) (types.AppState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return base, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	out := base
	for name, raw := range fields {
		var err error
		switch name {
		case "currentStep":
			err = json.Unmarshal(raw, &out.CurrentStep)
		case "personalDetails":
			var pd types.PersonalDetails
			err = json.Unmarshal(raw, &pd)
			out.PersonalDetails = pd
		case "experiences":
			var e types.ExperienceState
			err = json.Unmarshal(raw, &e)
			out.Experiences = e
		case "selectedTemplate":
			var id *string
			err = json.Unmarshal(raw, &id)
			out.SelectedTemplate = ""
			if id != nil {
				out.SelectedTemplate = types.TemplateID(*id)
			}
		case "photoData":
			var photo *string
			err = json.Unmarshal(raw, &photo)
			out.PhotoData = ""
			if photo != nil {
				out.PhotoData = *photo
			}
		}
		if err != nil {
			return base, fmt.Errorf("failed to decode snapshot field %s: %w", name, err)
		}
	}
	out.Normalize()
	return out, nil
}
