// Package entries manages the visible, independently editable units of the
// repeatable step 2 collections and funnels their save and delete actions
// into the state store.
package entries

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jonathan/cv-wizard/internal/state"
	"github.com/jonathan/cv-wizard/internal/types"
)

// SavedConfirmation is how long a unit reports the "saved" confirmation after
// a save.
const SavedConfirmation = 2 * time.Second

// Unit is one editable entry as the UI shows it.
type Unit struct {
	ID         string            `json:"id"`
	Collection types.Collection  `json:"collection"`
	Type       types.ExtraType   `json:"type,omitempty"`
	Fields     map[string]string `json:"fields"`
	Saved      bool              `json:"saved"`
	SavedAt    time.Time         `json:"savedAt,omitzero"`
}

// Confirming reports whether the transient "saved" confirmation is still
// showing at now.
func (u Unit) Confirming(now time.Time) bool {
	if u.SavedAt.IsZero() {
		return false
	}
	return now.Sub(u.SavedAt) < SavedConfirmation
}

func (u *Unit) clone() Unit {
	out := *u
	out.Fields = maps.Clone(u.Fields)
	return out
}

// Manager holds the visible units of every collection of one session.
type Manager struct {
	mu    sync.Mutex
	store *state.Store
	ids   *IDGenerator
	now   func() time.Time
	units map[types.Collection][]*Unit
}

// NewManager returns a Manager writing to store. A nil ids uses a generator
// on the wall clock.
func NewManager(store *state.Store, ids *IDGenerator) *Manager {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	return &Manager{
		store: store,
		ids:   ids,
		now:   time.Now,
		units: make(map[types.Collection][]*Unit, len(types.Collections)),
	}
}

// AddEntry appends a blank unit with a fresh id. The store is not touched
// until the unit is saved. extraType is required for extras and ignored
// otherwise.
func (m *Manager) AddEntry(c types.Collection, extraType types.ExtraType) (Unit, error) {
	if _, err := types.ParseCollection(string(c)); err != nil {
		return Unit{}, err
	}
	if c == types.CollectionExtras && extraType == "" {
		return Unit{}, ErrMissingExtraType
	}
	if c != types.CollectionExtras {
		extraType = ""
	}

	u := &Unit{
		ID:         m.ids.Next(),
		Collection: c,
		Type:       extraType,
		Fields:     blankFields(c),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[c] = append(m.units[c], u)
	return u.clone(), nil
}

// SaveEntry binds fields to the unit, builds its record and upserts it into
// the store by id. Only the collection's own field names are read; missing
// ones are stored as empty strings.
func (m *Manager) SaveEntry(ctx context.Context, c types.Collection, id string, fields map[string]string) (Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.find(c, id)
	if u == nil {
		return Unit{}, &UnitNotFoundError{Collection: c, ID: id}
	}

	bound := blankFields(c)
	for name := range bound {
		bound[name] = fields[name]
	}
	recFields := maps.Clone(bound)
	if c == types.CollectionExtras {
		recFields["type"] = string(u.Type)
	}
	rec, err := types.NewEntry(c, id, recFields)
	if err != nil {
		return Unit{}, err
	}

	u.Fields = bound
	if err := m.store.UpsertEntry(ctx, c, rec); err != nil {
		return u.clone(), err
	}
	u.Saved = true
	u.SavedAt = m.now()
	return u.clone(), nil
}

// DeleteEntry removes the record and the unit. There is no confirmation step.
// It reports whether a stored record was removed.
func (m *Manager) DeleteEntry(ctx context.Context, c types.Collection, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.units[c] = slices.DeleteFunc(m.units[c], func(u *Unit) bool { return u.ID == id })
	return m.store.DeleteEntry(ctx, c, id)
}

// RestoreEntries rebuilds the units of c from the store's current records,
// in stored order and with the stored ids. Units that were never saved are
// dropped.
func (m *Manager) RestoreEntries(c types.Collection) []Unit {
	st := m.store.Snapshot()
	records := st.Experiences.Records(c)

	m.mu.Lock()
	defer m.mu.Unlock()

	units := make([]*Unit, 0, len(records))
	for _, rec := range records {
		u := &Unit{
			ID:         rec.EntryID(),
			Collection: c,
			Fields:     blankFields(c),
			Saved:      true,
		}
		recFields := rec.Fields()
		for name := range u.Fields {
			u.Fields[name] = recFields[name]
		}
		if extra, ok := rec.(types.ExtraEntry); ok {
			u.Type = extra.Type
		}
		m.ids.Observe(u.ID)
		units = append(units, u)
	}
	m.units[c] = units
	return cloneUnits(units)
}

// RestoreAll runs RestoreEntries for every collection.
func (m *Manager) RestoreAll() map[types.Collection][]Unit {
	out := make(map[types.Collection][]Unit, len(types.Collections))
	for _, c := range types.Collections {
		out[c] = m.RestoreEntries(c)
	}
	return out
}

// Clear drops every visible unit, as after a reset.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.units)
}

// Units lists the visible units of c in order.
func (m *Manager) Units(c types.Collection) []Unit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneUnits(m.units[c])
}

func (m *Manager) find(c types.Collection, id string) *Unit {
	for _, u := range m.units[c] {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func blankFields(c types.Collection) map[string]string {
	names := types.FieldNames(c)
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = ""
	}
	return out
}

func cloneUnits(units []*Unit) []Unit {
	out := make([]Unit, len(units))
	for i, u := range units {
		out[i] = u.clone()
	}
	return out
}
