package types

import (
	"fmt"
	"slices"
)

// ExperienceState holds everything collected in step 2.
type ExperienceState struct {
	ResumeObjective      string           `json:"resumeObjective"`
	ObjectiveDescription string           `json:"objectiveDescription"`
	Education            []EducationEntry `json:"education"`
	Work                 []WorkEntry      `json:"work"`
	Interests            []InterestEntry  `json:"interests"`
	References           []ReferenceEntry `json:"references"`
	Skills               []SkillEntry     `json:"skills"`
	Languages            []LanguageEntry  `json:"languages"`
	Achievements         string           `json:"achievements"`
	Publications         string           `json:"publications"`
	Extras               []ExtraEntry     `json:"extras"`
	ReferencesOnRequest  bool             `json:"referencesOnRequest"`
}

// Texts is the free-text part of step 2 submitted by the "next" action.
type Texts struct {
	ResumeObjective      string `json:"resumeObjective"`
	ObjectiveDescription string `json:"objectiveDescription"`
	Achievements         string `json:"achievements"`
	Publications         string `json:"publications"`
	ReferencesOnRequest  bool   `json:"referencesOnRequest"`
}

// NewExperienceState returns an empty state with non-nil collections so the
// snapshot always encodes them as arrays.
func NewExperienceState() ExperienceState {
	var e ExperienceState
	e.normalize()
	return e
}

func (e *ExperienceState) normalize() {
	if e.Education == nil {
		e.Education = []EducationEntry{}
	}
	if e.Work == nil {
		e.Work = []WorkEntry{}
	}
	if e.Interests == nil {
		e.Interests = []InterestEntry{}
	}
	if e.References == nil {
		e.References = []ReferenceEntry{}
	}
	if e.Skills == nil {
		e.Skills = []SkillEntry{}
	}
	if e.Languages == nil {
		e.Languages = []LanguageEntry{}
	}
	if e.Extras == nil {
		e.Extras = []ExtraEntry{}
	}
}

// Clone returns a deep copy.
func (e ExperienceState) Clone() ExperienceState {
	out := e
	out.Education = slices.Clone(e.Education)
	out.Work = slices.Clone(e.Work)
	out.Interests = slices.Clone(e.Interests)
	out.References = slices.Clone(e.References)
	out.Skills = slices.Clone(e.Skills)
	out.Languages = slices.Clone(e.Languages)
	out.Extras = slices.Clone(e.Extras)
	out.normalize()
	return out
}

// ApplyTexts copies the free-text blocks and the references flag.
func (e *ExperienceState) ApplyTexts(t Texts) {
	e.ResumeObjective = t.ResumeObjective
	e.ObjectiveDescription = t.ObjectiveDescription
	e.Achievements = t.Achievements
	e.Publications = t.Publications
	e.ReferencesOnRequest = t.ReferencesOnRequest
}

// Texts returns the current free-text blocks.
func (e *ExperienceState) Texts() Texts {
	return Texts{
		ResumeObjective:      e.ResumeObjective,
		ObjectiveDescription: e.ObjectiveDescription,
		Achievements:         e.Achievements,
		Publications:         e.Publications,
		ReferencesOnRequest:  e.ReferencesOnRequest,
	}
}

// Upsert replaces the record with the same id in collection c, or appends it
// when no record has that id.
func (e *ExperienceState) Upsert(c Collection, rec Entry) error {
	var ok bool
	switch c {
	case CollectionEducation:
		e.Education, ok = upsertAs(e.Education, rec)
	case CollectionWork:
		e.Work, ok = upsertAs(e.Work, rec)
	case CollectionInterests:
		e.Interests, ok = upsertAs(e.Interests, rec)
	case CollectionReferences:
		e.References, ok = upsertAs(e.References, rec)
	case CollectionSkills:
		e.Skills, ok = upsertAs(e.Skills, rec)
	case CollectionLanguages:
		e.Languages, ok = upsertAs(e.Languages, rec)
	case CollectionExtras:
		e.Extras, ok = upsertAs(e.Extras, rec)
	default:
		return fmt.Errorf("unknown collection: %q", c)
	}
	if !ok {
		return fmt.Errorf("record of type %T does not belong to collection %q", rec, c)
	}
	return nil
}

// Remove deletes the record with the given id from collection c and reports
// whether one was found.
func (e *ExperienceState) Remove(c Collection, id string) (bool, error) {
	var removed bool
	switch c {
	case CollectionEducation:
		e.Education, removed = removeByID(e.Education, id)
	case CollectionWork:
		e.Work, removed = removeByID(e.Work, id)
	case CollectionInterests:
		e.Interests, removed = removeByID(e.Interests, id)
	case CollectionReferences:
		e.References, removed = removeByID(e.References, id)
	case CollectionSkills:
		e.Skills, removed = removeByID(e.Skills, id)
	case CollectionLanguages:
		e.Languages, removed = removeByID(e.Languages, id)
	case CollectionExtras:
		e.Extras, removed = removeByID(e.Extras, id)
	default:
		return false, fmt.Errorf("unknown collection: %q", c)
	}
	return removed, nil
}

// Records returns the records of collection c in insertion order.
func (e *ExperienceState) Records(c Collection) []Entry {
	switch c {
	case CollectionEducation:
		return asEntries(e.Education)
	case CollectionWork:
		return asEntries(e.Work)
	case CollectionInterests:
		return asEntries(e.Interests)
	case CollectionReferences:
		return asEntries(e.References)
	case CollectionSkills:
		return asEntries(e.Skills)
	case CollectionLanguages:
		return asEntries(e.Languages)
	case CollectionExtras:
		return asEntries(e.Extras)
	default:
		return nil
	}
}

func upsertAs[T Entry](list []T, rec Entry) ([]T, bool) {
	typed, ok := rec.(T)
	if !ok {
		return list, false
	}
	for i := range list {
		if list[i].EntryID() == typed.EntryID() {
			list[i] = typed
			return list, true
		}
	}
	return append(list, typed), true
}

func removeByID[T Entry](list []T, id string) ([]T, bool) {
	idx := slices.IndexFunc(list, func(rec T) bool { return rec.EntryID() == id })
	if idx < 0 {
		return list, false
	}
	return slices.Delete(list, idx, idx+1), true
}

func asEntries[T Entry](list []T) []Entry {
	out := make([]Entry, len(list))
	for i, rec := range list {
		out[i] = rec
	}
	return out
}
