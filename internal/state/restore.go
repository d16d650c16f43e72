package state

import (
	"github.com/jonathan/cv-wizard/internal/types"
)

// Scope selects a partition for ResetPartial.
type Scope string

// Reset scopes.
const (
	ScopePersonal    Scope = "personal"
	ScopeExperiences Scope = "experiences"
)

// RestoreResult is what the UI has to replay after Restore: form fields,
// entry units per collection, the template selection and the photo preview.
type RestoreResult struct {
	Restored        bool                               `json:"restored"`
	Step            types.Step                         `json:"step"`
	PersonalDetails types.PersonalDetails              `json:"personalDetails"`
	Texts           types.Texts                        `json:"texts"`
	Entries         map[types.Collection][]types.Entry `json:"entries"`
	Template        types.TemplateID                   `json:"template"`
	PhotoData       string                             `json:"photoData,omitempty"`
}

func newRestoreResult(restored bool, st types.AppState) *RestoreResult {
	st = st.Clone()
	res := &RestoreResult{
		Restored:        restored,
		Step:            st.CurrentStep,
		PersonalDetails: st.PersonalDetails,
		Texts:           st.Experiences.Texts(),
		Entries:         make(map[types.Collection][]types.Entry, len(types.Collections)),
		Template:        st.SelectedTemplate,
		PhotoData:       st.PhotoData,
	}
	for _, c := range types.Collections {
		res.Entries[c] = st.Experiences.Records(c)
	}
	return res
}
