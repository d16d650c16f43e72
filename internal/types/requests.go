package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field values are free text. Only lengths and enumerations are checked;
// email, phone and year formats are accepted verbatim.

// SavePersonalDetailsRequest is the step 1 form submission.
type SavePersonalDetailsRequest struct {
	Fields map[string]string `json:"fields" validate:"dive,keys,required,max=64,endkeys,max=4000"`
}

// SaveEntryRequest carries the named inputs of one editable unit.
// Collection comes from the route, not the body.
type SaveEntryRequest struct {
	Collection Collection        `json:"-" validate:"required"`
	Fields     map[string]string `json:"fields" validate:"dive,keys,required,max=64,endkeys,max=8000"`
}

// AddEntryRequest opens a new editable unit. Type is only used by extras.
type AddEntryRequest struct {
	Type ExtraType `json:"type,omitempty" validate:"omitempty,oneof=certifications projects awards volunteer courses"`
}

// SaveTextsRequest is the step 2 "next" submission.
type SaveTextsRequest struct {
	ResumeObjective      string `json:"resumeObjective" validate:"max=500"`
	ObjectiveDescription string `json:"objectiveDescription" validate:"max=8000"`
	Achievements         string `json:"achievements" validate:"max=8000"`
	Publications         string `json:"publications" validate:"max=8000"`
	ReferencesOnRequest  bool   `json:"referencesOnRequest"`
}

// SetReferencesRequest toggles the "available on request" notice.
type SetReferencesRequest struct {
	ReferencesOnRequest *bool `json:"referencesOnRequest" validate:"required"`
}

// SelectTemplateRequest chooses a template in step 3.
type SelectTemplateRequest struct {
	Template TemplateID `json:"template" validate:"required,max=64"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validateSaveEntry, SaveEntryRequest{})
	return v
}

// validateSaveEntry checks a given level against the level set of the
// request's own collection. Collections without levels ignore the field.
func validateSaveEntry(sl validator.StructLevel) {
	req := sl.Current().Interface().(SaveEntryRequest)
	levels := Levels(req.Collection)
	if levels == nil {
		return
	}
	if level := req.Fields["level"]; !ValidLevel(req.Collection, level) {
		sl.ReportError(level, "Fields[level]", "level", "oneof", strings.Join(levels, " "))
	}
}

// Validate validates the SavePersonalDetailsRequest using the validator.
func (r *SavePersonalDetailsRequest) Validate() error {
	return validate.Struct(r)
}

// ValidateFor validates the SaveEntryRequest as a save into collection c.
func (r *SaveEntryRequest) ValidateFor(c Collection) error {
	r.Collection = c
	return validate.Struct(r)
}

// Validate validates the AddEntryRequest using the validator.
func (r *AddEntryRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SaveTextsRequest using the validator.
func (r *SaveTextsRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SetReferencesRequest using the validator.
func (r *SetReferencesRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SelectTemplateRequest using the validator.
func (r *SelectTemplateRequest) Validate() error {
	return validate.Struct(r)
}

// Texts converts the request to the stored free-text blocks.
func (r *SaveTextsRequest) Texts() Texts {
	return Texts{
		ResumeObjective:      r.ResumeObjective,
		ObjectiveDescription: r.ObjectiveDescription,
		Achievements:         r.Achievements,
		Publications:         r.Publications,
		ReferencesOnRequest:  r.ReferencesOnRequest,
	}
}
