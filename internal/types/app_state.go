// Package types provides the data model shared by the wizard, the renderer and the export pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"maps"
)

// Step identifies one of the three wizard steps.
type Step int

const (
	// StepPersonal collects personal details and the photo.
	StepPersonal Step = 1
	// StepExperience collects the entry collections and free-text blocks.
	StepExperience Step = 2
	// StepTemplate selects a template, previews and exports.
	StepTemplate Step = 3
)

// FirstStep and LastStep bound the linear step order.
const (
	FirstStep = StepPersonal
	LastStep  = StepTemplate
)

// Valid reports whether s is one of the three known steps.
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

func (s Step) String() string {
	switch s {
	case StepPersonal:
		return "personal"
	case StepExperience:
		return "experience"
	case StepTemplate:
		return "template"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// AppState is the single aggregate of everything the user entered.
// It is serialized as-is into the session snapshot.
type AppState struct {
	CurrentStep      Step            `json:"currentStep"`
	PersonalDetails  PersonalDetails `json:"personalDetails"`
	Experiences      ExperienceState `json:"experiences"`
	SelectedTemplate TemplateID      `json:"selectedTemplate"`
	PhotoData        string          `json:"photoData"`
}

// NewAppState returns the initial state of a fresh wizard.
func NewAppState() AppState {
	return AppState{
		CurrentStep:     StepPersonal,
		PersonalDetails: PersonalDetails{},
		Experiences:     NewExperienceState(),
	}
}

// HasTemplate reports whether a template has been chosen.
func (s *AppState) HasTemplate() bool {
	return s.SelectedTemplate != ""
}

// HasPhoto reports whether a photo payload is stored.
func (s *AppState) HasPhoto() bool {
	return s.PhotoData != ""
}

// Clone returns a deep copy so readers never observe later mutations.
func (s AppState) Clone() AppState {
	out := s
	out.PersonalDetails = maps.Clone(s.PersonalDetails)
	if out.PersonalDetails == nil {
		out.PersonalDetails = PersonalDetails{}
	}
	out.Experiences = s.Experiences.Clone()
	return out
}

// Normalize replaces nil collections with empty ones and clamps an invalid
// step back to the first step. It is applied after decoding a snapshot.
func (s *AppState) Normalize() {
	if !s.CurrentStep.Valid() {
		s.CurrentStep = StepPersonal
	}
	if s.PersonalDetails == nil {
		s.PersonalDetails = PersonalDetails{}
	}
	s.Experiences.normalize()
}
