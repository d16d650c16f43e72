// Package wizard gates the three linear steps of the CV wizard.
package wizard

import (
	"context"

	"github.com/jonathan/cv-wizard/internal/document"
	"github.com/jonathan/cv-wizard/internal/state"
	"github.com/jonathan/cv-wizard/internal/types"
)

// Status is the progress indicator state of one step.
type Status string

// Step statuses.
const (
	StatusComplete Status = "complete"
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
)

// StepProgress is one dot of the progress indicator.
type StepProgress struct {
	Step   types.Step `json:"step"`
	Name   string     `json:"name"`
	Status Status     `json:"status"`
}

// Controller moves a session between steps. It never validates field
// content: a step's own submit action running is the only guard.
type Controller struct {
	store *state.Store
}

// New returns a Controller over store.
func New(store *state.Store) *Controller {
	return &Controller{store: store}
}

// Current returns the active step.
func (c *Controller) Current() types.Step {
	return c.store.Snapshot().CurrentStep
}

// SubmitStep1 stores the personal details form and moves to step 2 in one
// persisted write.
func (c *Controller) SubmitStep1(ctx context.Context, details types.PersonalDetails) error {
	if err := c.require(types.StepPersonal, types.StepExperience); err != nil {
		return err
	}
	return c.store.Apply(ctx, state.WithPersonalDetails(details), state.WithStep(types.StepExperience))
}

// NextFromStep2 stores the free-text blocks and the references flag and
// moves to step 3 in one persisted write.
func (c *Controller) NextFromStep2(ctx context.Context, texts types.Texts) error {
	if err := c.require(types.StepExperience, types.StepTemplate); err != nil {
		return err
	}
	return c.store.Apply(ctx, state.WithTexts(texts), state.WithStep(types.StepTemplate))
}

// Previous moves one step back. It is refused on step 1.
func (c *Controller) Previous(ctx context.Context) (types.Step, error) {
	cur := c.Current()
	if cur <= types.FirstStep {
		return cur, &TransitionError{From: cur, To: cur - 1}
	}
	prev := cur - 1
	if err := c.store.SetStep(ctx, prev); err != nil {
		return cur, err
	}
	return prev, nil
}

// GoTo navigates directly to step. Only staying put and going back one step
// are allowed; moving forward needs the step's own submit action.
func (c *Controller) GoTo(ctx context.Context, step types.Step) error {
	cur := c.Current()
	switch step {
	case cur:
		return nil
	case cur - 1:
		_, err := c.Previous(ctx)
		return err
	default:
		return &TransitionError{From: cur, To: step}
	}
}

// SelectTemplate records the template choice of step 3.
func (c *Controller) SelectTemplate(ctx context.Context, id types.TemplateID) error {
	if id == "" {
		return types.ErrNoTemplate
	}
	return c.store.SelectTemplate(ctx, id)
}

// Progress returns the indicator state of every step: steps before the
// current one are complete, the current one is active.
func (c *Controller) Progress() []StepProgress {
	return ProgressAt(c.Current())
}

// ProgressAt computes the indicator for an active step.
func ProgressAt(cur types.Step) []StepProgress {
	out := make([]StepProgress, 0, int(types.LastStep))
	for s := types.FirstStep; s <= types.LastStep; s++ {
		status := StatusPending
		switch {
		case s < cur:
			status = StatusComplete
		case s == cur:
			status = StatusActive
		}
		out = append(out, StepProgress{Step: s, Name: s.String(), Status: status})
	}
	return out
}

// Preview renders the document for the selected template. It returns
// types.ErrNoTemplate, and renders nothing, when no template is selected.
func (c *Controller) Preview() (*document.Document, error) {
	st := c.store.Snapshot()
	if !st.HasTemplate() {
		return nil, types.ErrNoTemplate
	}
	return document.Render(st), nil
}

func (c *Controller) require(from, to types.Step) error {
	if cur := c.Current(); cur != from {
		return &TransitionError{From: cur, To: to}
	}
	return nil
}
