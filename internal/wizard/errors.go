package wizard

import (
	"fmt"

	"github.com/jonathan/cv-wizard/internal/types"
)

// TransitionError is returned for a step change the wizard does not allow.
type TransitionError struct {
	From types.Step
	To   types.Step
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}
