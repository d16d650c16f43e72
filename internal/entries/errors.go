package entries

import (
	"errors"
	"fmt"

	"github.com/jonathan/cv-wizard/internal/types"
)

// UnitNotFoundError is returned when saving a unit that is not in the visible
// list of its collection.
type UnitNotFoundError struct {
	Collection types.Collection
	ID         string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("no %s entry with id %s", e.Collection, e.ID)
}

// ErrMissingExtraType is returned when an extras unit is added without a type.
var ErrMissingExtraType = errors.New("extras entries need a type")
