package export

import "fmt"

// ExportError reports which stage of an export failed. No file is produced.
type ExportError struct {
	Stage Stage
	Cause error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export failed at %s: %v", e.Stage, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
