package reconcile

import "fmt"

// OutputConflictError is returned when the destination exists and the
// requested action is not a recognized policy.
type OutputConflictError struct {
	Path   string
	Action string
}

func (e *OutputConflictError) Error() string {
	return fmt.Sprintf("destination %s exists and action %q cannot resolve the conflict", e.Path, e.Action)
}

// MergeTypeMismatchError is returned when Replace or Update is attempted
// but one side does not parse to a mapping root.
type MergeTypeMismatchError struct {
	Path   string
	Action string
	Detail string
}

func (e *MergeTypeMismatchError) Error() string {
	return fmt.Sprintf("cannot %s into %s: %s", e.Action, e.Path, e.Detail)
}
