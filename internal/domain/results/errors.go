package results

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the kind shared by every rejected edit or manual row.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks a placement or team already held by another row.
	ErrConflict = errors.New("result conflict")
	// ErrIndexOutOfRange is returned when an edit targets a row that does not exist.
	ErrIndexOutOfRange = errors.New("result index out of range")
)

// ValidationError reports a value outside its allowed range.
type ValidationError struct {
	Field string
	Value int
	Min   int
	Max   int // zero means unbounded
}

func (e *ValidationError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("%s %d must be at least %d", e.Field, e.Value, e.Min)
	}
	return fmt.Sprintf("%s %d must be between %d and %d", e.Field, e.Value, e.Min, e.Max)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ConflictError names the row that already holds a placement or team.
type ConflictError struct {
	Placement int
	TeamID    string
	TeamName  string
	Reason    string
}

func (e *ConflictError) Error() string {
	switch e.Reason {
	case ReasonTeamTaken:
		return fmt.Sprintf("team %s already has a result at placement %d", e.TeamName, e.Placement)
	default:
		return fmt.Sprintf("placement %d is already held by %s", e.Placement, e.TeamName)
	}
}

// Is lets callers match both ErrConflict and ErrValidation.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || target == ErrValidation
}
