package roster

import "errors"

var (
	// ErrCompetitionNotFound is returned when no roster exists for a competition.
	ErrCompetitionNotFound = errors.New("competition not found")
	// ErrInvalidRoster is returned for a roster file that cannot be read.
	ErrInvalidRoster = errors.New("invalid roster")
	// ErrUnsupportedFormat is returned for roster files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported roster format")
)
