package repository

import "errors"

// Sentinel kinds for result storage errors.
var (
	ErrNotFound       = errors.New("competition has no results")
	ErrDuplicateMatch = errors.New("match already saved")
	ErrInvalidRecord  = errors.New("match record needs an id and a competition")
)
