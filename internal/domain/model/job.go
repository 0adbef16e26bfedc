package model

import "time"

// BatchJob asks a worker to process the images of a queued session.
type BatchJob struct {
	SessionID     string    // session holding the uploaded images
	CompetitionID string    // roster to correlate against
	Images        int       // number of uploaded images
	EnqueuedAt    time.Time // when the batch was accepted
}
