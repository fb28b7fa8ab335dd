package ml

import "fmt"

// InsufficientDataError means the training view holds too few records to
// form a train/eval partition. Fatal; the operator must supply more data.
type InsufficientDataError struct {
	Got  int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient training data: got %d records, need at least %d", e.Got, e.Need)
}

// ArtifactError means the persisted pipeline is missing, unreadable, or
// structurally invalid. Fatal; scoring cannot proceed without a valid fit.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("pipeline artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }
