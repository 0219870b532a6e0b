package promotion

import (
	"errors"
	"fmt"
)

// ErrNotComplete indicates the source job has not reached the complete state.
var ErrNotComplete = errors.New("job is not complete")

// ErrMissingArtifact indicates a required artifact could not be resolved
// from the job manifest.
var ErrMissingArtifact = errors.New("required artifact missing")

// ErrAlreadyPromoted indicates a product already exists for the job.
var ErrAlreadyPromoted = errors.New("job already promoted")

// MissingArtifactError names the artifact promotion could not resolve.
type MissingArtifactError struct {
	JobID    string
	Artifact string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("job %s: required artifact %s missing from manifest", e.JobID, e.Artifact)
}

func (e *MissingArtifactError) Is(target error) bool {
	return target == ErrMissingArtifact
}

// AlreadyPromotedError carries the identifier of the existing product so
// callers can surface it in conflict responses.
type AlreadyPromotedError struct {
	JobID     string
	ProductID string
}

func (e *AlreadyPromotedError) Error() string {
	return fmt.Sprintf("job %s already promoted as product %s", e.JobID, e.ProductID)
}

func (e *AlreadyPromotedError) Is(target error) bool {
	return target == ErrAlreadyPromoted
}
