package contract

import "errors"

// Error codes surfaced in failure envelopes. Contract codes describe schema
// violations by an upstream engine; UPSTREAM_ERROR covers transport-level
// failures reaching one.
const (
	CodeInvalidJobStatus      = "INVALID_JOB_STATUS"
	CodeInvalidJobManifest    = "INVALID_JOB_MANIFEST"
	CodeInvalidManifestPublic = "INVALID_MANIFEST_PUBLIC"
	CodeMissingResultPublic   = "MISSING_RESULT_PUBLIC"
	CodeUpstreamNonJSON       = "UPSTREAM_NON_JSON"
	CodeUpstreamError         = "UPSTREAM_ERROR"
)

// Error is a structured contract violation raised while validating an
// upstream payload. The fault lies with the engine, not the caller, so
// handlers surface these as gateway-class failures.
type Error struct {
	Code   string
	Detail string
	JobID  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Code
	}
	return e.Code + ": " + e.Detail
}

// NewError builds a contract error with the given code and detail.
func NewError(code, detail string) *Error {
	return &Error{Code: code, Detail: detail}
}

// NewJobError builds a contract error annotated with the offending job id.
func NewJobError(code, detail, jobID string) *Error {
	return &Error{Code: code, Detail: detail, JobID: jobID}
}

// AsError unwraps a contract error from an error chain.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
