package contract

import "time"

// BuildErrorEnvelope constructs the uniform failure body returned to
// clients. The envelope never carries upstream hostnames or stack traces;
// callers are responsible for keeping Detail free of them as well.
func BuildErrorEnvelope(jobID, service, code, detail string) *JobStatusEnvelope {
	if jobID == "" {
		jobID = "unknown"
	}
	return &JobStatusEnvelope{
		JobID:     jobID,
		Status:    "failed",
		Service:   service,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Error:     &EnvelopeError{Code: code, Detail: detail},
	}
}
