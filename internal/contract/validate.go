package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"surfacegate/internal/state"
)

//go:embed schemas/job_status.schema.json
var jobStatusSchemaJSON string

//go:embed schemas/job_manifest.schema.json
var jobManifestSchemaJSON string

//go:embed schemas/manifest_public.schema.json
var manifestPublicSchemaJSON string

var (
	jobStatusSchema      *gojsonschema.Schema
	jobManifestSchema    *gojsonschema.Schema
	manifestPublicSchema *gojsonschema.Schema
)

func init() {
	var err error
	jobStatusSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(jobStatusSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("contract: compile job status schema: %v", err))
	}

	manifestPublicSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(manifestPublicSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("contract: compile manifest public schema: %v", err))
	}

	loader := gojsonschema.NewSchemaLoader()
	if err = loader.AddSchemas(gojsonschema.NewStringLoader(manifestPublicSchemaJSON)); err != nil {
		panic(fmt.Sprintf("contract: register manifest public schema: %v", err))
	}
	jobManifestSchema, err = loader.Compile(gojsonschema.NewStringLoader(jobManifestSchemaJSON))
	if err != nil {
		panic(fmt.Sprintf("contract: compile job manifest schema: %v", err))
	}
}

// EnvelopeOptions controls AssertJobStatusEnvelope behavior.
type EnvelopeOptions struct {
	// RequirePublicOnComplete demands a schema-valid result.public section
	// whenever the envelope's canonical status is complete.
	RequirePublicOnComplete bool
}

// AssertJobStatusEnvelope validates raw upstream JSON as a job status
// envelope and returns the typed, stripped payload. Schema violations raise
// INVALID_JOB_STATUS; a canonical-complete envelope lacking result.public
// raises MISSING_RESULT_PUBLIC when required, and an invalid public section
// raises INVALID_MANIFEST_PUBLIC.
func AssertJobStatusEnvelope(raw []byte, opts EnvelopeOptions) (*JobStatusEnvelope, error) {
	if err := validate(jobStatusSchema, raw, CodeInvalidJobStatus); err != nil {
		return annotateJobID(err, raw)
	}

	if opts.RequirePublicOnComplete {
		var probe struct {
			JobID  string `json:"job_id"`
			Status string `json:"status"`
			Result struct {
				Public json.RawMessage `json:"public"`
			} `json:"result"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, NewError(CodeInvalidJobStatus, err.Error())
		}
		if state.Normalize(probe.Status) == state.Complete {
			if isEmptyJSON(probe.Result.Public) {
				return nil, NewJobError(CodeMissingResultPublic,
					"result.public is required when status=complete", probe.JobID)
			}
			if _, err := AssertManifestPublic(probe.Result.Public); err != nil {
				return annotateJobID(err, raw)
			}
		}
	}

	var env JobStatusEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, NewError(CodeInvalidJobStatus, err.Error())
	}
	return &env, nil
}

// AssertJobManifest validates raw upstream JSON as a job manifest and
// returns the typed, stripped payload. Violations raise INVALID_JOB_MANIFEST.
func AssertJobManifest(raw []byte) (*JobManifest, error) {
	if err := validate(jobManifestSchema, raw, CodeInvalidJobManifest); err != nil {
		return nil, err
	}
	var man JobManifest
	if err := json.Unmarshal(raw, &man); err != nil {
		return nil, NewError(CodeInvalidJobManifest, err.Error())
	}
	return &man, nil
}

// AssertManifestPublic validates raw JSON as a manifest public section.
// Violations raise INVALID_MANIFEST_PUBLIC.
func AssertManifestPublic(raw []byte) (*ManifestPublic, error) {
	if err := validate(manifestPublicSchema, raw, CodeInvalidManifestPublic); err != nil {
		return nil, err
	}
	var pub ManifestPublic
	if err := json.Unmarshal(raw, &pub); err != nil {
		return nil, NewError(CodeInvalidManifestPublic, err.Error())
	}
	return &pub, nil
}

func validate(schema *gojsonschema.Schema, raw []byte, code string) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return NewError(code, "payload is empty")
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		// Validate itself fails only when the document is not JSON at all.
		return NewError(code, err.Error())
	}
	if !result.Valid() {
		return NewError(code, formatSchemaErrors(result))
	}
	return nil
}

func formatSchemaErrors(result *gojsonschema.Result) string {
	parts := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		field := resultErr.Field()
		if field == "" {
			field = "(root)"
		}
		parts = append(parts, strings.TrimSpace(field+" "+resultErr.Description()))
	}
	return strings.Join(parts, "; ")
}

func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// annotateJobID copies the payload's job_id, when readable, onto a contract
// error so failure envelopes can name the job.
func annotateJobID(err error, raw []byte) (*JobStatusEnvelope, error) {
	ce, ok := AsError(err)
	if !ok || ce.JobID != "" {
		return nil, err
	}
	var probe struct {
		JobID string `json:"job_id"`
	}
	if json.Unmarshal(raw, &probe) == nil {
		ce.JobID = probe.JobID
	}
	return nil, ce
}
