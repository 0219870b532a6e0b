// Package contract enforces the JSON contracts spoken between this gateway
// and the rendering engines. Engine payloads are untrusted: every status
// envelope and job manifest is validated against an embedded JSON schema and
// then decoded into the typed structs defined here, which drops properties
// the schema does not declare at every nesting level. Callers must treat the
// stripping as part of the contract, not an implementation detail.
package contract
