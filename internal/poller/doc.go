// Package poller implements the client-side polling loop for a submitted
// job. It polls the gateway's status endpoint on a fixed interval within a
// hard time budget, and does not take an engine's word for completion: when
// a job reports complete, the poller fetches the manifest, resolves the
// expected artifacts, and probes each one over HTTP before declaring
// success. A complete job with an unreachable artifact is downgraded to a
// failure naming that artifact. Exhausting the budget is reported as a
// timeout, which is a distinct outcome from a job failure.
package poller
