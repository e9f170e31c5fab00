package domain

// EnforcementResult records the outcome of a platform-side remediation
// action. A failed action is non-fatal: the moderation record is still
// written, with this result embedded in the event payload.
type EnforcementResult struct {
	Action    string `json:"action"`
	OK        bool   `json:"ok"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// Enforcement error kinds captured from the platform adapter.
const (
	EnforcementErrPermission = "permission_denied"
	EnforcementErrNotFound   = "not_found"
	EnforcementErrTimeout    = "timeout"
	EnforcementErrUnknown    = "unknown"
)
