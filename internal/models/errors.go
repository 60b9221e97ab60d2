package models

import "errors"

// Sentinel errors shared across packages. Callers match with errors.Is;
// wrapping with fmt.Errorf("...: %w", err) preserves the class.
var (
	// ErrNotFound means a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoCredential means the user has no stored provider API key.
	// Distinct from upstream failure: the fix is user action, not retry.
	ErrNoCredential = errors.New("no API key stored for user")

	// ErrNoEncryptionKey means the process-wide encryption key is
	// unset or invalid. Fatal for any request touching credentials.
	ErrNoEncryptionKey = errors.New("encryption key not configured")

	// ErrUpstream wraps failures of the inference, summarization, or
	// extraction endpoints. Surfaced on the chat path, swallowed and
	// logged on the best-effort lifecycle path.
	ErrUpstream = errors.New("upstream provider error")
)
