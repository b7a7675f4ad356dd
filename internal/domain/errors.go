package domain

import "errors"

// Error kinds for the download pipeline. Callers classify failures with
// errors.Is; wrapped messages carry the diagnostic detail.
var (
	ErrNetwork         = errors.New("network error")
	ErrToolUnavailable = errors.New("external tool unavailable")
	ErrToolFailed      = errors.New("external tool failed")
	ErrNoSearchResults = errors.New("no search results")
	ErrInvalidURL      = errors.New("invalid url")
	ErrConversion      = errors.New("conversion failed")
	ErrEmbed           = errors.New("tag embedding failed")
	ErrConfig          = errors.New("invalid configuration")
)
