package report

import "errors"

// ErrMissingAPIKey is returned when the chart workflow runs without a
// Datawrapper API key.
var ErrMissingAPIKey = errors.New("datawrapper API key not configured")
