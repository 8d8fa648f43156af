package model

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrMalformedInput is returned when every input record is unusable.
	ErrMalformedInput = errors.New("malformed input: no usable records")

	// ErrInputFileMissing is returned when a required local input file is absent.
	ErrInputFileMissing = errors.New("input file missing")
)

// maxErrorBody bounds how much of a response body is echoed in an error message.
const maxErrorBody = 200

// RemoteFetchError is a network or non-2xx failure talking to a data source or
// the chart API. StatusCode is zero when no response was received.
type RemoteFetchError struct {
	Op         string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteFetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Op, e.URL, e.StatusCode, truncateBody(e.Body, maxErrorBody))
}

// truncateBody cuts body to at most n bytes without splitting a rune.
func truncateBody(body string, n int) string {
	if len(body) <= n {
		return body
	}
	for n > 0 && !utf8.RuneStart(body[n]) {
		n--
	}
	return body[:n]
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

// SchemaDriftError means a fetched page no longer has the markup we parse.
type SchemaDriftError struct {
	Source string
	URL    string
	Reason string
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("%s: schema drift at %s: %s", e.Source, e.URL, e.Reason)
}
