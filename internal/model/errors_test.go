package model

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestRemoteFetchErrorMessage(t *testing.T) {
	err := &RemoteFetchError{Op: "publish chart", URL: "https://example.test/x", StatusCode: 401, Body: strings.Repeat("a", 500)}
	msg := err.Error()
	require.Contains(t, msg, "status 401")
	require.Less(t, len(msg), 300)

	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("fetch injuries: %w", &RemoteFetchError{Op: "GET", URL: "u", Err: cause})

	var rfe *RemoteFetchError
	require.True(t, errors.As(wrapped, &rfe))
	require.Zero(t, rfe.StatusCode)
	require.ErrorIs(t, wrapped, cause)
}

func TestRemoteFetchErrorKeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("a", maxErrorBody-1) + "é tail"
	err := &RemoteFetchError{Op: "GET", URL: "u", StatusCode: 503, Body: body}

	msg := err.Error()
	require.True(t, utf8.ValidString(msg))
	require.True(t, strings.HasSuffix(msg, strings.Repeat("a", maxErrorBody-1)))
	require.Equal(t, "ab", truncateBody("ab", 10))
	require.Equal(t, "", truncateBody("é", 1))
}

func TestSchemaDriftErrorAs(t *testing.T) {
	err := fmt.Errorf("fetch performance: %w", &SchemaDriftError{Source: "bref", URL: "u", Reason: "advanced table not found"})

	var drift *SchemaDriftError
	require.True(t, errors.As(err, &drift))
	require.Equal(t, "bref", drift.Source)
}
