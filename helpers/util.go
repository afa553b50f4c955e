package helpers

import (
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"
)

// ErrMissingParam is returned when a URL lacks the requested query parameter
var ErrMissingParam = errors.New("missing query parameter")

// QueryParam returns the first value of key in the query string of rawURL.
// Relative references are accepted.
func QueryParam(rawURL, key string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", rawURL, err)
	}
	value := u.Query().Get(key)
	if value == "" {
		return "", fmt.Errorf("%w %q in %q", ErrMissingParam, key, rawURL)
	}
	return value, nil
}

// TrimLastRune drops the final character of s, if any
func TrimLastRune(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}
