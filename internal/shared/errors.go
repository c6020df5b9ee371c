package shared

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when a menu, recipe or item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned for malformed identifiers or payloads.
	ErrInvalidInput = errors.New("invalid input")
)

// ParseID parses a positive numeric identifier. Anything else is rejected
// with ErrInvalidInput so callers never reach storage with a bad id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id %q must be a positive integer", ErrInvalidInput, raw)
	}
	return id, nil
}
