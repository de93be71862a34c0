package pulse

import (
	"errors"
	"strings"
)

const searchSeparator = " to "

// ErrInvalidSearchKey is returned for keys without both endpoints.
var ErrInvalidSearchKey = errors.New("search key must look like \"<from> to <to>\"")

// SearchKey formats the history key for a search.
func SearchKey(from, to string) string {
	return from + searchSeparator + to
}

// ParseSearchKey splits a history key on its first " to ". Both sides must be
// non-empty.
func ParseSearchKey(key string) (RouteContext, error) {
	from, to, ok := strings.Cut(key, searchSeparator)
	if !ok || from == "" || to == "" {
		return RouteContext{}, ErrInvalidSearchKey
	}
	return RouteContext{From: from, To: to}, nil
}
