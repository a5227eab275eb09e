package state

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Filter restricts which task ids are rendered. A nil or empty filter matches
// everything; only a non-empty filter narrows the output. Ids absent from the
// snapshot simply match nothing.
type Filter map[uuid.UUID]struct{}

// NewFilter builds a filter from the given ids.
func NewFilter(ids ...uuid.UUID) Filter {
	if len(ids) == 0 {
		return nil
	}
	f := make(Filter, len(ids))
	for _, id := range ids {
		f[id] = struct{}{}
	}
	return f
}

// Match reports whether a record with the given id should be rendered.
func (f Filter) Match(id uuid.UUID) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[id]
	return ok
}

// ParseFilter parses a comma-separated list of UUIDs. A blank input yields a
// nil (match-everything) filter.
func ParseFilter(raw string) (Filter, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	f := make(Filter)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid user task id %q: %w", part, err)
		}
		f[id] = struct{}{}
	}
	return f, nil
}
