package topic

import "strings"

const (
	// Wildcard matches exactly one topic level.
	Wildcard = "+"

	// MultiWildcard matches the current level and everything below it.
	// It is only valid as the last level of a filter.
	MultiWildcard = "#"

	// SharePrefix marks a shared-subscription filter: $share/{group}/{filter}.
	SharePrefix = "$share/"
)

// Unshare strips a shared-subscription prefix from filter.
// The broker delivers shared messages on the plain topic.
func Unshare(filter string) string {
	rest, ok := strings.CutPrefix(filter, SharePrefix)
	if !ok {
		return filter
	}
	if _, f, ok := strings.Cut(rest, "/"); ok {
		return f
	}
	return filter
}

// Match reports whether topic is selected by filter.
// Shared-subscription filters match on their plain part.
func Match(filter, topic string) bool {
	filter = Unshare(filter)
	if filter == topic {
		return true
	}
	if !strings.Contains(filter, Wildcard) && !strings.Contains(filter, MultiWildcard) {
		return false
	}

	levels := strings.Split(topic, "/")
	for i, f := range strings.Split(filter, "/") {
		switch {
		case f == MultiWildcard:
			return true
		case i >= len(levels):
			return false
		case f != Wildcard && f != levels[i]:
			return false
		}
	}
	return len(strings.Split(filter, "/")) == len(levels)
}
