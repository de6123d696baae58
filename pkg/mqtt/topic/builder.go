package topic

import (
	"fmt"
	"strings"
)

// Builder constructs topic strings of the form {root}/{segment}/{id}.
// A Builder returned by Shared prefixes filters with a shared-subscription
// group so several manager replicas can split the upstream traffic.
type Builder struct {
	// root is the base namespace for all topics (e.g. "sensorlink/v1").
	root string

	// group is the shared-subscription group, empty for plain topics.
	group string
}

// NewBuilder creates a Builder for the given root namespace.
func NewBuilder(root string) *Builder {
	return &Builder{root: strings.TrimSuffix(root, "/")}
}

// Root returns the root namespace.
func (b *Builder) Root() string {
	return b.root
}

// Shared returns a copy of b whose wildcard filters join the shared
// subscription group.
func (b *Builder) Shared(group string) *Builder {
	return &Builder{root: b.root, group: group}
}

// Build returns the topic for segment addressed to id.
// Pattern: {root}/{segment}/{id}
func (b *Builder) Build(segment, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, segment, id)
}

// BuildWildcard returns the filter matching segment for every id.
// Pattern: [$share/{group}/]{root}/{segment}/+
func (b *Builder) BuildWildcard(segment string) string {
	filter := b.Build(segment, Wildcard)
	if b.group != "" {
		return fmt.Sprintf("$share/%s/%s", b.group, filter)
	}
	return filter
}

// ParseID extracts the id from a concrete topic built for segment.
// It reports false when the topic does not belong to segment.
func (b *Builder) ParseID(segment, topic string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", b.root, segment)
	id, ok := strings.CutPrefix(topic, prefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}
