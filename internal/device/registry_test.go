package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	var armed int
	r := NewRegistry(func() { armed++ })

	a := newDevice(Identity{Endpoint: "a"}, nil, nil)
	b := newDevice(Identity{Endpoint: "b", Peer: "gw-1"}, nil, nil)
	b2 := newDevice(Identity{Endpoint: "b", Peer: "gw-2"}, nil, nil)

	require.True(t, r.Add(a))
	require.False(t, r.Add(newDevice(Identity{Endpoint: "a"}, nil, nil)), "duplicate identity")
	require.True(t, r.Add(b))
	require.True(t, r.Add(b2))
	assert.Equal(t, 1, armed)
	assert.Equal(t, 3, r.Len())

	got, ok := r.Get(Identity{Endpoint: "b", Peer: "gw-2"})
	require.True(t, ok)
	assert.Same(t, b2, got)

	// Endpoint lookup ignores the peer and picks the earliest registration.
	got, ok = r.FindByEndpoint("b")
	require.True(t, ok)
	assert.Same(t, b, got)
	_, ok = r.FindByEndpoint("c")
	assert.False(t, ok)

	snap := r.Snapshot()
	assert.Equal(t, []*Device{a, b, b2}, snap)

	assert.Same(t, b, r.Remove(b.ID()))
	assert.Nil(t, r.Remove(b.ID()))
	assert.Len(t, snap, 3, "snapshot is unaffected by removal")
	assert.Equal(t, []*Device{a, b2}, r.Snapshot())

	got, ok = r.FindByEndpoint("b")
	require.True(t, ok)
	assert.Same(t, b2, got)

	r.Remove(a.ID())
	r.Remove(b2.ID())
	assert.Zero(t, r.Len())

	require.True(t, r.Add(a))
	assert.Equal(t, 2, armed, "onFirst fires again after the registry emptied")
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "mast-01", Identity{Endpoint: "mast-01"}.String())
	assert.Equal(t, "mast-01@gw", Identity{Endpoint: "mast-01", Peer: "gw"}.String())

	assert.NoError(t, Identity{Endpoint: "mast-01", Peer: "gw"}.Validate())
	assert.Error(t, Identity{}.Validate())
	assert.Error(t, Identity{Endpoint: "a/b"}.Validate())
	assert.Error(t, Identity{Endpoint: "a+"}.Validate())
	assert.Error(t, Identity{Endpoint: "a", Peer: "x@y"}.Validate())
}
