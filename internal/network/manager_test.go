package network

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerPublishAndSnapshot(t *testing.T) {
	t.Parallel()

	m := NewManager([]string{"walk", "bike"})
	assert.Equal(t, []string{"walk", "bike"}, m.Modes())

	_, err := m.Snapshot("walk")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	s, err := Build("walk", squareBase(), nil, testProfiles(), testParams())
	require.NoError(t, err)
	require.NoError(t, m.Publish(s))

	got, err := m.Snapshot("walk")
	require.NoError(t, err)
	assert.Same(t, s, got)

	// Publishing swaps the pointer; the old snapshot is unchanged.
	s2, err := Build("walk", squareBase(), hazardAtNode2(10), testProfiles(), testParams())
	require.NoError(t, err)
	require.NoError(t, m.Publish(s2))

	got, err = m.Snapshot("walk")
	require.NoError(t, err)
	assert.Same(t, s2, got)
}

func TestManagerUnknownMode(t *testing.T) {
	t.Parallel()

	m := NewManager([]string{"walk"})

	_, err := m.Snapshot("boat")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMode)

	s, err := Build("boat", squareBase(), nil, testProfiles(), testParams())
	require.NoError(t, err)
	err = m.Publish(s)
	assert.ErrorIs(t, err, ErrUnknownMode)

	err = m.Rebuild(context.Background(), "boat", func(ctx context.Context, mode string) (*Snapshot, error) {
		t.Fatal("build must not run for an unknown mode")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestManagerRebuild(t *testing.T) {
	t.Parallel()

	m := NewManager([]string{"walk"})
	build := func(ctx context.Context, mode string) (*Snapshot, error) {
		return Build(mode, squareBase(), nil, testProfiles(), testParams())
	}
	require.NoError(t, m.Rebuild(context.Background(), "walk", build))

	first, err := m.Snapshot("walk")
	require.NoError(t, err)

	// A failed rebuild keeps the previous snapshot in service.
	err = m.Rebuild(context.Background(), "walk", func(ctx context.Context, mode string) (*Snapshot, error) {
		return nil, eris.New("data source unavailable")
	})
	require.Error(t, err)

	got, err := m.Snapshot("walk")
	require.NoError(t, err)
	assert.Same(t, first, got)

	// A successful rebuild swaps in the fresh snapshot.
	require.NoError(t, m.Rebuild(context.Background(), "walk", build))
	got, err = m.Snapshot("walk")
	require.NoError(t, err)
	assert.NotSame(t, first, got)
}
