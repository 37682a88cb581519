package recording

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/climber/internal/core/climber"
)

type staticSource []climber.Snapshot

func (s staticSource) Snapshots() []climber.Snapshot { return s }

func TestSystem_RecordsOnInterval(t *testing.T) {
	src := staticSource{{Name: "a", Tick: 1}, {Name: "b", Tick: 1}}
	var ticks []uint64
	sink := SinkFunc(func(_ context.Context, tick uint64, snaps []climber.Snapshot) error {
		ticks = append(ticks, tick)
		assert.Len(t, snaps, 2)
		return nil
	})

	s := New(src, 3, sink)
	for tick := uint64(1); tick <= 9; tick++ {
		require.NoError(t, s.Update(context.Background(), tick))
	}

	assert.Equal(t, []uint64{3, 6, 9}, ticks)
	snaps, digest := s.Last()
	assert.Len(t, snaps, 2)
	assert.Equal(t, climber.CombinedDigest(src), digest)
	assert.Equal(t, 2, s.Entities())
}

func TestSystem_JoinsSinkErrors(t *testing.T) {
	boom := errors.New("boom")
	var called bool
	s := New(staticSource{}, 0,
		SinkFunc(func(context.Context, uint64, []climber.Snapshot) error { return boom }),
	)
	s.AddSink(SinkFunc(func(context.Context, uint64, []climber.Snapshot) error {
		called = true
		return nil
	}))

	err := s.Update(context.Background(), 1)
	assert.ErrorIs(t, err, boom)
	assert.True(t, called)
}
