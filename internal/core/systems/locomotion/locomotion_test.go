package locomotion

import (
	"context"
	"fmt"
	"testing"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/climber/internal/core/climber"
	"github.com/zeusync/climber/internal/core/pathing"
	"github.com/zeusync/climber/internal/core/systems/physics"
	"github.com/zeusync/climber/internal/core/world"
)

func buildUnits(t *testing.T, n int) []Unit {
	t.Helper()
	w, err := world.Build(world.DefaultConfig())
	require.NoError(t, err)

	units := make([]Unit, n)
	for i := range units {
		f, err := pathing.NewFollower(pathing.DefaultConfig(), []cube.Pos{{3, 0, i - 2}, {3, 2, i - 2}})
		require.NoError(t, err)
		c, err := climber.New(climber.DefaultConfig(), w, physics.NewSweep(w), f,
			climber.WithName(fmt.Sprintf("climber-%d", i)),
			climber.WithPosition(mgl64.Vec3{-2.5, 0, float64(i-2) + 0.5}))
		require.NoError(t, err)
		units[i] = Unit{Climber: c, Follower: f}
	}
	return units
}

func run(t *testing.T, s *System, ticks int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Initialize(ctx))
	for tick := 1; tick <= ticks; tick++ {
		require.NoError(t, s.Update(ctx, uint64(tick)))
	}
	require.NoError(t, s.Shutdown(ctx))
}

func TestSystem_TicksEveryUnit(t *testing.T) {
	s := New(buildUnits(t, 3))
	assert.Equal(t, Name, s.Name())
	assert.Equal(t, 3, s.Entities())

	run(t, s, 10)

	snaps := s.Snapshots()
	require.Len(t, snaps, 3)
	for i, snap := range snaps {
		assert.Equal(t, uint64(10), snap.Tick)
		assert.Equal(t, fmt.Sprintf("climber-%d", i), snap.Name)
		assert.Greater(t, snap.Position.X(), -2.5)
	}
}

func TestSystem_ParallelMatchesSequential(t *testing.T) {
	seq := New(buildUnits(t, 5))
	par := New(buildUnits(t, 5), WithWorkers(4))

	run(t, seq, 120)
	run(t, par, 120)

	a, b := seq.Snapshots(), par.Snapshots()
	for i := range a {
		assert.Equal(t, a[i].Digest(), b[i].Digest(), "unit %d", i)
	}
	assert.Equal(t, climber.CombinedDigest(a), climber.CombinedDigest(b))
}

func TestSystem_ClimbsTheWall(t *testing.T) {
	s := New(buildUnits(t, 1))
	run(t, s, 120)

	u := s.Units()[0]
	assert.True(t, u.Follower.Done())
	assert.Equal(t, cube.FaceEast, u.Climber.Facing())
	assert.Greater(t, u.Climber.Body().Position.Y(), 1.0)
	assert.Less(t, u.Climber.State().Normal.X(), -0.5)
}

func TestSystem_StopsOnCancelledContext(t *testing.T) {
	s := New(buildUnits(t, 2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Update(ctx, 1), context.Canceled)
	assert.Zero(t, s.Units()[0].Climber.Ticks())
}
