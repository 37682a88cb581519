package injector

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/climber/internal/config"
	"github.com/zeusync/climber/internal/core/storage/leveldb"
	"github.com/zeusync/climber/internal/core/storage/trace"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Log.Level = "silent"
	cfg.Simulation.Ticks = 12
	cfg.Simulation.TickRate = 0
	return cfg
}

func TestInitializeApp_Minimal(t *testing.T) {
	app, cleanup, err := InitializeApp(testConfig())
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, app.Trace)
	assert.Nil(t, app.Feed)

	summary, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), summary.Ticks)
}

func TestInitializeApp_TraceAndFeed(t *testing.T) {
	cfg := testConfig()
	cfg.Trace.Path = config.MemoryTrace
	cfg.Feed.Enabled = true
	cfg.Feed.Addr = "127.0.0.1:0"

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, app.Trace)
	require.NotNil(t, app.Feed)

	summary, err := app.Run(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	last, err := app.Trace.LastTick(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), last)

	digest, err := app.Trace.Digest(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, summary.Digest, digest)

	snaps, err := app.Trace.Snapshots(ctx, "spider")
	require.NoError(t, err)
	assert.Len(t, snaps, 12)

	assert.NotNil(t, app.Feed.Hub().Last())
}

func TestInitializeApp_TraceOnDisk(t *testing.T) {
	cfg := testConfig()
	cfg.Trace.Path = filepath.Join(t.TempDir(), "trace")

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	summary, err := app.Run(context.Background())
	require.NoError(t, err)
	cleanup()

	db, err := leveldb.Open(cfg.Trace.Path)
	require.NoError(t, err)
	defer db.Close()

	digest, err := trace.New(db).Digest(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, summary.Digest, digest)
}

func TestInitializeApp_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Name = ""
	_, _, err := InitializeApp(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
