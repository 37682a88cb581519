package injector

import (
	"fmt"

	"github.com/google/wire"

	"github.com/zeusync/climber/internal/config"
	"github.com/zeusync/climber/internal/core/events/bus"
	"github.com/zeusync/climber/internal/core/observability/log"
	"github.com/zeusync/climber/internal/core/scene"
	"github.com/zeusync/climber/internal/core/storage/leveldb"
	"github.com/zeusync/climber/internal/core/storage/trace"
	"github.com/zeusync/climber/internal/core/systems/recording"
	"github.com/zeusync/climber/internal/server"
)

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideTrace,
	ProvideFeed,
	ProvideSinks,
	ProvideScene,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg config.Config) (*log.Logger, func(), error) {
	logger, err := log.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

// ProvideTrace opens the trace store, or returns nil when tracing is off.
func ProvideTrace(cfg config.Config, logger *log.Logger) (*trace.Store, func(), error) {
	if !cfg.Trace.Enabled() {
		return nil, func() {}, nil
	}

	var (
		db  *leveldb.Store
		err error
	)
	if cfg.Trace.Path == config.MemoryTrace {
		db, err = leveldb.OpenMemory()
	} else {
		db, err = leveldb.Open(cfg.Trace.Path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open trace %s: %w", cfg.Trace.Path, err)
	}

	logger.Info("trace opened", log.String("path", cfg.Trace.Path))
	return trace.New(db), func() {
		stats := db.Statistics()
		if err := db.Close(); err != nil {
			logger.Warn("closing trace failed", log.Error(err))
		}
		logger.Debug("trace closed", log.Uint64("writes", stats.Writes), log.Uint64("batches", stats.Batches))
	}, nil
}

// ProvideFeed creates the websocket feed server, or nil when it is off.
func ProvideFeed(cfg config.Config, logger *log.Logger) *server.HTTPServer {
	if !cfg.Feed.Enabled {
		return nil
	}
	hub := server.NewHub(server.WithQueueSize(cfg.Feed.QueueSize), server.WithHubLogger(logger))
	return server.NewHTTPServer(cfg.Feed.Config, hub, logger)
}

// ProvideSinks lists the recorders in the order they are fed: the trace
// before the live feed.
func ProvideSinks(store *trace.Store, feed *server.HTTPServer) []recording.Sink {
	var sinks []recording.Sink
	if store != nil {
		sinks = append(sinks, store)
	}
	if feed != nil {
		sinks = append(sinks, feed.Hub())
	}
	return sinks
}

func ProvideScene(cfg config.Config, logger *log.Logger, events bus.EventBus, sinks []recording.Sink) (*scene.Scene, error) {
	return scene.Build(cfg, logger, events, sinks...)
}
