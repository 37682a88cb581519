package injector

import (
	"context"
	"errors"

	"github.com/zeusync/climber/internal/config"
	"github.com/zeusync/climber/internal/core/observability/log"
	"github.com/zeusync/climber/internal/core/scene"
	"github.com/zeusync/climber/internal/core/storage/trace"
	"github.com/zeusync/climber/internal/server"
)

// App is one assembled scene with its optional trace and feed. Trace and
// Feed are nil when disabled.
type App struct {
	Config config.Config
	Logger *log.Logger
	Scene  *scene.Scene
	Trace  *trace.Store
	Feed   *server.HTTPServer
}

// Run serves the feed for the duration of the scene run.
func (a *App) Run(ctx context.Context) (scene.Summary, error) {
	if a.Feed != nil {
		if err := a.Feed.Start(ctx); err != nil {
			return scene.Summary{}, err
		}
	}

	summary, err := a.Scene.Run(ctx)

	if a.Feed != nil {
		if stopErr := a.Feed.Stop(context.WithoutCancel(ctx)); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}
	return summary, err
}
