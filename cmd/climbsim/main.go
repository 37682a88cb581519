package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/zeusync/climber/internal/config"
	"github.com/zeusync/climber/internal/core/observability/log"
	"github.com/zeusync/climber/internal/injector"
	"github.com/zeusync/climber/pkg/concurrent"
)

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	var (
		paths pathList
		ticks uint64
	)
	flag.Var(&paths, "config", "scene file; repeat to run several scenes concurrently")
	flag.Uint64Var(&ticks, "ticks", 0, "override the tick count of every scene")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, paths, ticks); err != nil {
		fmt.Fprintln(os.Stderr, "climbsim:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, paths []string, ticks uint64) error {
	cfgs, err := loadAll(paths)
	if err != nil {
		return err
	}
	if ticks > 0 {
		for i := range cfgs {
			cfgs[i].Simulation.Ticks = ticks
		}
	}

	return concurrent.ForEach(ctx, cfgs, len(cfgs), func(ctx context.Context, cfg config.Config) error {
		app, cleanup, err := injector.InitializeApp(cfg)
		if err != nil {
			return fmt.Errorf("scene %s: %w", cfg.Name, err)
		}
		defer cleanup()

		summary, err := app.Run(ctx)
		if err != nil {
			return fmt.Errorf("scene %s: %w", cfg.Name, err)
		}

		fields := []log.Field{
			log.String("scene", summary.Name),
			log.Uint64("ticks", summary.Ticks),
			log.String("digest", fmt.Sprintf("%016x", summary.Digest)),
			log.Duration("elapsed", summary.Elapsed),
		}
		for _, snap := range summary.Snapshots {
			app.Logger.Info("climber",
				log.String("scene", summary.Name),
				log.String("name", snap.Name),
				log.Vec3("position", snap.Position),
				log.Vec3("normal", snap.Normal),
				log.Face("facing", snap.Facing),
			)
		}
		app.Logger.Info("summary", fields...)
		return nil
	})
}

func loadAll(paths []string) ([]config.Config, error) {
	if len(paths) == 0 {
		return []config.Config{config.Defaults()}, nil
	}
	cfgs := make([]config.Config, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, p := range paths {
		cfg, err := config.LoadFile(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := names[cfg.Name]; ok {
			return nil, fmt.Errorf("%s and %s both define scene %q", prev, p, cfg.Name)
		}
		names[cfg.Name] = p
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}
