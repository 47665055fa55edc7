package main

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Run starts the API server and, unless disabled, the scheduler under one
// supervisor. It returns when the context is cancelled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	hook := (&sutureslog.Handler{Logger: deps.Logger}).MustHook()
	root := suture.New("reelscoutd", suture.Spec{EventHook: hook})

	root.Add(deps.Server)
	if deps.Config.Schedule.Enabled {
		root.Add(deps.Scheduler)
	}

	deps.Logger.Info("starting",
		"addr", deps.Config.Server.Addr,
		"schedule", deps.Config.Schedule.Enabled,
	)

	err := root.Serve(deps.Ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
