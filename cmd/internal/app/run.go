package app

import (
	"context"
	"log/slog"
)

// Serve builds the App and blocks until ctx ends. It returns an error instead of
// calling os.Exit to keep defers effective.
func Serve(ctx context.Context, cfg Config, log *slog.Logger) error {
	a, err := New(ctx, cfg, log)
	if err != nil {
		log.Error("server.init.fail", "err", err)
		return err
	}
	return a.Run(ctx)
}
