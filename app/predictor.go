package app

import (
	"context"
	"time"

	"github.com/kilianp07/gymcrowd/core/prediction"
	"github.com/kilianp07/gymcrowd/infra/artifact"
	"github.com/kilianp07/gymcrowd/infra/logger"
)

// LoadPredictor runs the one-time model load and builds a server on the
// settled lifecycle. A missing or invalid artifact yields a Degraded server,
// not an error.
func LoadPredictor(ctx context.Context, src prediction.Source, timeout time.Duration, opts ...prediction.Option) (*prediction.Server, *prediction.Lifecycle, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	lc := prediction.NewLifecycle(logger.New("model"))
	if _, err := lc.Load(ctx, src, prediction.DefaultFallback); err != nil {
		return nil, lc, err
	}
	srv, err := prediction.NewServer(lc, opts...)
	if err != nil {
		return nil, lc, err
	}
	return srv, lc, nil
}

// FileSource returns the artifact source for path.
func FileSource(path string) prediction.Source {
	return artifact.FileSource{Path: path}
}
