package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/gymcrowd/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// Options controls how New builds loggers.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string
	// Format is "json" or "console". Empty derives it from APP_ENV.
	Format string
	Output io.Writer
}

var (
	mu      sync.RWMutex
	current = Options{Output: os.Stdout}
)

// Configure sets the level and format used by subsequent calls to New.
func Configure(o Options) error {
	lvl := zerolog.InfoLevel
	if o.Level != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(o.Level))
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		lvl = l
	}
	switch o.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", o.Format)
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
	zerolog.SetGlobalLevel(lvl)
	mu.Lock()
	current = o
	mu.Unlock()
	return nil
}

// New returns a Logger for the given component.
func New(component string) Logger {
	mu.RLock()
	o := current
	mu.RUnlock()
	return newZerolog(component, o)
}
