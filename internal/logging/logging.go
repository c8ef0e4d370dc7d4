package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
)

// Config controls basic logger behaviour.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or text
}

// New constructs a structured logger writing to w. An empty level means info.
func New(w io.Writer, cfg Config) (log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	opts := []log.Option{log.LevelOption(level)}
	switch strings.ToLower(cfg.Format) {
	case "json":
		opts = append(opts, log.OutputJSONOption())
	case "", "text":
		opts = append(opts, log.ColorOption(false))
	default:
		return nil, fmt.Errorf("invalid log format %q (want json or text)", cfg.Format)
	}

	return log.NewLogger(w, opts...), nil
}

// Nop returns a logger that drops all logs.
func Nop() log.Logger { return log.NewNopLogger() }
