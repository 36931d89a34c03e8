// Package telemetry sets up structured logging for a resolve run: one
// root logger, and one correlation-id-tagged child logger per package
// walk, so interleaved parallel walks can be told apart in the log
// stream.
package telemetry

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// rootLogger is the process-wide base logger; NewWalkLogger derives
// per-walk children from it.
var rootLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Logger returns the root logger.
func Logger() *zerolog.Logger {
	return &rootLogger
}

// SetOutput redirects the root logger's output, for CLI console-writer
// setup or test capture.
func SetOutput(w io.Writer) {
	rootLogger = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel adjusts the minimum level the root logger emits.
func SetLevel(lvl zerolog.Level) {
	rootLogger = rootLogger.Level(lvl)
}

// NewWalkLogger returns a child logger scoped to one package walk, tagged
// with the package name and a fresh correlation id.
func NewWalkLogger(pkg string) zerolog.Logger {
	return rootLogger.With().
		Str("package", pkg).
		Str("walk_id", uuid.NewString()).
		Logger()
}
