// Package logging configures charmbracelet/log for ceedling-config.
//
// Every logger writes to stderr; stdout carries command output only. Call
// Setup once while the CLI starts, before any component logger is created
// with New: child loggers copy the default logger's settings when they are
// made and do not follow later changes.
//
//	logging.Setup(logging.LevelFor(verbose, quiet), jsonFormat)
//	logger := logging.New("config")
//	logger.Debug("applied default layers", "layers", applied)
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Level aliases for charmbracelet/log levels.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
	LevelFatal = log.FatalLevel
)

// verbosityLevels maps the build tool's verbosity scale (silent, errors,
// complain, normal, obnoxious, debug) onto log levels.
var verbosityLevels = []log.Level{
	LevelFatal,
	LevelError,
	LevelWarn,
	LevelInfo,
	LevelDebug,
	LevelDebug,
}

// LevelFor picks the level for the --verbose and --quiet flags. Quiet wins
// when both are set.
func LevelFor(verbose, quiet bool) log.Level {
	switch {
	case quiet:
		return LevelError
	case verbose:
		return LevelDebug
	default:
		return LevelInfo
	}
}

// LevelForVerbosity maps a verbosity number (0 silent to 5 debug) onto a log
// level. Out-of-range values are clamped.
func LevelForVerbosity(v int) log.Level {
	if v < 0 {
		v = 0
	}
	if v >= len(verbosityLevels) {
		v = len(verbosityLevels) - 1
	}
	return verbosityLevels[v]
}

// Setup configures the default logger: level, stderr output and the text or
// JSON formatter.
func Setup(level log.Level, jsonFormat bool) {
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// New returns a logger prefixed with component. An empty component gives a
// logger without a prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput redirects the default logger, typically to a buffer in tests.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
