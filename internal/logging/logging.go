// Package logging is the default logger collaborator (§6): a
// zerolog-backed implementation of plugify.Logger, adapted from the
// teacher's fixed "service" tag into per-extension tagging so each Module
// or Plugin's log lines carry their own name instead of one global service
// label.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/plugify-dev/plugify/pkg/plugify"
)

// Default is the zerolog-backed plugify.Logger implementation.
type Default struct {
	logger zerolog.Logger
}

var _ plugify.Logger = (*Default)(nil)

// New builds a Default logger at the given zerolog level name ("info",
// "debug", ...), writing pretty console output when pretty is true and
// structured JSON otherwise.
func New(level string, pretty bool) *Default {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var writer zerolog.ConsoleWriter
	base := zerolog.New(os.Stdout).With().Timestamp()
	if pretty {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return &Default{logger: zerolog.New(writer).With().Timestamp().Logger()}
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return &Default{logger: base.Logger()}
}

// For returns a child logger tagged with the originating extension's name,
// the per-extension analogue of the teacher's Security()/HTTP()/Database()
// fixed-component loggers.
func (d *Default) For(extensionName string) *Default {
	return &Default{logger: d.logger.With().Str("extension", extensionName).Logger()}
}

// Log implements plugify.Logger.
func (d *Default) Log(msg string, severity plugify.Severity) {
	event := d.eventFor(severity)
	event.Msg(msg)
}

func (d *Default) eventFor(severity plugify.Severity) *zerolog.Event {
	switch severity {
	case plugify.SeverityFatal:
		return d.logger.Error().Bool("fatal", true)
	case plugify.SeverityError:
		return d.logger.Error()
	case plugify.SeverityWarning:
		return d.logger.Warn()
	case plugify.SeverityInfo:
		return d.logger.Info()
	case plugify.SeverityDebug:
		return d.logger.Debug()
	case plugify.SeverityVerbose:
		return d.logger.Trace()
	default:
		return d.logger.Info()
	}
}

// Zerolog exposes the underlying zerolog.Logger for collaborators (e.g. the
// diag HTTP router) that want gin's own request-logging middleware wired to
// the same sink.
func (d *Default) Zerolog() zerolog.Logger { return d.logger }
