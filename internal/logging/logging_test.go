package logging_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/plugify-dev/plugify/internal/logging"
	"github.com/plugify-dev/plugify/pkg/plugify"
)

func TestLogDoesNotPanic(t *testing.T) {
	l := logging.New("debug", false)
	assert.NotPanics(t, func() {
		l.Log("engine started", plugify.SeverityInfo)
		l.For("hello").Log("plugin message", plugify.SeverityWarning)
	})
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	l := logging.New("not-a-level", true)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	assert.NotPanics(t, func() {
		l.Log("x", plugify.SeverityVerbose)
	})
}
