package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/anatomyflash/internal/logger"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
}

func newBufferLogger(level logger.Level) (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithLevel(level),
		logger.WithColors(false),
		logger.WithClock(fixedClock),
	)
	return log, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logger.Level
	}{
		{"debug", logger.DEBUG},
		{"INFO", logger.INFO},
		{"warning", logger.WARN},
		{" error ", logger.ERROR},
		{"nonsense", logger.INFO},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.ParseLevel(tt.in))
		})
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	log, buf := newBufferLogger(logger.WARN)

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "shown 1")
}

func TestLogger_PrefixAndSortedFields(t *testing.T) {
	log, buf := newBufferLogger(logger.DEBUG)

	log.WithPrefix("quiz").
		WithFields(map[string]any{"user_id": "abc", "state": "active"}).
		WithField("note", "two words").
		Info("answer recorded")

	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "2024-03-01 12:30:00.000 INFO "))
	assert.Contains(t, line, "[quiz]")
	assert.Contains(t, line, "logger_test.go:")
	assert.True(t, strings.HasSuffix(line, `answer recorded note="two words" state=active user_id=abc`+"\n"), line)
}

func TestLogger_DerivedLoggersDoNotShareFields(t *testing.T) {
	log, buf := newBufferLogger(logger.INFO)

	child := log.WithField("request_id", "r1")
	log.Info("parent")
	child.Info("child")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.NotContains(t, lines[0], "request_id")
		assert.Contains(t, lines[1], "request_id=r1")
	}
}

func TestContextRoundTrip(t *testing.T) {
	log, _ := newBufferLogger(logger.INFO)

	ctx := logger.NewContext(context.Background(), log)
	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}
