package logging

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.InfoLevel, GetLevel(" info "))
	assert.Equal(t, logrus.TraceLevel, GetLevel("whatever"))
}

func TestSentryHook_Fire(t *testing.T) {
	var captured []*sentry.Event
	eventID := sentry.EventID("abc")
	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel})
	hook.capture = func(event *sentry.Event) *sentry.EventID {
		captured = append(captured, event)
		return &eventID
	}
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())

	entry := &logrus.Entry{
		Level:   logrus.ErrorLevel,
		Message: "import failed",
		Time:    time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC),
		Data: logrus.Fields{
			"user":          "u1",
			logrus.ErrorKey: errors.New("boom"),
		},
	}
	require.NoError(t, hook.Fire(entry))
	require.Len(t, captured, 1)
	assert.Equal(t, sentry.LevelError, captured[0].Level)
	assert.Equal(t, "import failed", captured[0].Message)
	assert.Equal(t, "u1", captured[0].Extra["user"])
	require.Len(t, captured[0].Exception, 1)
	assert.Equal(t, "boom", captured[0].Exception[0].Value)

	hook.capture = func(*sentry.Event) *sentry.EventID { return nil }
	assert.Error(t, hook.Fire(entry))
}

func TestSetup_FileOutput(t *testing.T) {
	defer logrus.SetOutput(logrus.StandardLogger().Out)

	Setup(LoggerSetupParams{
		LogFileName: t.TempDir() + "/service",
		LogLevel:    "info",
	})
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())
	assert.IsType(t, &lumberjack.Logger{}, logrus.StandardLogger().Out)
}

func TestOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, output(LoggerSetupParams{LogToStdout: true}))

	tee, ok := output(LoggerSetupParams{LogFileName: t.TempDir() + "/service", LogToStdout: true}).(*teeWriter)
	require.True(t, ok)
	require.Len(t, tee.writers, 2)
	rotated, ok := tee.writers[1].(*lumberjack.Logger)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(rotated.Filename, "service.log"))
}
