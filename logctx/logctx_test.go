package logctx

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), logger)
	Info(ctx, "hello")
	assert.Equal(t, "INFO\thello\n", buf.String())
}

func TestLoggerNilContext(t *testing.T) {
	assert.NotPanics(t, func() {
		Info(nil, "hello") //nolint:staticcheck // for test
	})
}

func TestLoggerNoLoggerIsNop(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, Logger(ctx))
	assert.NotPanics(t, func() { messageAllLevels(ctx) })
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), logger)
	assert.Equal(t, logger, Logger(ctx))
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	config := zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		NameKey:     "name",
		EncodeLevel: zapcore.CapitalLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	ctx := WithLogger(context.Background(), zap.New(core))
	ctx = Named(ctx, "monitor")
	Info(ctx, "hello")
	assert.Equal(t, "INFO\tmonitor\thello\n", buf.String())
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, zapcore.InfoLevel)
	ctx := WithLogger(context.Background(), logger)
	ctx = WithFields(ctx, zap.Int("foo", 999), zap.String("bar", "abc_abc"))
	Info(ctx, "hello")
	assert.Equal(t, "INFO\thello\t{\"foo\": 999, \"bar\": \"abc_abc\"}\n", buf.String())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level    zapcore.Level
		expected string
	}{
		{zapcore.DebugLevel, "DEBUG\thello\nINFO\thello\nWARN\thello\nERROR\thello\n"},
		{zapcore.InfoLevel, "INFO\thello\nWARN\thello\nERROR\thello\n"},
		{zapcore.WarnLevel, "WARN\thello\nERROR\thello\n"},
		{zapcore.ErrorLevel, "ERROR\thello\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := newLogger(&buf, tt.level)
		ctx := WithLogger(context.Background(), logger)
		messageAllLevels(ctx)
		assert.Equal(t, tt.expected, buf.String(), tt.level.String())
	}
}

func messageAllLevels(ctx context.Context) {
	Debug(ctx, "hello")
	Info(ctx, "hello")
	Warn(ctx, "hello")
	Error(ctx, "hello")
}

func newLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	config := zapcore.EncoderConfig{
		MessageKey:  "msg",
		LevelKey:    "level",
		EncodeLevel: zapcore.CapitalLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		zapcore.AddSync(w),
		level,
	)
	return zap.New(core)
}
