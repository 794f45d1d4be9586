package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

type recordingFactory struct {
	created int
}

func (f *recordingFactory) CreateLogger(ctx context.Context) Logger {
	f.created++
	return newLogrusLogger(ctx)
}

func TestConfigureLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "info")
	defer Configure(&buf, "warn")

	logger := NewLogger(context.Background()).WithField("step", "definition")
	logger.Debugf("hidden")
	logger.Infof("visible %d", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "visible 1") || !strings.Contains(out, "step=definition") {
		t.Errorf("expected info line with field, got %q", out)
	}
}

func TestConfigureUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "chatty")
	defer Configure(&buf, "warn")

	NewLogger(context.Background()).Infof("dropped")
	NewLogger(context.Background()).Warnf("kept")

	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Errorf("expected warn level fallback, got %q", buf.String())
	}
}

func TestLoggerFactory(t *testing.T) {
	f := &recordingFactory{}
	SetLoggerFactory(f)
	defer SetLoggerFactory(nil)

	NewLogger(context.Background())
	if f.created != 1 {
		t.Errorf("expected factory to be used once, got %d", f.created)
	}
}
