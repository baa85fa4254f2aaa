package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("hidden")
	logger.WithField("n", 5).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message logged at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "n=5") {
		t.Errorf("warning missing from output: %q", out)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New("loud", &bytes.Buffer{}); err == nil {
		t.Error("New(loud) succeeded")
	}
}

func TestDiscard(t *testing.T) {
	if got := Discard().GetLevel(); got != logrus.PanicLevel {
		t.Errorf("GetLevel() = %v, want panic", got)
	}
}
