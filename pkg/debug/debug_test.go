package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLogDisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(false)

	Log("hidden %d", 1)
	LogTiming("hidden", time.Millisecond)
	LogEnterExit("hidden")()

	if buf.Len() != 0 {
		t.Errorf("expected no output while disabled, got %q", buf.String())
	}
}

func TestLogEnabled(t *testing.T) {
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	defer SetEnabled(false)

	Log("built %d nodes", 4)
	LogIf(false, "skipped")
	LogTiming("filter", 2*time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, prefix) {
		t.Errorf("expected prefix %q in output, got %q", prefix, out)
	}
	if !strings.Contains(out, "built 4 nodes") {
		t.Errorf("expected formatted message, got %q", out)
	}
	if strings.Contains(out, "skipped") {
		t.Errorf("LogIf(false) should not write, got %q", out)
	}
	if !strings.Contains(out, "filter took 2ms") {
		t.Errorf("expected timing line, got %q", out)
	}
}
