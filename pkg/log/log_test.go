package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestForServiceMemoizes(t *testing.T) {
	a := ForService("svc-memo")
	b := ForService("svc-memo")
	if a != b {
		t.Error("Expected the same logger instance for the same service name")
	}
}

func TestInfofIncludesLevelAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	ForService("svc-info").Infof("hello %s", "world")

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Errorf("Expected INFO level in output: %q", out)
	}
	if !strings.Contains(out, "[svc-info>]") {
		t.Errorf("Expected service prefix in output: %q", out)
	}
	if !strings.Contains(out, "hello world") {
		t.Errorf("Expected formatted message in output: %q", out)
	}
}

func TestDebugfSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	ForService("svc-quiet").Debugf("should not appear")
	if buf.Len() != 0 {
		t.Errorf("Expected no debug output, got %q", buf.String())
	}
}

func TestDebugfWithGlobalDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	ForService("svc-global").Debugf("visible")
	if !strings.Contains(buf.String(), "DEBUG") {
		t.Errorf("Expected debug output with global debug on, got %q", buf.String())
	}
}

func TestDebugfPerService(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	EnableDebugFor("svc-selected")

	ForService("svc-other").Debugf("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected no output for unselected service, got %q", buf.String())
	}

	ForService("svc-selected").Debugf("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("Expected output for selected service, got %q", buf.String())
	}
}
