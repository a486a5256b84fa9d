package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestProdLogsJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("prod", &buf)
	log.Debug("hidden")
	log.Info("visible", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("want 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["msg"] != "visible" || rec["service"] != service || rec["k"] != "v" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestDevLogsTextAtDebug(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("dev", &buf).Debug("shown")
	if !strings.Contains(buf.String(), "msg=shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
