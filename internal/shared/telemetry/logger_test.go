package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"
)

func TestErrorWritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stdout) })

	Error("mail.send.failed", map[string]any{"error": errors.New("dial tcp: refused"), "attempt": 1})

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v (%q)", err, buf.String())
	}
	if entry["level"] != "error" || entry["msg"] != "mail.send.failed" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["error"] != "dial tcp: refused" {
		t.Fatalf("expected error string field, got %v", entry["error"])
	}
	if _, ok := entry["ts"]; !ok {
		t.Fatalf("expected ts field")
	}
}
