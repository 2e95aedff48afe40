package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"fitfaker/internal/logging"
)

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("converted file", "source", "a.fit", "output", "a_modified.fit")

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Fatalf("no level label: %q", line)
	}
	if !strings.Contains(line, "converted file") {
		t.Fatalf("message missing: %q", line)
	}
	if !strings.Contains(line, "source=a.fit") || !strings.Contains(line, "output=a_modified.fit") {
		t.Fatalf("attrs missing: %q", line)
	}
}

func TestConsoleGroupedAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.WithGroup("target").Info("rewrote identity", "product", 3122)

	if !strings.Contains(buf.String(), "target.product=3122") {
		t.Fatalf("group prefix missing: %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn suppressed: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("converted file", "source", "a.fit")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "converted file" || entry["source"] != "a.fit" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "logfmt"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
