package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.plog")

	args := []string{"--log-file", path, "-d", "3840", "-p", "20202021"}
	if code := RunGenerate(args, &bytes.Buffer{}, &bytes.Buffer{}); code != exitSuccess {
		t.Fatalf("generate failed with %d", code)
	}
	for _, input := range []string{"34970112332", "34970112333", "MT:-24J0AFN00KA0648G00"} {
		RunParse([]string{"--log-file", path, input}, &bytes.Buffer{}, &bytes.Buffer{})
	}
	return path
}

func TestRunLog_Text(t *testing.T) {
	path := writeTestLog(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := RunLog([]string{path}, stdout, stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{"GENERATE BOTH OK", "PARSE MANUALCODE ChecksumMismatch", "PARSE QRCODE OK", "Manualcode: 34970112332", "4 events"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestRunLog_Filters(t *testing.T) {
	path := writeTestLog(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"op", []string{"--op", "parse", path}, "3 events"},
		{"errors", []string{"--errors", path}, "1 events"},
		{"kind", []string{"--kind", "OutOfRange", path}, "0 events"},
		{"combined", []string{"--op", "generate", "--errors", path}, "0 events"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}
			if code := RunLog(tt.args, stdout, stderr); code != exitSuccess {
				t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
			}
			if !strings.HasSuffix(stdout.String(), tt.want+"\n") {
				t.Errorf("expected %q, got:\n%s", tt.want, stdout.String())
			}
		})
	}
}

func TestRunLog_JSONL(t *testing.T) {
	path := writeTestLog(t)
	stdout := &bytes.Buffer{}

	if code := RunLog([]string{"-f", "jsonl", "--errors", path}, stdout, &bytes.Buffer{}); code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, code)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d:\n%s", len(lines), stdout.String())
	}
	var event map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &event); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if event["Input"] != "34970112333" {
		t.Errorf("unexpected event: %v", event)
	}
}

func TestRunLog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no file", nil, "log file path required"},
		{"bad op", []string{"--op", "delete", "x.plog"}, "unknown operation"},
		{"bad format", []string{"--format", "xml", "x.plog"}, "unknown format"},
		{"missing file", []string{filepath.Join(t.TempDir(), "x.plog")}, "failed to open log file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stderr := &bytes.Buffer{}
			if code := RunLog(tt.args, &bytes.Buffer{}, stderr); code != exitCommandError {
				t.Errorf("expected exit code %d, got %d", exitCommandError, code)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("expected %q in stderr, got: %s", tt.wantErr, stderr.String())
			}
		})
	}
}
