package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mash-protocol/setup-payload/pkg/log"
)

const testManifest = `defaults:
  vendor_id: 0xFFF1
  product_id: 0x8001
  discovery: 4
devices:
  - serial: SN001
    discriminator: 3840
    passcode: 20202021
  - serial: SN002
    flow: custom
    discriminator: 3840
    passcode: 20202021
  - serial: SN003
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "devices.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestRunBatch_Table(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := RunBatch([]string{writeManifest(t, testManifest)}, stdout, stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got:\n%s", stdout.String())
	}
	if !strings.HasPrefix(lines[0], "SERIAL") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "34970112332") || !strings.Contains(lines[1], "MT:-24J0AFN00KA0648G00") {
		t.Errorf("unexpected SN001 row: %s", lines[1])
	}
	if !strings.Contains(lines[2], "749701123365521327694") {
		t.Errorf("unexpected SN002 row: %s", lines[2])
	}
}

func TestRunBatch_CSV(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := RunBatch([]string{"--format", "csv", writeManifest(t, testManifest)}, stdout, stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
	}

	records, err := csv.NewReader(stdout).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}
	if got := records[1]; got[0] != "SN001" || got[1] != "3840" || got[2] != "20202021" || got[3] != "34970112332" {
		t.Errorf("unexpected record: %v", got)
	}
}

func TestRunBatch_JSONAndLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "batch.plog")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	code := RunBatch([]string{"-f", "json", "--log-file", logPath, writeManifest(t, testManifest)}, stdout, stderr)
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d (stderr: %s)", exitSuccess, code, stderr.String())
	}

	var out BatchOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Devices) != 3 || out.RunID == "" {
		t.Fatalf("unexpected output: %+v", out)
	}
	if !out.Devices[2].Generated || out.Devices[0].Generated {
		t.Errorf("generated flags wrong: %+v", out.Devices)
	}

	reader, err := log.NewFilteredReader(logPath, log.Filter{RunID: out.RunID})
	if err != nil {
		t.Fatalf("NewFilteredReader: %v", err)
	}
	defer reader.Close()

	var serials []string
	for {
		e, err := reader.Next()
		if err != nil {
			break
		}
		serials = append(serials, e.Input)
	}
	if strings.Join(serials, ",") != "SN001,SN002,SN003" {
		t.Errorf("logged serials = %v", serials)
	}
}

func TestRunBatch_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		wantCode int
		wantErr  string
	}{
		{
			name:     "no manifest",
			args:     func(*testing.T) []string { return nil },
			wantCode: exitCommandError,
			wantErr:  "exactly one manifest file required",
		},
		{
			name:     "missing file",
			args:     func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "none.yaml")} },
			wantCode: exitCommandError,
			wantErr:  "no such file",
		},
		{
			name: "out of range entry",
			args: func(t *testing.T) []string {
				return []string{writeManifest(t, "devices:\n  - serial: A\n  - serial: B\n    discriminator: 5000\n")}
			},
			wantCode: exitPayloadError,
			wantErr:  "device 1 (B)",
		},
		{
			name: "duplicate serial",
			args: func(t *testing.T) []string {
				return []string{writeManifest(t, "devices:\n  - serial: A\n  - serial: A\n")}
			},
			wantCode: exitCommandError,
			wantErr:  "duplicate serial",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			stderr := &bytes.Buffer{}

			code := RunBatch(tt.args(t), stdout, stderr)
			if code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, code)
			}
			if !strings.Contains(stderr.String(), tt.wantErr) {
				t.Errorf("expected %q in stderr, got: %s", tt.wantErr, stderr.String())
			}
			if stdout.Len() != 0 {
				t.Errorf("expected no stdout, got: %s", stdout.String())
			}
		})
	}
}
