package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func newTestSlog(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSlogAdapterGenerate(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newTestSlog(&buf))

	long := uint16(3840)
	adapter.Log(Event{
		Timestamp: time.Now(),
		ID:        "evt-1",
		Operation: OperationGenerate,
		Format:    FormatBoth,
		Output:    &OutputData{QRCode: "MT:-24J042C00KA0648G00", ManualCode: "34970112332"},
		Payload:   &PayloadFields{VendorID: 0xFFF1, ProductID: 0x8001, LongDiscriminator: &long, ShortDiscriminator: 15},
	})

	out := buf.String()
	for _, want := range []string{
		"level=DEBUG", "msg=codec", "event_id=evt-1", "op=GENERATE", "format=BOTH",
		"qrcode=MT:-24J042C00KA0648G00", "manualcode=34970112332",
		"long_discriminator=3840", "vendor_id=65521", "product_id=32769",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSlogAdapterError(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(newTestSlog(&buf))

	adapter.Log(Event{
		ID:        "evt-2",
		Operation: OperationParse,
		Format:    FormatManualCode,
		Input:     "34970112333",
		Error:     &ErrorEventData{Kind: "ChecksumMismatch", Message: "payload: checksum mismatch"},
	})

	out := buf.String()
	for _, want := range []string{"level=WARN", "input=34970112333", "error_kind=ChecksumMismatch"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "vendor_id") {
		t.Errorf("unexpected payload attrs:\n%s", out)
	}
}

func TestSlogAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	NewSlogAdapter(logger).Log(Event{ID: "quiet"})

	if buf.Len() != 0 {
		t.Errorf("debug event written at info level: %s", buf.String())
	}
}
