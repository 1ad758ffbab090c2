package log

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestEventRoundTrip(t *testing.T) {
	disc := uint8(2)
	long := uint16(3840)
	event := Event{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC),
		ID:        "b7c1e0a2-4f0e-4c5e-9d7a-1a2b3c4d5e6f",
		RunID:     "run-1",
		Operation: OperationGenerate,
		Format:    FormatBoth,
		Output:    &OutputData{QRCode: "MT:-24J042C00KA0648G00", ManualCode: "34970112332"},
		Payload: &PayloadFields{
			VendorID:           0xFFF1,
			ProductID:          0x8001,
			Discovery:          &disc,
			LongDiscriminator:  &long,
			ShortDiscriminator: 0xF,
			Passcode:           20202021,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}

	if !decoded.Timestamp.Equal(event.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", decoded.Timestamp, event.Timestamp)
	}
	if decoded.ID != event.ID || decoded.RunID != event.RunID {
		t.Errorf("ids = %q/%q", decoded.ID, decoded.RunID)
	}
	if decoded.Output == nil || *decoded.Output != *event.Output {
		t.Errorf("Output = %+v", decoded.Output)
	}
	if decoded.Payload == nil || decoded.Payload.LongDiscriminator == nil || *decoded.Payload.LongDiscriminator != 3840 {
		t.Errorf("Payload = %+v", decoded.Payload)
	}
	if decoded.Payload.Discovery == nil || *decoded.Payload.Discovery != 2 {
		t.Errorf("Discovery = %v", decoded.Payload.Discovery)
	}
	if decoded.Error != nil {
		t.Errorf("Error = %+v, want nil", decoded.Error)
	}
}

func TestEncodeEventDeterministic(t *testing.T) {
	event := Event{
		Timestamp: time.Unix(0, 0).UTC(),
		ID:        "id",
		Operation: OperationParse,
		Format:    FormatQRCode,
		Input:     "MT:-24J042C00KA0648G00",
		Error:     &ErrorEventData{Kind: "InvalidCharacter", Message: "bad"},
	}

	a, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	b, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("encoding is not deterministic")
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for i, op := range []Operation{OperationGenerate, OperationParse} {
		if err := enc.Encode(Event{ID: string(rune('a' + i)), Operation: op}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	dec := NewDecoder(&buf)
	var got []Event
	for {
		var e Event
		if err := dec.Decode(&e); err != nil {
			if err == io.EOF {
				break
			}
			t.Fatalf("Decode: %v", err)
		}
		got = append(got, e)
	}

	if len(got) != 2 || got[0].ID != "a" || got[1].Operation != OperationParse {
		t.Errorf("got %+v", got)
	}
}

func TestDecodeEventGarbage(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); !errors.Is(err, ErrCorrupt) {
		t.Errorf("DecodeEvent = %v, want ErrCorrupt", err)
	}
}

func TestDecodeEventDuplicateKey(t *testing.T) {
	// {2: "a", 2: "b"}
	data := []byte{0xa2, 0x02, 0x61, 'a', 0x02, 0x61, 'b'}
	if _, err := DecodeEvent(data); !errors.Is(err, ErrCorrupt) {
		t.Errorf("DecodeEvent = %v, want ErrCorrupt", err)
	}
}
