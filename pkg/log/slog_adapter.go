package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes codec events to an slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at Debug level, or Warn level for failures.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("event_id", event.ID),
		slog.String("op", event.Operation.String()),
		slog.String("format", event.Format.String()),
	}
	if event.RunID != "" {
		attrs = append(attrs, slog.String("run_id", event.RunID))
	}
	if event.Input != "" {
		attrs = append(attrs, slog.String("input", event.Input))
	}
	if event.Output != nil {
		if event.Output.QRCode != "" {
			attrs = append(attrs, slog.String("qrcode", event.Output.QRCode))
		}
		if event.Output.ManualCode != "" {
			attrs = append(attrs, slog.String("manualcode", event.Output.ManualCode))
		}
	}
	if p := event.Payload; p != nil {
		attrs = append(attrs,
			slog.Uint64("flow", uint64(p.Flow)),
			slog.Uint64("short_discriminator", uint64(p.ShortDiscriminator)),
		)
		if p.LongDiscriminator != nil {
			attrs = append(attrs, slog.Uint64("long_discriminator", uint64(*p.LongDiscriminator)))
		}
		if p.VendorID != 0 || p.ProductID != 0 {
			attrs = append(attrs,
				slog.Uint64("vendor_id", uint64(p.VendorID)),
				slog.Uint64("product_id", uint64(p.ProductID)),
			)
		}
	}

	level := slog.LevelDebug
	if event.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_kind", event.Error.Kind),
			slog.String("error_msg", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), level, "codec", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
