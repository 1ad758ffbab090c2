package bitpack

import (
	"errors"
	"fmt"
)

// Packing errors.
var (
	ErrOverflow     = errors.New("bitpack: value overflows field")
	ErrWidth        = errors.New("bitpack: invalid field width")
	ErrShortBuffer  = errors.New("bitpack: buffer too short")
	ErrSize         = errors.New("bitpack: buffer size does not match layout")
	ErrUnknownField = errors.New("bitpack: unknown field")
)

// Field is a named unsigned integer of Width bits.
type Field struct {
	Name  string
	Width uint
}

// Values maps field names to their unsigned values.
type Values map[string]uint64

// Layout is an ordered sequence of fields with a fixed bit order.
type Layout struct {
	order   Order
	fields  []Field
	offsets map[string]uint
	bits    uint
}

// NewLayout creates a layout. It panics on duplicate names or on widths
// outside 1..64, since layouts are declared once at package level.
func NewLayout(order Order, fields ...Field) *Layout {
	l := &Layout{
		order:   order,
		fields:  append([]Field(nil), fields...),
		offsets: make(map[string]uint, len(fields)),
	}
	for _, f := range fields {
		if f.Width == 0 || f.Width > 64 {
			panic(fmt.Sprintf("bitpack: field %q has width %d", f.Name, f.Width))
		}
		if _, dup := l.offsets[f.Name]; dup {
			panic(fmt.Sprintf("bitpack: duplicate field %q", f.Name))
		}
		l.offsets[f.Name] = l.bits
		l.bits += f.Width
	}
	return l
}

// Order returns the layout's bit order.
func (l *Layout) Order() Order {
	return l.order
}

// Fields returns a copy of the field list.
func (l *Layout) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// Bits returns the total width of the layout.
func (l *Layout) Bits() uint {
	return l.bits
}

// Size returns the number of bytes a packed layout occupies.
func (l *Layout) Size() int {
	return int((l.bits + 7) / 8)
}

// Offset returns the bit offset of the named field.
func (l *Layout) Offset(name string) (uint, bool) {
	off, ok := l.offsets[name]
	return off, ok
}

// Pack serializes values in field order. Missing fields pack as zero.
func (l *Layout) Pack(values Values) ([]byte, error) {
	for name := range values {
		if _, ok := l.offsets[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}

	w := NewWriter(l.order, l.Size())
	for _, f := range l.fields {
		if err := w.WriteBits(values[f.Name], f.Width); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	return w.Bytes(), nil
}

// Unpack deserializes data, which must be exactly Size bytes.
func (l *Layout) Unpack(data []byte) (Values, error) {
	if len(data) != l.Size() {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSize, len(data), l.Size())
	}

	r := NewReader(l.order, data)
	values := make(Values, len(l.fields))
	for _, f := range l.fields {
		v, err := r.ReadBits(f.Width)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		values[f.Name] = v
	}
	return values, nil
}
