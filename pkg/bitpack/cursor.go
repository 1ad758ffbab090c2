package bitpack

import "fmt"

// Order selects how bits are assigned to byte positions.
type Order uint8

const (
	// MSBFirst fills each byte from bit 7 down to bit 0.
	MSBFirst Order = iota
	// LSBFirst fills each byte from bit 0 up to bit 7.
	LSBFirst
)

// String returns the order name.
func (o Order) String() string {
	switch o {
	case MSBFirst:
		return "MSB-first"
	case LSBFirst:
		return "LSB-first"
	default:
		return fmt.Sprintf("Order(%d)", o)
	}
}

// mask returns the bit within byte (pos/8) that stream position pos maps to.
func (o Order) mask(pos uint) byte {
	if o == LSBFirst {
		return 1 << (pos % 8)
	}
	return 0x80 >> (pos % 8)
}

// Writer appends bit fields to a fixed-size buffer.
type Writer struct {
	buf   []byte
	order Order
	pos   uint
}

// NewWriter creates a Writer over a zeroed buffer of size bytes.
func NewWriter(order Order, size int) *Writer {
	return &Writer{buf: make([]byte, size), order: order}
}

// WriteBits appends the low width bits of value.
// It fails if value does not fit in width bits or the buffer is full.
func (w *Writer) WriteBits(value uint64, width uint) error {
	if width > 64 {
		return fmt.Errorf("%w: width %d", ErrWidth, width)
	}
	if width < 64 && value>>width != 0 {
		return fmt.Errorf("%w: %d does not fit in %d bits", ErrOverflow, value, width)
	}
	if w.pos+width > uint(len(w.buf))*8 {
		return fmt.Errorf("%w: %d bits at offset %d", ErrShortBuffer, width, w.pos)
	}

	for i := range width {
		var bit uint64
		if w.order == LSBFirst {
			bit = (value >> i) & 1
		} else {
			bit = (value >> (width - 1 - i)) & 1
		}
		if bit != 0 {
			w.buf[w.pos/8] |= w.order.mask(w.pos)
		}
		w.pos++
	}
	return nil
}

// Len returns the number of bits written.
func (w *Writer) Len() uint {
	return w.pos
}

// Bytes returns the underlying buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reader consumes bit fields from a buffer.
type Reader struct {
	buf   []byte
	order Order
	pos   uint
}

// NewReader creates a Reader positioned at bit 0 of buf.
func NewReader(order Order, buf []byte) *Reader {
	return &Reader{buf: buf, order: order}
}

// Seek moves the cursor to bit offset pos.
func (r *Reader) Seek(pos uint) error {
	if pos > uint(len(r.buf))*8 {
		return fmt.Errorf("%w: seek to %d", ErrShortBuffer, pos)
	}
	r.pos = pos
	return nil
}

// ReadBits consumes width bits and returns them as an unsigned value.
func (r *Reader) ReadBits(width uint) (uint64, error) {
	if width > 64 {
		return 0, fmt.Errorf("%w: width %d", ErrWidth, width)
	}
	if r.pos+width > uint(len(r.buf))*8 {
		return 0, fmt.Errorf("%w: %d bits at offset %d", ErrShortBuffer, width, r.pos)
	}

	var value uint64
	for i := range width {
		if r.buf[r.pos/8]&r.order.mask(r.pos) != 0 {
			if r.order == LSBFirst {
				value |= 1 << i
			} else {
				value |= 1 << (width - 1 - i)
			}
		}
		r.pos++
	}
	return value, nil
}

// Slice reads width bits starting at bit offset in buf.
func Slice(order Order, buf []byte, offset, width uint) (uint64, error) {
	r := NewReader(order, buf)
	if err := r.Seek(offset); err != nil {
		return 0, err
	}
	return r.ReadBits(width)
}
