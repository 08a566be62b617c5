package tmf

import "fmt"

const (
	defaultBufferCapacity = 1024
	// maxInitialCapacity caps the up-front reservation; growth past it
	// happens on demand.
	maxInitialCapacity = 64 << 20
)

// Buffer is an append-only byte store addressed by offsets. Growth may move
// the backing array, so callers keep offsets rather than slices.
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty buffer with the given initial capacity, clamped
// to a sane reservation.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultBufferCapacity
	}
	capacity = min(capacity, maxInitialCapacity)
	return &Buffer{data: make([]byte, 0, capacity)}
}

// NewBufferFrom wraps existing bytes. The buffer takes ownership of p.
func NewBufferFrom(p []byte) *Buffer {
	return &Buffer{data: p}
}

// Append grows the buffer by n zeroed bytes and returns the offset of the
// first new byte.
func (b *Buffer) Append(n int) (Offset, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: negative append %d", ErrOutOfBounds, n)
	}
	start := len(b.data)
	if uint64(start)+uint64(n) > MaxBufferSize {
		return 0, ErrBufferTooLarge
	}
	end := start + n
	if end > cap(b.data) {
		b.grow(end)
	}
	b.data = b.data[:end]
	clear(b.data[start:end])
	return Offset(start), nil
}

// grow doubles the capacity until need fits.
func (b *Buffer) grow(need int) {
	newCap := cap(b.data) * 2
	if newCap == 0 {
		newCap = defaultBufferCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	data := make([]byte, len(b.data), newCap)
	copy(data, b.data)
	b.data = data
}

// Write copies p into the buffer at off. The whole range must already exist.
func (b *Buffer) Write(off Offset, p []byte) error {
	dst, err := b.At(off, len(p))
	if err != nil {
		return err
	}
	copy(dst, p)
	return nil
}

// At returns the n bytes starting at off. The slice is only valid until the
// next Append.
func (b *Buffer) At(off Offset, n int) ([]byte, error) {
	size := uint64(len(b.data))
	if n < 0 || uint64(off) > size || uint64(n) > size-uint64(off) {
		return nil, fmt.Errorf("%w: [%d, +%d) in buffer of %d bytes", ErrOutOfBounds, off, n, size)
	}
	return b.data[off : uint64(off)+uint64(n)], nil
}

// Size returns the current end of the buffer.
func (b *Buffer) Size() Offset {
	return Offset(len(b.data))
}

// Bytes returns the buffer contents. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}
