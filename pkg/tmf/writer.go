package tmf

import "fmt"

// Writer appends blocks to a Buffer. Blocks are written once, in increasing
// offset order, and each starts on an Alignment boundary. Nothing ever
// rewrites the bytes of another block.
type Writer struct {
	buf       *Buffer
	header    Handle
	hasHeader bool
}

// NewWriter returns a Writer appending to buf. A nil buf allocates a new one.
func NewWriter(buf *Buffer) *Writer {
	if buf == nil {
		buf = NewBuffer(0)
	}
	return &Writer{buf: buf}
}

// Buffer returns the underlying buffer.
func (w *Writer) Buffer() *Buffer {
	return w.buf
}

// Bytes returns the assembled container.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Append allocates a zeroed block of tag t with extra trailing bytes beyond
// the fixed part of the shape, and writes its tag and size.
func (w *Writer) Append(t Tag, extra int) (Handle, error) {
	base, ok := HeaderSizeOf(t)
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrUnknownTag, t)
	}
	if extra < 0 {
		return Handle{}, fmt.Errorf("%w: negative capacity %d", ErrOutOfBounds, extra)
	}
	if err := w.pad(); err != nil {
		return Handle{}, err
	}
	size := base + extra
	off, err := w.buf.Append(size)
	if err != nil {
		return Handle{}, err
	}
	b, err := w.buf.At(off, BlockHeaderSize)
	if err != nil {
		return Handle{}, err
	}
	putBlockHeader(b, t, uint64(size))
	return Handle{off: off, buf: w.buf}, nil
}

// pad zero fills up to the next Alignment boundary so every block starts
// aligned even after an array of 1 or 2 byte elements.
func (w *Writer) pad() error {
	size := int(w.buf.Size())
	if gap := alignUp(size) - size; gap > 0 {
		_, err := w.buf.Append(gap)
		return err
	}
	return nil
}

// AppendRecord appends a block sized for rec and encodes rec into it.
func (w *Writer) AppendRecord(rec Encodable) (Handle, error) {
	base, ok := HeaderSizeOf(rec.Tag())
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrUnknownTag, rec.Tag())
	}
	h, err := w.Append(rec.Tag(), rec.EncodedSize()-base)
	if err != nil {
		return Handle{}, err
	}
	if err := h.Store(rec); err != nil {
		return Handle{}, err
	}
	return h, nil
}

// AppendArray appends an array block holding items.
func AppendArray[E any, P element[E]](w *Writer, items []E) (Handle, error) {
	var zero E
	width := P(&zero).ByteSize()
	h, err := w.Append(P(&zero).ArrayTag(), width*len(items))
	if err != nil {
		return Handle{}, err
	}
	b, err := h.Bytes()
	if err != nil {
		return Handle{}, err
	}
	tail := b[BlockHeaderSize:]
	for i := range items {
		P(&items[i]).encode(tail[i*width : (i+1)*width])
	}
	return h, nil
}

// Header appends the container header on first use and returns it on every
// call. The header must be the first block in the buffer.
func (w *Writer) Header() (Handle, error) {
	if w.hasHeader {
		return w.header, nil
	}
	if w.buf.Size() != 0 {
		return Handle{}, ErrHeaderPlacement
	}
	h, err := w.AppendRecord(Header{Magic: Magic})
	if err != nil {
		return Handle{}, err
	}
	w.header = h
	w.hasHeader = true
	return h, nil
}

// SetTop records the root block of the container in the header.
func (w *Writer) SetTop(off Offset) error {
	h, err := w.Header()
	if err != nil {
		return err
	}
	return h.Store(Header{Magic: Magic, Top: off})
}

// Handle refers to a block by offset. Every access goes back through the
// buffer, so a Handle stays valid across growth.
type Handle struct {
	off Offset
	buf *Buffer
}

// Offset returns the block offset.
func (h Handle) Offset() Offset {
	return h.off
}

// Block reads the current block header.
func (h Handle) Block() (Block, error) {
	if h.buf == nil {
		return Block{}, ErrNullOffset
	}
	blk, ok := ReadBlock(h.buf.Bytes(), h.off)
	if !ok {
		return Block{}, fmt.Errorf("%w: block at %d", ErrOutOfBounds, h.off)
	}
	return blk, nil
}

// Bytes resolves the whole record. The slice is only valid until the next
// append on the same buffer.
func (h Handle) Bytes() ([]byte, error) {
	blk, err := h.Block()
	if err != nil {
		return nil, err
	}
	return h.buf.At(h.off, int(blk.Size))
}

// Store encodes rec into the block. The record tag must match the block tag
// and the record must fit in the block.
func (h Handle) Store(rec Encodable) error {
	blk, err := h.Block()
	if err != nil {
		return err
	}
	if blk.Tag != rec.Tag() {
		return fmt.Errorf("%w: block %s, record %s", ErrTagMismatch, blk.Tag, rec.Tag())
	}
	if uint64(rec.EncodedSize()) > blk.Size {
		return fmt.Errorf("%w: record needs %d bytes, block has %d", ErrOutOfBounds, rec.EncodedSize(), blk.Size)
	}
	b, err := h.buf.At(h.off, int(blk.Size))
	if err != nil {
		return err
	}
	rec.EncodeTo(b)
	return nil
}
