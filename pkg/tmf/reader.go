package tmf

import "fmt"

// Reader navigates a finished container. It never copies or mutates the
// buffer and holds no other state, so one Reader may be shared by many
// goroutines as long as the bytes are not modified.
type Reader struct {
	data []byte
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Bytes returns the container bytes.
func (r *Reader) Bytes() []byte {
	return r.data
}

// Size returns the container length.
func (r *Reader) Size() Offset {
	return Offset(len(r.data))
}

// Validate checks that the buffer starts with a well formed header.
func (r *Reader) Validate() error {
	if len(r.data) < BlockHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrTruncated, len(r.data))
	}
	tag := Tag(le.Uint32(r.data))
	if tag != TagHeader {
		if tag == TagHeader.Flipped() {
			return ErrFlipped
		}
		return fmt.Errorf("%w: leading tag %s", ErrNotContainer, tag)
	}
	blk, ok := ReadBlock(r.data, 0)
	if !ok || blk.Size != HeaderSize {
		return fmt.Errorf("%w: header block", ErrTruncated)
	}
	if h := decodeHeader(r.data); h.Magic != Magic {
		return fmt.Errorf("%w: %d", ErrBadMagic, h.Magic)
	}
	return nil
}

// IsFlipped reports whether the container appears to have been written with
// the opposite byte order. Such containers are rejected, not converted.
func (r *Reader) IsFlipped() bool {
	return len(r.data) >= 4 && Tag(le.Uint32(r.data)) == TagHeader.Flipped()
}

// Header returns the container header, or false if the buffer is not a
// recognised container.
func (r *Reader) Header() (Header, bool) {
	if r.Validate() != nil {
		return Header{}, false
	}
	return decodeHeader(r.data), true
}

// Top returns the root block offset, or false when the header is invalid or
// no root was recorded.
func (r *Reader) Top() (Offset, bool) {
	h, ok := r.Header()
	if !ok || h.Top.IsNull() {
		return Null, false
	}
	return h.Top, true
}

// BlockAt returns the block header at off, or false if the block does not
// lie inside the buffer.
func (r *Reader) BlockAt(off Offset) (Block, bool) {
	return ReadBlock(r.data, off)
}

// record returns the bytes of the block at off if it carries tag t and its
// size agrees with the registered shape. The null offset never resolves.
func (r *Reader) record(off Offset, t Tag) ([]byte, int, error) {
	if off.IsNull() {
		return nil, 0, ErrNullOffset
	}
	blk, ok := r.BlockAt(off)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrOutOfBounds, off)
	}
	if blk.Tag != t {
		return nil, 0, fmt.Errorf("%w: want %s, have %s at %d", ErrTagMismatch, t, blk.Tag, off)
	}
	count, err := elementCount(blk)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s at %d", err, t, off)
	}
	return r.data[off:blk.End()], count, nil
}

// Mesh returns the mesh at off, or false if off does not address a mesh.
func (r *Reader) Mesh(off Offset) (Mesh, bool) {
	b, _, err := r.record(off, TagMesh)
	if err != nil {
		return Mesh{}, false
	}
	return decodeMesh(b), true
}

// Skeleton returns the skeleton at off.
func (r *Reader) Skeleton(off Offset) (Skeleton, bool) {
	b, _, err := r.record(off, TagSkeleton)
	if err != nil {
		return Skeleton{}, false
	}
	return decodeSkeleton(b), true
}

// Animation returns the skeleton animation at off.
func (r *Reader) Animation(off Offset) (SkeletonAnimation, bool) {
	b, _, err := r.record(off, TagAnimation)
	if err != nil {
		return SkeletonAnimation{}, false
	}
	return decodeAnimation(b), true
}

// Node returns the node at off.
func (r *Reader) Node(off Offset) (Node, bool) {
	b, n, err := r.record(off, TagNode)
	if err != nil {
		return Node{}, false
	}
	return decodeNode(b, n), true
}

// GeometryInstance returns the geometry instance at off.
func (r *Reader) GeometryInstance(off Offset) (GeometryInstance, bool) {
	b, _, err := r.record(off, TagGeometryInstance)
	if err != nil {
		return GeometryInstance{}, false
	}
	return decodeGeometryInstance(b), true
}

// Camera returns the camera at off.
func (r *Reader) Camera(off Offset) (Camera, bool) {
	b, _, err := r.record(off, TagCamera)
	if err != nil {
		return Camera{}, false
	}
	return decodeCamera(b), true
}

// External returns the external reference at off.
func (r *Reader) External(off Offset) (External, bool) {
	b, _, err := r.record(off, TagExternal)
	if err != nil {
		return External{}, false
	}
	return decodeExternal(b), true
}

// OffsetTable returns the offset table at off.
func (r *Reader) OffsetTable(off Offset) (OffsetTable, bool) {
	a, ok := ArrayAt[NamedOffset](r, off)
	return OffsetTable{a}, ok
}

// Axes returns the axes table at off.
func (r *Reader) Axes(off Offset) (Axes, bool) {
	a, ok := ArrayAt[NamedAxis](r, off)
	return Axes{a}, ok
}

// ArrayAt returns a view of the array block at off whose elements are of
// type E. It reports false on a null or out of range offset, a tag that
// does not belong to E, or a size that does not divide into elements.
func ArrayAt[E any, P element[E]](r *Reader, off Offset) (Array[E], bool) {
	a, err := arrayAt[E, P](r, off)
	return a, err == nil
}

func arrayAt[E any, P element[E]](r *Reader, off Offset) (Array[E], error) {
	var zero E
	b, _, err := r.record(off, P(&zero).ArrayTag())
	if err != nil {
		return Array[E]{}, err
	}
	blk, _ := r.BlockAt(off)
	return newArray[E, P](blk, b[BlockHeaderSize:]), nil
}

// Walk visits every block in buffer order, starting with the header.
// Blocks start on Alignment boundaries, so the padding after a block is
// skipped. It stops with ErrCorruptBlock if a block header does not fit.
func (r *Reader) Walk(fn func(Block) error) error {
	var off Offset
	for off < r.Size() {
		blk, ok := r.BlockAt(off)
		if !ok {
			return fmt.Errorf("%w: at %d", ErrCorruptBlock, off)
		}
		if err := fn(blk); err != nil {
			return err
		}
		off = Offset(alignUp(int(blk.End())))
	}
	return nil
}
