package tmf

import "math"

// Block is the header shared by every record: its tag and total size.
type Block struct {
	Offset Offset
	Tag    Tag
	Size   uint64
}

// End returns the offset one past the last byte of the block.
func (b Block) End() Offset {
	return b.Offset + Offset(b.Size)
}

// ReadBlock decodes the block header at off without knowing its shape.
// It reports false when the header or the sized record does not fit in buf.
func ReadBlock(buf []byte, off Offset) (Block, bool) {
	n := uint64(len(buf))
	o := uint64(off)
	if o > n || n-o < BlockHeaderSize {
		return Block{}, false
	}
	blk := Block{
		Offset: off,
		Tag:    Tag(le.Uint32(buf[o:])),
		Size:   le.Uint64(buf[o+4:]),
	}
	if blk.Size < BlockHeaderSize || blk.Size > n-o {
		return Block{}, false
	}
	return blk, true
}

func putBlockHeader(b []byte, tag Tag, size uint64) {
	le.PutUint32(b[0:], uint32(tag))
	le.PutUint64(b[4:], size)
}

// shape describes the static layout associated with a tag: the fixed part of
// the record and the width of the trailing elements, if any.
type shape struct {
	name    string
	header  int
	element int
}

var shapes = map[Tag]shape{
	TagHeader:           {"header", HeaderSize, 0},
	TagMesh:             {"mesh", meshSize, 0},
	TagSkeleton:         {"skeleton", skeletonSize, 0},
	TagAnimation:        {"skeleton-animation", animationSize, 0},
	TagNode:             {"node", nodeHeaderSize, 8},
	TagGeometryInstance: {"geometry-instance", geometryInstanceSize, 0},
	TagCamera:           {"camera", cameraSize, 0},
	TagExternal:         {"external", BlockHeaderSize, 1},
	TagOffsetTable:      {"offset-table", BlockHeaderSize, namedOffsetSize},
	TagAxes:             {"axes", BlockHeaderSize, namedAxisSize},
	TagIndex16:          {"index16", BlockHeaderSize, 2},
	TagIndex32:          {"index32", BlockHeaderSize, 4},
	TagVertexP2:         {"vertex-p2", BlockHeaderSize, vertexP2Size},
	TagVertexP2C4:       {"vertex-p2c4", BlockHeaderSize, vertexP2C4Size},
	TagVertexP3:         {"vertex-p3", BlockHeaderSize, vertexP3Size},
	TagVertexP3N3:       {"vertex-p3n3", BlockHeaderSize, vertexP3N3Size},
	TagVertexP3N3M2:     {"vertex-p3n3m2", BlockHeaderSize, vertexP3N3M2Size},
	TagVertexP3N3M2C4:   {"vertex-p3n3m2c4", BlockHeaderSize, vertexP3N3M2C4Size},
	TagVertexP3N3M2B4:   {"vertex-p3n3m2b4", BlockHeaderSize, vertexP3N3M2B4Size},
	TagSkeletonBone:     {"skeleton-bone", BlockHeaderSize, skeletonBoneSize},
	TagKeyFrame:         {"skeleton-animation-key-frame", BlockHeaderSize, keyFrameSize},
	TagReference:        {"reference", BlockHeaderSize, referenceSize},
}

// HeaderSizeOf returns the size of the fixed part of records with tag t.
func HeaderSizeOf(t Tag) (int, bool) {
	s, ok := shapes[t]
	return s.header, ok
}

// ElementSizeOf returns the width of trailing elements for tag t, or 0 for
// fixed size records.
func ElementSizeOf(t Tag) (int, bool) {
	s, ok := shapes[t]
	return s.element, ok
}

// ShapeName returns the assembler keyword for tag t, or "" for unknown tags.
func ShapeName(t Tag) string {
	return shapes[t].name
}

// KnownTag reports whether t belongs to a registered shape.
func KnownTag(t Tag) bool {
	_, ok := shapes[t]
	return ok
}

// elementCount validates blk against its registered shape and returns the
// number of trailing elements. Fixed records report zero.
func elementCount(blk Block) (int, error) {
	s, ok := shapes[blk.Tag]
	if !ok {
		return 0, ErrUnknownTag
	}
	if blk.Size < uint64(s.header) {
		return 0, ErrCorruptBlock
	}
	tail := blk.Size - uint64(s.header)
	if s.element == 0 {
		if tail != 0 {
			return 0, ErrCorruptBlock
		}
		return 0, nil
	}
	if blk.Tag == TagExternal {
		return int(tail), nil
	}
	if tail%uint64(s.element) != 0 {
		return 0, ErrMisaligned
	}
	count := tail / uint64(s.element)
	if count > math.MaxInt32 {
		return 0, ErrCorruptBlock
	}
	return int(count), nil
}
