package tmf

import "fmt"

// Decode reads the block at off and returns it as the record type selected
// by its tag. Array shaped blocks decode to ArrayBlock and unregistered tags
// to Unknown; neither is an error.
func (r *Reader) Decode(off Offset) (Record, error) {
	if off.IsNull() {
		return nil, ErrNullOffset
	}
	blk, ok := r.BlockAt(off)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrOutOfBounds, off)
	}
	if !KnownTag(blk.Tag) {
		return Unknown{Block: blk}, nil
	}
	b, count, err := r.record(off, blk.Tag)
	if err != nil {
		return nil, err
	}
	switch blk.Tag {
	case TagHeader:
		return decodeHeader(b), nil
	case TagMesh:
		return decodeMesh(b), nil
	case TagSkeleton:
		return decodeSkeleton(b), nil
	case TagAnimation:
		return decodeAnimation(b), nil
	case TagNode:
		return decodeNode(b, count), nil
	case TagGeometryInstance:
		return decodeGeometryInstance(b), nil
	case TagCamera:
		return decodeCamera(b), nil
	case TagExternal:
		return decodeExternal(b), nil
	default:
		width, _ := ElementSizeOf(blk.Tag)
		return ArrayBlock{Block: blk, ElementSize: width, Count: count}, nil
	}
}
