package tmf

import (
	"fmt"
	"math/bits"
)

// Tag identifies the shape of a block. It packs four ASCII bytes with the
// first character in the low byte, so the little-endian encoding on disk
// reads as the identifier text.
type Tag uint32

// Block shape tags.
const (
	TagHeader           Tag = 'H' | 'D'<<8 | 'R'<<16 | '3'<<24
	TagMesh             Tag = 'M' | 'E'<<8 | 'S'<<16 | 'H'<<24
	TagSkeleton         Tag = 'S' | 'K'<<8 | 'E'<<16 | 'L'<<24
	TagAnimation        Tag = 'A' | 'N'<<8 | 'I'<<16 | 'M'<<24
	TagNode             Tag = 'N' | 'O'<<8 | 'D'<<16 | 'E'<<24
	TagGeometryInstance Tag = '#' | 'G'<<8 | 'E'<<16 | 'O'<<24
	TagCamera           Tag = 'C' | 'A'<<8 | 'M'<<16 | '4'<<24
	TagExternal         Tag = 'E' | 'X'<<8 | 'R'<<16 | 'N'<<24
	TagOffsetTable      Tag = '#' | 'O'<<8 | 'F'<<16 | 'S'<<24
	TagAxes             Tag = '#' | 'A'<<8 | 'X'<<16 | 'E'<<24
	TagIndex16          Tag = 'I' | 'N'<<8 | '1'<<16 | '6'<<24
	TagIndex32          Tag = 'I' | 'N'<<8 | '3'<<16 | '2'<<24
	TagVertexP2         Tag = '2' | '0'<<8 | '0'<<16 | '0'<<24
	TagVertexP2C4       Tag = '2' | '4'<<8 | '0'<<16 | '0'<<24
	TagVertexP3         Tag = '3' | '0'<<8 | '0'<<16 | '0'<<24
	TagVertexP3N3       Tag = '3' | '3'<<8 | '0'<<16 | '0'<<24
	TagVertexP3N3M2     Tag = '3' | '3'<<8 | '2'<<16 | '0'<<24
	TagVertexP3N3M2C4   Tag = '3' | '3'<<8 | '2'<<16 | '4'<<24
	TagVertexP3N3M2B4   Tag = '3' | '3'<<8 | 'B'<<16 | '4'<<24
	TagSkeletonBone     Tag = 'B' | 'O'<<8 | 'N'<<16 | 'E'<<24
	TagKeyFrame         Tag = 'K' | 'E'<<8 | 'Y'<<16 | 'F'<<24
	TagReference        Tag = '#' | 'R'<<8 | 'E'<<16 | 'F'<<24
)

// TagFromIdentifier packs a four character identifier into a Tag.
// Shorter identifiers are padded with zero bytes; extra characters are ignored.
func TagFromIdentifier(id string) Tag {
	var t Tag
	for i := 0; i < 4 && i < len(id); i++ {
		t |= Tag(id[i]) << (8 * i)
	}
	return t
}

// Identifier unpacks the tag into its four character identifier.
func (t Tag) Identifier() string {
	b := [4]byte{byte(t), byte(t >> 8), byte(t >> 16), byte(t >> 24)}
	return string(b[:])
}

// String returns the identifier, or a hex form when the tag is not printable.
func (t Tag) String() string {
	id := t.Identifier()
	for i := 0; i < len(id); i++ {
		if id[i] < 0x20 || id[i] > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(t))
		}
	}
	return id
}

// MarshalText encodes the tag as its identifier text.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Flipped returns the tag as it would read from a buffer written with the
// opposite byte order.
func (t Tag) Flipped() Tag {
	return Tag(bits.ReverseBytes32(uint32(t)))
}
