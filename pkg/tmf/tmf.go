// Package tmf implements the tagged model format: a self-relative binary
// container for meshes, skeletons, animations and scene graphs.
//
// A container is a sequence of blocks. Every block starts with a 12 byte
// header (tag u32, size u64) and blocks refer to each other through
// absolute byte offsets from the start of the buffer. The header block
// always sits at offset 0, which is why offset 0 doubles as the null
// reference.
//
// All fields are little-endian and packed on 4 byte boundaries.
package tmf

// Offset is a byte displacement from the start of a container.
// The zero offset means "no reference".
type Offset uint64

const (
	// Alignment is the packing boundary for every field in a record.
	Alignment = 4

	// BlockHeaderSize is the size of the tag and size fields shared by all blocks.
	BlockHeaderSize = 12

	// HeaderSize is the total size of the container header block.
	HeaderSize = 24

	// Magic identifies a container header.
	Magic uint32 = 42

	// FixedStringSize is the width of names embedded in records.
	FixedStringSize = 32

	// MaxBufferSize bounds the growable buffer.
	MaxBufferSize = 1 << 40
)

// Null is the null reference.
const Null Offset = 0

// IsNull reports whether o is the null reference.
func (o Offset) IsNull() bool { return o == Null }
