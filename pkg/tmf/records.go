package tmf

import (
	"bytes"
	"fmt"
)

// Record is a decoded block. The concrete type is selected by the block tag.
type Record interface {
	Tag() Tag
}

// Encodable is a record that can be written into a block of its own tag.
type Encodable interface {
	Record
	// EncodedSize is the total record size including the block header.
	EncodedSize() int
	// EncodeTo writes the record fields into b, which spans the whole
	// record. The block header bytes are left untouched.
	EncodeTo(b []byte)
}

const (
	meshSize             = 48
	skeletonSize         = 28
	animationSize        = 28
	nodeHeaderSize       = 108
	geometryInstanceSize = 36
	cameraSize           = 140
)

// Header is the first block of every container.
type Header struct {
	Magic uint32
	Top   Offset
}

func (Header) Tag() Tag         { return TagHeader }
func (Header) EncodedSize() int { return HeaderSize }

func (h Header) EncodeTo(b []byte) {
	le.PutUint32(b[12:], h.Magic)
	putOffset(b, 16, h.Top)
}

func decodeHeader(b []byte) Header {
	return Header{Magic: le.Uint32(b[12:]), Top: getOffset(b, 16)}
}

// Layout is the primitive topology of a mesh.
type Layout uint32

const (
	LayoutPoints Layout = iota
	LayoutLines
	LayoutLineLoop
	LayoutLineStrip
	LayoutTriangles
	LayoutTriangleStrip
	LayoutTriangleFan
)

var layoutNames = [...]string{
	LayoutPoints:        "points",
	LayoutLines:         "lines",
	LayoutLineLoop:      "line-loop",
	LayoutLineStrip:     "line-strip",
	LayoutTriangles:     "triangles",
	LayoutTriangleStrip: "triangle-strip",
	LayoutTriangleFan:   "triangle-fan",
}

func (l Layout) String() string {
	if int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return fmt.Sprintf("layout(%d)", uint32(l))
}

// MarshalText encodes the layout by its source keyword.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// ParseLayout maps an assembler layout word to a Layout.
func ParseLayout(s string) (Layout, bool) {
	for i, name := range layoutNames {
		if name == s {
			return Layout(i), true
		}
	}
	return 0, false
}

// Mesh references the index, vertex, axes and metadata blocks of a mesh.
type Mesh struct {
	Layout   Layout
	Indices  Offset
	Vertices Offset
	Axes     Offset
	Metadata Offset
}

func (Mesh) Tag() Tag         { return TagMesh }
func (Mesh) EncodedSize() int { return meshSize }

func (m Mesh) EncodeTo(b []byte) {
	le.PutUint32(b[12:], uint32(m.Layout))
	putOffset(b, 16, m.Indices)
	putOffset(b, 24, m.Vertices)
	putOffset(b, 32, m.Axes)
	putOffset(b, 40, m.Metadata)
}

func decodeMesh(b []byte) Mesh {
	return Mesh{
		Layout:   Layout(le.Uint32(b[12:])),
		Indices:  getOffset(b, 16),
		Vertices: getOffset(b, 24),
		Axes:     getOffset(b, 32),
		Metadata: getOffset(b, 40),
	}
}

// Skeleton references a bone array and a table of animation sequences.
type Skeleton struct {
	Bones     Offset
	Sequences Offset
}

func (Skeleton) Tag() Tag         { return TagSkeleton }
func (Skeleton) EncodedSize() int { return skeletonSize }

func (s Skeleton) EncodeTo(b []byte) {
	putOffset(b, 12, s.Bones)
	putOffset(b, 20, s.Sequences)
}

func decodeSkeleton(b []byte) Skeleton {
	return Skeleton{Bones: getOffset(b, 12), Sequences: getOffset(b, 20)}
}

// SkeletonAnimation is a time span over an array of key frames.
type SkeletonAnimation struct {
	Start     float32
	End       float32
	KeyFrames Offset
}

func (SkeletonAnimation) Tag() Tag         { return TagAnimation }
func (SkeletonAnimation) EncodedSize() int { return animationSize }

func (a SkeletonAnimation) EncodeTo(b []byte) {
	putF32(b, 12, a.Start)
	putF32(b, 16, a.End)
	putOffset(b, 20, a.KeyFrames)
}

func decodeAnimation(b []byte) SkeletonAnimation {
	return SkeletonAnimation{
		Start:     getF32(b, 12),
		End:       getF32(b, 16),
		KeyFrames: getOffset(b, 20),
	}
}

// Node is a named transform with an ordered list of child blocks.
type Node struct {
	Name      FixedString
	Transform Matrix
	Children  []Offset
}

func (Node) Tag() Tag           { return TagNode }
func (n Node) EncodedSize() int { return nodeHeaderSize + 8*len(n.Children) }

func (n Node) EncodeTo(b []byte) {
	putFixedString(b, 12, n.Name)
	putMatrix(b, 44, n.Transform)
	for i, c := range n.Children {
		putOffset(b, nodeHeaderSize+8*i, c)
	}
}

func decodeNode(b []byte, count int) Node {
	n := Node{
		Name:      getFixedString(b, 12),
		Transform: getMatrix(b, 44),
		Children:  make([]Offset, count),
	}
	for i := range n.Children {
		n.Children[i] = getOffset(b, nodeHeaderSize+8*i)
	}
	return n
}

// GeometryInstance binds a mesh to a skeleton and a material.
type GeometryInstance struct {
	Mesh     Offset
	Skeleton Offset
	Material Offset
}

func (GeometryInstance) Tag() Tag         { return TagGeometryInstance }
func (GeometryInstance) EncodedSize() int { return geometryInstanceSize }

func (g GeometryInstance) EncodeTo(b []byte) {
	putOffset(b, 12, g.Mesh)
	putOffset(b, 20, g.Skeleton)
	putOffset(b, 28, g.Material)
}

func decodeGeometryInstance(b []byte) GeometryInstance {
	return GeometryInstance{
		Mesh:     getOffset(b, 12),
		Skeleton: getOffset(b, 20),
		Material: getOffset(b, 28),
	}
}

// Camera holds view and projection matrices.
type Camera struct {
	View       Matrix
	Projection Matrix
}

func (Camera) Tag() Tag         { return TagCamera }
func (Camera) EncodedSize() int { return cameraSize }

func (c Camera) EncodeTo(b []byte) {
	putMatrix(b, 12, c.View)
	putMatrix(b, 12+matrixSize, c.Projection)
}

func decodeCamera(b []byte) Camera {
	return Camera{View: getMatrix(b, 12), Projection: getMatrix(b, 12+matrixSize)}
}

// External points at data stored outside the container.
type External struct {
	URL string
}

func (External) Tag() Tag { return TagExternal }

// EncodedSize includes the terminating NUL, padded to Alignment.
func (e External) EncodedSize() int { return alignUp(BlockHeaderSize + len(e.URL) + 1) }

func (e External) EncodeTo(b []byte) {
	copy(b[BlockHeaderSize:], e.URL)
}

func decodeExternal(b []byte) External {
	tail := b[BlockHeaderSize:]
	if i := bytes.IndexByte(tail, 0); i >= 0 {
		tail = tail[:i]
	}
	return External{URL: string(tail)}
}

// ArrayBlock describes an array shaped block without decoding its elements.
type ArrayBlock struct {
	Block       Block
	ElementSize int
	Count       int
}

func (a ArrayBlock) Tag() Tag { return a.Block.Tag }

// Unknown is returned for blocks whose tag has no registered shape.
type Unknown struct {
	Block Block
}

func (u Unknown) Tag() Tag { return u.Block.Tag }
