package tmf

// Element is a fixed width, tag free record stored in an array block.
type Element interface {
	// ArrayTag is the tag of array blocks holding this element type.
	ArrayTag() Tag
	// ByteSize is the encoded width of one element.
	ByteSize() int
}

// element is satisfied by pointers to the element types in this package.
type element[E any] interface {
	*E
	Element
	decode(b []byte)
	encode(b []byte)
}

const (
	vertexP2Size       = 8
	vertexP2C4Size     = 24
	vertexP3Size       = 12
	vertexP3N3Size     = 24
	vertexP3N3M2Size   = 32
	vertexP3N3M2C4Size = 48
	vertexP3N3M2B4Size = 52
	namedOffsetSize    = FixedStringSize + 8
	namedAxisSize      = FixedStringSize + 7*4
	skeletonBoneSize   = FixedStringSize + 4 + matrixSize
	keyFrameSize       = 12 + matrixSize
	referenceSize      = 8
)

// Index16 is a 16-bit vertex index.
type Index16 uint16

func (Index16) ArrayTag() Tag      { return TagIndex16 }
func (Index16) ByteSize() int      { return 2 }
func (i *Index16) decode(b []byte) { *i = Index16(le.Uint16(b)) }
func (i *Index16) encode(b []byte) { le.PutUint16(b, uint16(*i)) }

// Index32 is a 32-bit vertex index.
type Index32 uint32

func (Index32) ArrayTag() Tag      { return TagIndex32 }
func (Index32) ByteSize() int      { return 4 }
func (i *Index32) decode(b []byte) { *i = Index32(le.Uint32(b)) }
func (i *Index32) encode(b []byte) { le.PutUint32(b, uint32(*i)) }

// Reference is an offset stored as an array element.
type Reference Offset

func (Reference) ArrayTag() Tag      { return TagReference }
func (Reference) ByteSize() int      { return referenceSize }
func (r *Reference) decode(b []byte) { *r = Reference(le.Uint64(b)) }
func (r *Reference) encode(b []byte) { le.PutUint64(b, uint64(*r)) }

// VertexP2 is a 2D position.
type VertexP2 struct {
	Position [2]float32
}

func (VertexP2) ArrayTag() Tag      { return TagVertexP2 }
func (VertexP2) ByteSize() int      { return vertexP2Size }
func (v *VertexP2) decode(b []byte) { getF32s(v.Position[:], b, 0) }
func (v *VertexP2) encode(b []byte) { putF32s(b, 0, v.Position[:]) }

// VertexP2C4 is a 2D position with an RGBA color.
type VertexP2C4 struct {
	VertexP2
	Color [4]float32
}

func (VertexP2C4) ArrayTag() Tag { return TagVertexP2C4 }
func (VertexP2C4) ByteSize() int { return vertexP2C4Size }

func (v *VertexP2C4) decode(b []byte) {
	v.VertexP2.decode(b)
	getF32s(v.Color[:], b, vertexP2Size)
}

func (v *VertexP2C4) encode(b []byte) {
	v.VertexP2.encode(b)
	putF32s(b, vertexP2Size, v.Color[:])
}

// VertexP3 is a 3D position.
type VertexP3 struct {
	Position [3]float32
}

func (VertexP3) ArrayTag() Tag      { return TagVertexP3 }
func (VertexP3) ByteSize() int      { return vertexP3Size }
func (v *VertexP3) decode(b []byte) { getF32s(v.Position[:], b, 0) }
func (v *VertexP3) encode(b []byte) { putF32s(b, 0, v.Position[:]) }

// VertexP3N3 adds a normal to VertexP3.
type VertexP3N3 struct {
	VertexP3
	Normal [3]float32
}

func (VertexP3N3) ArrayTag() Tag { return TagVertexP3N3 }
func (VertexP3N3) ByteSize() int { return vertexP3N3Size }

func (v *VertexP3N3) decode(b []byte) {
	v.VertexP3.decode(b)
	getF32s(v.Normal[:], b, vertexP3Size)
}

func (v *VertexP3N3) encode(b []byte) {
	v.VertexP3.encode(b)
	putF32s(b, vertexP3Size, v.Normal[:])
}

// VertexP3N3M2 adds texture mapping coordinates to VertexP3N3.
type VertexP3N3M2 struct {
	VertexP3N3
	Mapping [2]float32
}

func (VertexP3N3M2) ArrayTag() Tag { return TagVertexP3N3M2 }
func (VertexP3N3M2) ByteSize() int { return vertexP3N3M2Size }

func (v *VertexP3N3M2) decode(b []byte) {
	v.VertexP3N3.decode(b)
	getF32s(v.Mapping[:], b, vertexP3N3Size)
}

func (v *VertexP3N3M2) encode(b []byte) {
	v.VertexP3N3.encode(b)
	putF32s(b, vertexP3N3Size, v.Mapping[:])
}

// VertexP3N3M2C4 adds an RGBA color to VertexP3N3M2.
type VertexP3N3M2C4 struct {
	VertexP3N3M2
	Color [4]float32
}

func (VertexP3N3M2C4) ArrayTag() Tag { return TagVertexP3N3M2C4 }
func (VertexP3N3M2C4) ByteSize() int { return vertexP3N3M2C4Size }

func (v *VertexP3N3M2C4) decode(b []byte) {
	v.VertexP3N3M2.decode(b)
	getF32s(v.Color[:], b, vertexP3N3M2Size)
}

func (v *VertexP3N3M2C4) encode(b []byte) {
	v.VertexP3N3M2.encode(b)
	putF32s(b, vertexP3N3M2Size, v.Color[:])
}

// VertexP3N3M2B4 adds four bone indices and their weights to VertexP3N3M2.
type VertexP3N3M2B4 struct {
	VertexP3N3M2
	Bones   [4]uint8
	Weights [4]float32
}

func (VertexP3N3M2B4) ArrayTag() Tag { return TagVertexP3N3M2B4 }
func (VertexP3N3M2B4) ByteSize() int { return vertexP3N3M2B4Size }

func (v *VertexP3N3M2B4) decode(b []byte) {
	v.VertexP3N3M2.decode(b)
	copy(v.Bones[:], b[vertexP3N3M2Size:vertexP3N3M2Size+4])
	getF32s(v.Weights[:], b, vertexP3N3M2Size+4)
}

func (v *VertexP3N3M2B4) encode(b []byte) {
	v.VertexP3N3M2.encode(b)
	copy(b[vertexP3N3M2Size:vertexP3N3M2Size+4], v.Bones[:])
	putF32s(b, vertexP3N3M2Size+4, v.Weights[:])
}

// NamedOffset is an entry of an offset table.
type NamedOffset struct {
	Name   FixedString
	Offset Offset
}

func (NamedOffset) ArrayTag() Tag              { return TagOffsetTable }
func (NamedOffset) ByteSize() int              { return namedOffsetSize }
func (e NamedOffset) Matches(name string) bool { return e.Name.Matches(name) }

func (e *NamedOffset) decode(b []byte) {
	e.Name = getFixedString(b, 0)
	e.Offset = getOffset(b, FixedStringSize)
}

func (e *NamedOffset) encode(b []byte) {
	putFixedString(b, 0, e.Name)
	putOffset(b, FixedStringSize, e.Offset)
}

// NamedAxis is a named attachment frame. Rotation is a quaternion in x, y, z, w order.
type NamedAxis struct {
	Name        FixedString
	Translation [3]float32
	Rotation    [4]float32
}

func (NamedAxis) ArrayTag() Tag              { return TagAxes }
func (NamedAxis) ByteSize() int              { return namedAxisSize }
func (a NamedAxis) Matches(name string) bool { return a.Name.Matches(name) }

func (a *NamedAxis) decode(b []byte) {
	a.Name = getFixedString(b, 0)
	getF32s(a.Translation[:], b, FixedStringSize)
	getF32s(a.Rotation[:], b, FixedStringSize+12)
}

func (a *NamedAxis) encode(b []byte) {
	putFixedString(b, 0, a.Name)
	putF32s(b, FixedStringSize, a.Translation[:])
	putF32s(b, FixedStringSize+12, a.Rotation[:])
}

// SkeletonBone is a named bone with its parent index and rest transform.
type SkeletonBone struct {
	Name      FixedString
	Parent    uint8
	Transform Matrix
}

func (SkeletonBone) ArrayTag() Tag { return TagSkeletonBone }
func (SkeletonBone) ByteSize() int { return skeletonBoneSize }

func (s *SkeletonBone) decode(b []byte) {
	s.Name = getFixedString(b, 0)
	s.Parent = b[FixedStringSize]
	s.Transform = getMatrix(b, FixedStringSize+4)
}

func (s *SkeletonBone) encode(b []byte) {
	putFixedString(b, 0, s.Name)
	b[FixedStringSize] = s.Parent
	putMatrix(b, FixedStringSize+4, s.Transform)
}

// Interpolation selects how a key frame blends towards the next one.
type Interpolation uint8

const (
	InterpolationLinear Interpolation = iota
	InterpolationBezier
)

func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "linear"
	case InterpolationBezier:
		return "bezier"
	default:
		return "unknown"
	}
}

// MarshalText encodes the interpolation by its source keyword.
func (i Interpolation) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// ParseInterpolation maps an assembler word to an Interpolation.
func ParseInterpolation(s string) (Interpolation, bool) {
	switch s {
	case "linear":
		return InterpolationLinear, true
	case "bezier":
		return InterpolationBezier, true
	default:
		return 0, false
	}
}

// KeyFrame is a bone transform at a point in time.
type KeyFrame struct {
	Bone          uint8
	Interpolation Interpolation
	Time          float32
	Transform     Matrix
}

func (KeyFrame) ArrayTag() Tag { return TagKeyFrame }
func (KeyFrame) ByteSize() int { return keyFrameSize }

func (k *KeyFrame) decode(b []byte) {
	k.Bone = b[0]
	k.Interpolation = Interpolation(b[4])
	k.Time = getF32(b, 8)
	k.Transform = getMatrix(b, 12)
}

func (k *KeyFrame) encode(b []byte) {
	b[0] = k.Bone
	b[4] = uint8(k.Interpolation)
	putF32(b, 8, k.Time)
	putMatrix(b, 12, k.Transform)
}
