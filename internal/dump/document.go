// Package dump renders containers for people: an indented block tree in the
// format of the converter tool, a JSON document and a per-tag summary.
package dump

import (
	"fmt"

	"github.com/samcharles93/tmf/pkg/tmf"
)

// maxDepth bounds how far references are followed. Cycles and shared
// blocks are cut earlier; this only guards against absurdly deep chains.
const maxDepth = 256

// Document is a decoded container rooted at its top block.
type Document struct {
	Size       uint64 `json:"size"`
	Magic      uint32 `json:"magic"`
	HeaderSize uint64 `json:"header_size"`
	Top        *Node  `json:"top"`
}

// Node is one block reached from the top. A nil *Node is a null offset.
type Node struct {
	Offset   tmf.Offset `json:"offset"`
	Tag      tmf.Tag    `json:"tag"`
	Size     uint64     `json:"size"`
	Kind     string     `json:"kind,omitempty"`
	Fields   []Field    `json:"fields,omitempty"`
	Links    []Link     `json:"links,omitempty"`
	Elements any        `json:"elements,omitempty"`

	// Repeated marks a block already open further up the path.
	Repeated bool `json:"repeated,omitempty"`
	// Shared marks a block expanded at an earlier reference. Only its
	// header is repeated here.
	Shared  bool   `json:"shared,omitempty"`
	Unknown bool   `json:"unknown,omitempty"`
	Invalid string `json:"invalid,omitempty"`
}

// Field is a scalar record member.
type Field struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Link is a reference to another block. Name is empty for node children.
type Link struct {
	Name   string `json:"name,omitempty"`
	Target *Node  `json:"target"`
}

// Build decodes the block graph reachable from the container's top offset.
func Build(r *tmf.Reader) (*Document, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	hdr, _ := r.Header()
	blk, _ := r.BlockAt(0)
	b := &builder{
		r:        r,
		open:     make(map[tmf.Offset]bool),
		expanded: make(map[tmf.Offset]bool),
	}
	return &Document{
		Size:       uint64(r.Size()),
		Magic:      hdr.Magic,
		HeaderSize: blk.Size,
		Top:        b.node(hdr.Top),
	}, nil
}

// builder expands every block at most once, so the document stays linear
// in the size of the container even when blocks are referenced many times.
type builder struct {
	r        *tmf.Reader
	open     map[tmf.Offset]bool
	expanded map[tmf.Offset]bool
}

func (b *builder) node(off tmf.Offset) *Node {
	if off.IsNull() {
		return nil
	}
	blk, ok := b.r.BlockAt(off)
	if !ok {
		return &Node{Offset: off, Invalid: "block out of bounds"}
	}
	n := &Node{Offset: off, Tag: blk.Tag, Size: blk.Size, Kind: tmf.ShapeName(blk.Tag)}
	switch {
	case b.open[off]:
		n.Repeated = true
		return n
	case b.expanded[off]:
		n.Shared = true
		return n
	case len(b.open) >= maxDepth:
		n.Invalid = "reference chain too deep"
		return n
	}
	b.open[off] = true
	b.expanded[off] = true
	defer delete(b.open, off)

	rec, err := b.r.Decode(off)
	if err != nil {
		n.Invalid = err.Error()
		return n
	}
	switch rec := rec.(type) {
	case tmf.Header:
		n.field("magic", rec.Magic)
	case tmf.Mesh:
		n.field("layout", rec.Layout)
		b.link(n, "indices", rec.Indices)
		b.link(n, "vertices", rec.Vertices)
		b.link(n, "axes", rec.Axes)
		if !rec.Metadata.IsNull() {
			b.link(n, "metadata", rec.Metadata)
		}
	case tmf.Skeleton:
		b.link(n, "bones", rec.Bones)
		b.link(n, "sequences", rec.Sequences)
	case tmf.SkeletonAnimation:
		n.field("start", rec.Start)
		n.field("end", rec.End)
		b.link(n, "key-frames", rec.KeyFrames)
	case tmf.Node:
		n.field("name", rec.Name)
		n.field("transform", rec.Transform)
		for _, child := range rec.Children {
			b.link(n, "", child)
		}
	case tmf.GeometryInstance:
		b.link(n, "mesh", rec.Mesh)
		b.link(n, "skeleton", rec.Skeleton)
		b.link(n, "material", rec.Material)
	case tmf.Camera:
		n.field("view", rec.View)
		n.field("projection", rec.Projection)
	case tmf.External:
		n.field("url", rec.URL)
	case tmf.ArrayBlock:
		b.array(n, rec)
	case tmf.Unknown:
		n.Unknown = true
	default:
		n.Invalid = fmt.Sprintf("unhandled record %T", rec)
	}
	return n
}

func (n *Node) field(name string, v any) {
	n.Fields = append(n.Fields, Field{Name: name, Value: v})
}

func (b *builder) link(n *Node, name string, off tmf.Offset) {
	n.Links = append(n.Links, Link{Name: name, Target: b.node(off)})
}

func (b *builder) array(n *Node, blk tmf.ArrayBlock) {
	off := n.Offset
	switch blk.Block.Tag {
	case tmf.TagOffsetTable:
		table, _ := b.r.OffsetTable(off)
		for _, e := range table.All() {
			b.link(n, e.Name.String(), e.Offset)
		}
	case tmf.TagIndex16:
		n.Elements = slice(tmf.ArrayAt[tmf.Index16](b.r, off))
	case tmf.TagIndex32:
		n.Elements = slice(tmf.ArrayAt[tmf.Index32](b.r, off))
	case tmf.TagReference:
		n.Elements = slice(tmf.ArrayAt[tmf.Reference](b.r, off))
	case tmf.TagVertexP2:
		n.Elements = slice(tmf.ArrayAt[tmf.VertexP2](b.r, off))
	case tmf.TagVertexP2C4:
		n.Elements = slice(tmf.ArrayAt[tmf.VertexP2C4](b.r, off))
	case tmf.TagVertexP3:
		n.Elements = slice(tmf.ArrayAt[tmf.VertexP3](b.r, off))
	case tmf.TagVertexP3N3:
		n.Elements = slice(tmf.ArrayAt[tmf.VertexP3N3](b.r, off))
	case tmf.TagVertexP3N3M2:
		n.Elements = slice(tmf.ArrayAt[tmf.VertexP3N3M2](b.r, off))
	case tmf.TagVertexP3N3M2C4:
		n.Elements = slice(tmf.ArrayAt[tmf.VertexP3N3M2C4](b.r, off))
	case tmf.TagVertexP3N3M2B4:
		n.Elements = slice(tmf.ArrayAt[tmf.VertexP3N3M2B4](b.r, off))
	case tmf.TagAxes:
		n.Elements = slice(tmf.ArrayAt[tmf.NamedAxis](b.r, off))
	case tmf.TagSkeletonBone:
		n.Elements = slice(tmf.ArrayAt[tmf.SkeletonBone](b.r, off))
	case tmf.TagKeyFrame:
		n.Elements = slice(tmf.ArrayAt[tmf.KeyFrame](b.r, off))
	default:
		n.Unknown = true
	}
}

func slice[E any](arr tmf.Array[E], ok bool) any {
	if !ok {
		return nil
	}
	return arr.Slice()
}
