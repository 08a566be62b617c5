package dump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samcharles93/tmf/pkg/tmf"
)

// Tree writes the indented block tree of r to w:
//
//	<HDR3; 24 bytes; magic = 42>
//	[MESH; 48 bytes; offset = 24]
//		layout = triangles
//		indices:
//		[IN16; 18 bytes; offset = 72]
//			0 1 2
func Tree(w io.Writer, r *tmf.Reader) error {
	doc, err := Build(r)
	if err != nil {
		return err
	}
	return WriteTree(w, doc)
}

// WriteTree renders an already built document.
func WriteTree(w io.Writer, doc *Document) error {
	p := &printer{w: bufio.NewWriter(w)}
	p.line(0, "<%s; %d bytes; magic = %d>", tmf.TagHeader, doc.HeaderSize, doc.Magic)
	p.node(0, doc.Top)
	return p.w.Flush()
}

type printer struct {
	w *bufio.Writer
}

func (p *printer) line(depth int, format string, args ...any) {
	for range depth {
		_ = p.w.WriteByte('\t')
	}
	_, _ = fmt.Fprintf(p.w, format, args...)
	_ = p.w.WriteByte('\n')
}

func (p *printer) node(depth int, n *Node) {
	if n == nil {
		p.line(depth, "[null: 0 bytes]")
		return
	}
	if n.Size == 0 && n.Invalid != "" {
		p.line(depth, "[invalid; offset = %d: %s]", n.Offset, n.Invalid)
		return
	}
	p.line(depth, "[%s; %d bytes; offset = %d]", n.Tag, n.Size, n.Offset)

	inner := depth + 1
	switch {
	case n.Repeated:
		p.line(inner, "<cycle>")
		return
	case n.Shared:
		p.line(inner, "<shown above>")
		return
	case n.Invalid != "":
		p.line(inner, "<invalid block: %s>", n.Invalid)
		return
	case n.Unknown:
		p.line(inner, "<unknown block tag>")
		return
	}
	for _, f := range n.Fields {
		p.line(inner, "%s = %s", f.Name, formatValue(f.Value))
	}
	for _, l := range n.Links {
		if l.Name != "" {
			p.line(inner, "%s:", l.Name)
		}
		p.node(inner, l.Target)
	}
	p.elements(inner, n.Elements)
}

func (p *printer) elements(depth int, items any) {
	switch items := items.(type) {
	case []tmf.Index16:
		p.line(depth, "%s", joinNumbers(items, " "))
	case []tmf.Index32:
		p.line(depth, "%s", joinNumbers(items, " "))
	case []tmf.Reference:
		p.line(depth, "%s", joinNumbers(items, " "))
	case []tmf.VertexP2:
		for _, v := range items {
			p.line(depth, "P=%s", vec(v.Position[:]))
		}
	case []tmf.VertexP2C4:
		for _, v := range items {
			p.line(depth, "P=%s C=%s", vec(v.Position[:]), vec(v.Color[:]))
		}
	case []tmf.VertexP3:
		for _, v := range items {
			p.line(depth, "P=%s", vec(v.Position[:]))
		}
	case []tmf.VertexP3N3:
		for _, v := range items {
			p.line(depth, "P=%s N=%s", vec(v.Position[:]), vec(v.Normal[:]))
		}
	case []tmf.VertexP3N3M2:
		for _, v := range items {
			p.line(depth, "P=%s N=%s M=%s", vec(v.Position[:]), vec(v.Normal[:]), vec(v.Mapping[:]))
		}
	case []tmf.VertexP3N3M2C4:
		for _, v := range items {
			p.line(depth, "P=%s N=%s M=%s C=%s", vec(v.Position[:]), vec(v.Normal[:]), vec(v.Mapping[:]), vec(v.Color[:]))
		}
	case []tmf.VertexP3N3M2B4:
		for _, v := range items {
			p.line(depth, "P=%s N=%s M=%s B=%s W=%s", vec(v.Position[:]), vec(v.Normal[:]), vec(v.Mapping[:]),
				"("+joinNumbers(v.Bones[:], ", ")+")", vec(v.Weights[:]))
		}
	case []tmf.NamedAxis:
		for _, a := range items {
			p.line(depth, "%s: T=%s R=%s", a.Name, vec(a.Translation[:]), vec(a.Rotation[:]))
		}
	case []tmf.SkeletonBone:
		for _, b := range items {
			p.line(depth, "%s parent=%d transform=%s", b.Name, b.Parent, formatMatrix(b.Transform))
		}
	case []tmf.KeyFrame:
		for _, k := range items {
			p.line(depth, "bone=%d %s time=%s transform=%s", k.Bone, k.Interpolation, formatFloat(k.Time), formatMatrix(k.Transform))
		}
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case float32:
		return formatFloat(v)
	case tmf.Matrix:
		return formatMatrix(v)
	case tmf.FixedString:
		return v.String()
	case string:
		return v
	}
	return fmt.Sprint(v)
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func formatMatrix(m tmf.Matrix) string {
	parts := make([]string, len(m))
	for i, f := range m {
		parts[i] = formatFloat(f)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func vec(fs []float32) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

type integer interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

func joinNumbers[T integer](items []T, sep string) string {
	parts := make([]string, len(items))
	for i, v := range items {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	return strings.Join(parts, sep)
}
