package asm

import (
	"errors"
	"strings"
	"testing"

	"github.com/samcharles93/tmf/pkg/tmf"
)

const identity = "1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1"

func assemble(t *testing.T, src string) *tmf.Reader {
	t.Helper()
	data, err := AssembleString(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	r := tmf.NewReader(data)
	if err := r.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return r
}

func top(t *testing.T, r *tmf.Reader) tmf.Offset {
	t.Helper()
	off, ok := r.Top()
	if !ok {
		t.Fatalf("top offset not set")
	}
	return off
}

func TestMeshIndices(t *testing.T) {
	t.Parallel()

	src := "Test-mesh: mesh triangles\n indices: array index16\n 0 1 2\n end\nend\ntop: $Test-mesh\n"
	r := assemble(t, src)

	mesh, ok := r.Mesh(top(t, r))
	if !ok {
		t.Fatalf("top is not a mesh")
	}
	if mesh.Layout != tmf.LayoutTriangles {
		t.Fatalf("layout: got %v", mesh.Layout)
	}
	indices, ok := tmf.ArrayAt[tmf.Index16](r, mesh.Indices)
	if !ok {
		t.Fatalf("indices not an index16 array")
	}
	if indices.Count() != 3 {
		t.Fatalf("index count: got %d want 3", indices.Count())
	}
	for i, want := range []tmf.Index16{0, 1, 2} {
		got, err := indices.At(i)
		if err != nil {
			t.Fatalf("index %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("index %d: got %d want %d", i, got, want)
		}
	}
	if !mesh.Vertices.IsNull() || !mesh.Axes.IsNull() || !mesh.Metadata.IsNull() {
		t.Fatalf("unbound mesh slots should be null: %+v", mesh)
	}
}

const skeletonText = "Model-animation: array skeleton-animation-key-frame\n" +
	"\t1 linear 0.0 " + identity + "\n" +
	"\t1 linear 30.0 1 0 0 0 0 1 0 0 0 0 1 0 0 10 0 1\n" +
	"end\n" +
	"Model-skeleton: skeleton\n" +
	"\tbones: array skeleton-bone\n" +
	"\t\tBoneA 0 " + identity + "\n" +
	"\t\tBoneB 0 1 0 0 0 0 1 0 0 0 0 1 0 0 0 10 1\n" +
	"\tend\n" +
	"\tsequences: offset-table\n" +
	"\t\tdefault: skeleton-animation 15.0 30.0\n" +
	"\t\t\tkey-frames: $Model-animation\n" +
	"\t\tend\n" +
	"\tend\n" +
	"end\n" +
	"top: $Model-skeleton\n"

func TestSkeletonAndSequences(t *testing.T) {
	t.Parallel()

	r := assemble(t, skeletonText)
	skeleton, ok := r.Skeleton(top(t, r))
	if !ok {
		t.Fatalf("top is not a skeleton")
	}

	bones, ok := tmf.ArrayAt[tmf.SkeletonBone](r, skeleton.Bones)
	if !ok {
		t.Fatalf("bones not found")
	}
	if bones.Count() != 2 {
		t.Fatalf("bone count: got %d", bones.Count())
	}
	for i, name := range []string{"BoneA", "BoneB"} {
		bone, _ := bones.At(i)
		if bone.Name.String() != name || bone.Parent != 0 {
			t.Fatalf("bone %d: got %q parent %d", i, bone.Name, bone.Parent)
		}
	}
	if first, _ := bones.At(0); first.Transform != tmf.Identity() {
		t.Fatalf("BoneA transform: got %v", first.Transform)
	}

	sequences, ok := r.OffsetTable(skeleton.Sequences)
	if !ok {
		t.Fatalf("sequences table not found")
	}
	entry, ok := sequences.Lookup("default")
	if !ok {
		t.Fatalf("default sequence missing")
	}
	anim, ok := r.Animation(entry.Offset)
	if !ok {
		t.Fatalf("default does not address an animation")
	}
	if anim.Start != 15 || anim.End != 30 {
		t.Fatalf("animation span: got %v..%v", anim.Start, anim.End)
	}
	frames, ok := tmf.ArrayAt[tmf.KeyFrame](r, anim.KeyFrames)
	if !ok {
		t.Fatalf("key frames not found")
	}
	if frames.Count() != 2 {
		t.Fatalf("key frame count: got %d", frames.Count())
	}
	last, _ := frames.At(1)
	if last.Bone != 1 || last.Time != 30 || last.Interpolation != tmf.InterpolationLinear || last.Transform[13] != 10 {
		t.Fatalf("second key frame: %+v", last)
	}
}

func TestSceneGraph(t *testing.T) {
	t.Parallel()

	src := "Test-mesh: mesh triangles\n" +
		"end\n" +
		"Test-skeleton: skeleton\n" +
		"end\n" +
		"Scene: node\n" +
		"\troot " + identity + "\n" +
		"\tgeometry-instance\n" +
		"\t\tmesh: $Test-mesh\n" +
		"\t\tskeleton: $Test-skeleton\n" +
		"\tend\n" +
		"\tnode\n" +
		"\t\tchild " + identity + "\n" +
		"\tend\n" +
		"end\n" +
		"top: $Scene\n"
	r := assemble(t, src)

	node, ok := r.Node(top(t, r))
	if !ok {
		t.Fatalf("top is not a node")
	}
	if node.Name.String() != "root" {
		t.Fatalf("node name: got %q", node.Name)
	}
	if len(node.Children) != 2 {
		t.Fatalf("child count: got %d", len(node.Children))
	}

	gi, ok := r.GeometryInstance(node.Children[0])
	if !ok {
		t.Fatalf("first child is not a geometry instance")
	}
	if gi.Mesh != 24 || gi.Skeleton != 72 || gi.Material != 0 {
		t.Fatalf("geometry instance: %+v", gi)
	}

	child, ok := r.Node(node.Children[1])
	if !ok {
		t.Fatalf("second child is not a node")
	}
	if child.Name.String() != "child" {
		t.Fatalf("child name: got %q", child.Name)
	}
}

func TestCamera(t *testing.T) {
	t.Parallel()

	pattern := "1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16"
	src := "Test-camera: camera\n\t" + pattern + "\n\t" + pattern + "\ntop: $Test-camera\n"
	r := assemble(t, src)

	cam, ok := r.Camera(top(t, r))
	if !ok {
		t.Fatalf("top is not a camera")
	}
	for i := range cam.View {
		if cam.View[i] != float32(i+1) || cam.Projection[i] != float32(i+1) {
			t.Fatalf("matrix element %d: view %v projection %v", i, cam.View[i], cam.Projection[i])
		}
	}
}

func TestSkinnedVertices(t *testing.T) {
	t.Parallel()

	src := "top: mesh triangles\n" +
		"\tvertices: array vertex-p3n3m2b4\n" +
		"\t\t1.0 2.0 3.0 4.0 5.0 6.0 7.0 8.0 1 2 3 4 0.60 0.20 0.15 0.05\n" +
		"\tend\n" +
		"end\n"
	r := assemble(t, src)

	mesh, ok := r.Mesh(top(t, r))
	if !ok {
		t.Fatalf("top is not a mesh")
	}
	verts, ok := tmf.ArrayAt[tmf.VertexP3N3M2B4](r, mesh.Vertices)
	if !ok {
		t.Fatalf("vertices not found")
	}
	if verts.Count() != 1 {
		t.Fatalf("vertex count: got %d", verts.Count())
	}
	v, _ := verts.At(0)
	if v.Bones != [4]uint8{1, 2, 3, 4} {
		t.Fatalf("bones: got %v", v.Bones)
	}
	if v.Mapping != [2]float32{7, 8} || v.Weights[0] != 0.6 {
		t.Fatalf("vertex: %+v", v)
	}
	if _, ok := tmf.ArrayAt[tmf.VertexP3N3M2C4](r, mesh.Vertices); ok {
		t.Fatalf("skinned vertices should not read as colored vertices")
	}
}

func TestSkeletonAtMeshOffsetIsAbsent(t *testing.T) {
	t.Parallel()

	r := assemble(t, "m: mesh triangles\nend\ntop: $m\n")
	off := top(t, r)
	if _, ok := r.Skeleton(off); ok {
		t.Fatalf("skeleton resolved at a mesh offset")
	}
	if _, ok := r.Mesh(off); !ok {
		t.Fatalf("mesh not resolved at its own offset")
	}
}

func TestScopeShadowing(t *testing.T) {
	t.Parallel()

	src := "x: external outer\n" +
		"scene: node root " + identity + "\n" +
		"\tx: external inner\n" +
		"\t$x\n" +
		"end\n" +
		"again: node again " + identity + "\n" +
		"\t$x\n" +
		"end\n" +
		"top: $scene\n"
	data, err := AssembleString(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	r := tmf.NewReader(data)

	scene, ok := r.Node(top(t, r))
	if !ok || len(scene.Children) != 2 {
		t.Fatalf("scene: %+v ok=%v", scene, ok)
	}
	if scene.Children[0] != scene.Children[1] {
		t.Fatalf("inner reference should resolve to the inner binding")
	}
	inner, _ := r.External(scene.Children[1])
	if inner.URL != "inner" {
		t.Fatalf("inner binding: got %q", inner.URL)
	}

	// The sibling node sees only the outer binding.
	var again tmf.Node
	err = r.Walk(func(blk tmf.Block) error {
		if n, ok := r.Node(blk.Offset); ok && n.Name.String() == "again" {
			again = n
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(again.Children) != 1 {
		t.Fatalf("again children: %v", again.Children)
	}
	outer, _ := r.External(again.Children[0])
	if outer.URL != "outer" {
		t.Fatalf("outer binding: got %q", outer.URL)
	}
}

func TestScopeStack(t *testing.T) {
	t.Parallel()

	var s scopes
	s.push()
	s.bind("a", 24, Pos{})
	s.push()
	s.bind("a", 72, Pos{})
	s.bind("b", 96, Pos{})

	if off, _ := s.lookup("a"); off != 72 {
		t.Fatalf("inner a: got %d", off)
	}
	inner := s.pop()
	if inner.own("b") != 96 {
		t.Fatalf("inner own b: got %d", inner.own("b"))
	}
	if off, _ := s.lookup("a"); off != 24 {
		t.Fatalf("outer a: got %d", off)
	}
	if _, ok := s.lookup("b"); ok {
		t.Fatalf("outer scope sees inner name")
	}
}

func TestOffsetTableOrderAndReferences(t *testing.T) {
	t.Parallel()

	src := "a: external a\n" +
		"b: external b\n" +
		"top: offset-table\n" +
		"\tzeta: $a\n" +
		"\talpha: $b\n" +
		"\tlist: array reference\n" +
		"\t\t$a $b\n" +
		"\tend\n" +
		"end\n"
	r := assemble(t, src)

	table, ok := r.OffsetTable(top(t, r))
	if !ok {
		t.Fatalf("top is not an offset table")
	}
	var names []string
	for _, e := range table.All() {
		names = append(names, e.Name.String())
	}
	if strings.Join(names, ",") != "alpha,list,zeta" {
		t.Fatalf("table order: %v", names)
	}
	list, _ := table.Lookup("list")
	refs, ok := tmf.ArrayAt[tmf.Reference](r, list.Offset)
	if !ok || refs.Count() != 2 {
		t.Fatalf("reference array: ok=%v", ok)
	}
	zeta, _ := table.Lookup("zeta")
	first, _ := refs.At(0)
	if tmf.Offset(first) != zeta.Offset {
		t.Fatalf("reference to a: got %d want %d", first, zeta.Offset)
	}
}

func TestAnimationAlias(t *testing.T) {
	t.Parallel()

	r := assemble(t, "top: animation 1 2\nend\n")
	anim, ok := r.Animation(top(t, r))
	if !ok || anim.Start != 1 || anim.End != 2 || !anim.KeyFrames.IsNull() {
		t.Fatalf("animation: %+v ok=%v", anim, ok)
	}
}

func TestVertexAndAxisArrays(t *testing.T) {
	t.Parallel()

	src := "top: mesh triangle-fan\n" +
		"\tvertices: array vertex-p3n3m2c4\n" +
		"\t\t0 0 0 0 0 1 0 0 1 0 0 1\n" +
		"\t\t1 0 0 0 0 1 1 0 0 1 0 1\n" +
		"\tend\n" +
		"\taxes: array axis\n" +
		"\t\thandle 1 2 3 0 0 0 1\n" +
		"\tend\n" +
		"\tindices: array index32\n" +
		"\t\t0 1 70000\n" +
		"\tend\n" +
		"end\n"
	r := assemble(t, src)

	mesh, _ := r.Mesh(top(t, r))
	if mesh.Layout != tmf.LayoutTriangleFan {
		t.Fatalf("layout: %v", mesh.Layout)
	}
	verts, ok := tmf.ArrayAt[tmf.VertexP3N3M2C4](r, mesh.Vertices)
	if !ok || verts.Count() != 2 {
		t.Fatalf("vertices: ok=%v", ok)
	}
	v, _ := verts.At(1)
	if v.Position[0] != 1 || v.Color != [4]float32{0, 1, 0, 1} {
		t.Fatalf("vertex 1: %+v", v)
	}
	axes, ok := r.Axes(mesh.Axes)
	if !ok {
		t.Fatalf("axes not found")
	}
	handle, ok := axes.Lookup("handle")
	if !ok || handle.Translation != [3]float32{1, 2, 3} || handle.Rotation[3] != 1 {
		t.Fatalf("axis: %+v ok=%v", handle, ok)
	}
	indices, ok := tmf.ArrayAt[tmf.Index32](r, mesh.Indices)
	if !ok {
		t.Fatalf("indices not found")
	}
	if last, _ := indices.At(2); last != 70000 {
		t.Fatalf("index 2: got %d", last)
	}
}

// longName is one byte wider than a record name field.
var longName = strings.Repeat("n", tmf.FixedStringSize+1)

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want error
		pos  Pos
	}{
		{"unknown keyword", "top: widget\n", ErrUnknownKeyword, Pos{Line: 1, Column: 6, Offset: 5}},
		{"unknown element type", "top: array float64\nend\n", ErrUnknownType, Pos{Line: 1, Column: 12, Offset: 11}},
		{"malformed index", "top: array index16\n0 x 2\nend\n", ErrMalformedLiteral, Pos{Line: 2, Column: 3, Offset: 21}},
		{"index overflow", "top: array index16\n70000\nend\n", ErrMalformedLiteral, Pos{Line: 2, Column: 1, Offset: 19}},
		{"bad layout", "top: mesh hexagons\nend\n", ErrMalformedLiteral, Pos{Line: 1, Column: 11, Offset: 10}},
		{"undefined name", "top: $missing\n", ErrUndefinedName, Pos{Line: 1, Column: 6, Offset: 5}},
		{"missing end", "top: skeleton\n", ErrUnexpectedEOF, Pos{}},
		{"stray end", "end\n", ErrUnexpectedEnd, Pos{Line: 1, Column: 1, Offset: 0}},
		{"no top", "m: mesh triangles\nend\n", ErrMissingTop, Pos{}},
		{"short matrix", "top: camera 1 2 3\n", ErrUnexpectedEOF, Pos{}},
		{"bad interpolation", "top: array skeleton-animation-key-frame\n0 cubic 0 " + identity + "\nend\n", ErrMalformedLiteral, Pos{Line: 2, Column: 3, Offset: 42}},
		{"child name not visible to parent", "n: node a " + identity + "\ninner: external x\nend\ntop: $inner\n", ErrUndefinedName, Pos{}},
		{"long node name", "top: node " + longName + " " + identity + "\nend\n", ErrMalformedLiteral, Pos{Line: 1, Column: 11, Offset: 10}},
		{"long table name", "top: offset-table\n" + longName + ": external x\nend\n", ErrMalformedLiteral, Pos{Line: 2, Column: 1, Offset: 18}},
		{"long bone name", "top: array skeleton-bone\n" + longName + " 0 " + identity + "\nend\n", ErrMalformedLiteral, Pos{Line: 2, Column: 1, Offset: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := AssembleString(tt.src)
			if err == nil {
				t.Fatalf("expected error, got %d bytes", len(data))
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error: got %v want %v", err, tt.want)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error is not a ParseError: %T", err)
			}
			if tt.pos != (Pos{}) && perr.Pos != tt.pos {
				t.Fatalf("position: got %+v want %+v", perr.Pos, tt.pos)
			}
			if data != nil {
				t.Fatalf("partial output returned")
			}
		})
	}
}

func TestNamesFillFixedWidth(t *testing.T) {
	t.Parallel()

	// Two names that only differ past the first 32 bytes must not collide.
	exact := strings.Repeat("a", tmf.FixedStringSize)
	src := "top: offset-table\n" +
		"\t" + exact + ": external x\n" +
		"\t" + exact[:tmf.FixedStringSize-1] + ": external y\n" +
		"end\n"
	r := assemble(t, src)

	table, ok := r.OffsetTable(top(t, r))
	if !ok {
		t.Fatalf("top is not an offset table")
	}
	e, ok := table.Lookup(exact)
	if !ok {
		t.Fatalf("full-width name not found")
	}
	ext, _ := r.External(e.Offset)
	if ext.URL != "x" {
		t.Fatalf("full-width name resolved to %q", ext.URL)
	}

	_, err := AssembleString("top: offset-table\n" + exact + "x: external x\n" + exact + "y: external y\nend\n")
	if !errors.Is(err, ErrMalformedLiteral) {
		t.Fatalf("expected over-long names to be rejected, got %v", err)
	}
}

func TestInitialCapacityLimit(t *testing.T) {
	t.Parallel()

	_, err := AssembleString("top: external x\n", WithInitialCapacity(1<<41))
	if !errors.Is(err, tmf.ErrBufferTooLarge) {
		t.Fatalf("expected ErrBufferTooLarge, got %v", err)
	}
	if _, err := AssembleString("top: external x\n", WithInitialCapacity(-1)); err != nil {
		t.Fatalf("negative capacity should fall back to the default: %v", err)
	}
}
