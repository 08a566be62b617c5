package dump

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samcharles93/tmf/pkg/asm"
	"github.com/samcharles93/tmf/pkg/tmf"
)

const meshSource = "top: mesh triangles\n indices: array index16\n 0 1 2\n end\nend\n"

func reader(t *testing.T, src string) *tmf.Reader {
	t.Helper()
	data, err := asm.AssembleString(src)
	require.NoError(t, err)
	return tmf.NewReader(data)
}

func TestTreeMesh(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, Tree(&out, reader(t, meshSource)))

	want := strings.Join([]string{
		"<HDR3; 24 bytes; magic = 42>",
		"[MESH; 48 bytes; offset = 24]",
		"\tlayout = triangles",
		"\tindices:",
		"\t[IN16; 18 bytes; offset = 72]",
		"\t\t0 1 2",
		"\tvertices:",
		"\t[null: 0 bytes]",
		"\taxes:",
		"\t[null: 0 bytes]",
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
}

func TestTreeVerticesAndTables(t *testing.T) {
	t.Parallel()

	src := "m: mesh triangles\n" +
		"\tvertices: array vertex-p3n3m2\n" +
		"\t\t1 2 3 0 0 1 0.5 0.25\n" +
		"\tend\n" +
		"end\n" +
		"top: offset-table\n" +
		"\tcube: $m\n" +
		"\tlink: external http://example.com/cube.tmf\n" +
		"end\n"

	var out bytes.Buffer
	require.NoError(t, Tree(&out, reader(t, src)))
	text := out.String()

	assert.Contains(t, text, "\tcube:\n\t[MESH;")
	assert.Contains(t, text, "\t\t\tP=(1, 2, 3) N=(0, 0, 1) M=(0.5, 0.25)\n")
	assert.Contains(t, text, "\tlink:\n\t[EXRN;")
	assert.Contains(t, text, "\t\turl = http://example.com/cube.tmf\n")
}

func TestTreeCycle(t *testing.T) {
	t.Parallel()

	w := tmf.NewWriter(nil)
	_, err := w.Header()
	require.NoError(t, err)
	// The node lands directly after the header and lists itself as a child.
	h, err := w.AppendRecord(tmf.Node{
		Name:      tmf.NewFixedString("loop"),
		Transform: tmf.Identity(),
		Children:  []tmf.Offset{tmf.HeaderSize},
	})
	require.NoError(t, err)
	require.Equal(t, tmf.Offset(tmf.HeaderSize), h.Offset())
	require.NoError(t, w.SetTop(h.Offset()))

	var out bytes.Buffer
	require.NoError(t, Tree(&out, tmf.NewReader(w.Bytes())))

	want := strings.Join([]string{
		"<HDR3; 24 bytes; magic = 42>",
		"[NODE; 116 bytes; offset = 24]",
		"\tname = loop",
		"\ttransform = [1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1]",
		"\t[NODE; 116 bytes; offset = 24]",
		"\t\t<cycle>",
		"",
	}, "\n")
	assert.Equal(t, want, out.String())
}

func TestTreeUnknownBlock(t *testing.T) {
	t.Parallel()

	w := tmf.NewWriter(nil)
	_, err := w.Header()
	require.NoError(t, err)

	raw := make([]byte, tmf.BlockHeaderSize)
	copy(raw, "ZZZZ")
	binary.LittleEndian.PutUint64(raw[4:], tmf.BlockHeaderSize)
	off, err := w.Buffer().Append(len(raw))
	require.NoError(t, err)
	require.NoError(t, w.Buffer().Write(off, raw))
	require.NoError(t, w.SetTop(off))

	var out bytes.Buffer
	require.NoError(t, Tree(&out, tmf.NewReader(w.Bytes())))
	assert.Contains(t, out.String(), "[ZZZZ; 12 bytes; offset = 24]\n\t<unknown block tag>\n")
}

func TestTreeRejectsNonContainer(t *testing.T) {
	t.Parallel()

	err := Tree(&bytes.Buffer{}, tmf.NewReader([]byte("definitely not a container")))
	assert.ErrorIs(t, err, tmf.ErrNotContainer)
}

func TestJSONDocument(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, JSON(&out, reader(t, meshSource)))

	var doc struct {
		Magic uint32 `json:"magic"`
		Top   struct {
			Tag    string `json:"tag"`
			Kind   string `json:"kind"`
			Fields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"fields"`
			Links []struct {
				Name   string `json:"name"`
				Target *struct {
					Tag      string `json:"tag"`
					Elements []int  `json:"elements"`
				} `json:"target"`
			} `json:"links"`
		} `json:"top"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))

	assert.Equal(t, uint32(tmf.Magic), doc.Magic)
	assert.Equal(t, "MESH", doc.Top.Tag)
	assert.Equal(t, "mesh", doc.Top.Kind)
	require.Len(t, doc.Top.Fields, 1)
	assert.Equal(t, "triangles", doc.Top.Fields[0].Value)
	require.Len(t, doc.Top.Links, 3)
	assert.Equal(t, "indices", doc.Top.Links[0].Name)
	require.NotNil(t, doc.Top.Links[0].Target)
	assert.Equal(t, []int{0, 1, 2}, doc.Top.Links[0].Target.Elements)
	assert.Nil(t, doc.Top.Links[1].Target)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s, err := Summarize(reader(t, meshSource))
	require.NoError(t, err)

	assert.Equal(t, tmf.Offset(24), s.Top)
	assert.Equal(t, tmf.TagMesh, s.TopTag)
	assert.Equal(t, 3, s.Blocks)
	assert.Empty(t, s.Error)
	require.Len(t, s.Tags, 3)
	assert.Equal(t, tmf.TagHeader, s.Tags[0].Tag)
	assert.Equal(t, tmf.TagIndex16, s.Tags[1].Tag)
	assert.Equal(t, uint64(18), s.Tags[1].Bytes)
	assert.Equal(t, "mesh", s.Tags[2].Kind)
}

func TestSummarizeStopsAtCorruptBlock(t *testing.T) {
	t.Parallel()

	data, err := asm.AssembleString(meshSource)
	require.NoError(t, err)
	// Claim the mesh block runs past the end of the buffer.
	binary.LittleEndian.PutUint64(data[24+4:], 1<<20)

	s, err := Summarize(tmf.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Blocks)
	assert.Contains(t, s.Error, "corrupt")
}

const identity = "1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1"

func TestJSONDocumentMeshArrays(t *testing.T) {
	t.Parallel()

	src := "top: mesh triangles\n" +
		"\tindices: array index16\n\t\t0 1 2\n\tend\n" +
		"\tvertices: array vertex-p3n3m2\n" +
		"\t\t1 2 3 0 0 1 0.5 0.25\n" +
		"\t\t4 5 6 0 1 0 1 0\n" +
		"\tend\n" +
		"\taxes: array axis\n\t\tpivot 1 2 3 0 0 0 1\n\tend\n" +
		"end\n"

	var out bytes.Buffer
	require.NoError(t, JSON(&out, reader(t, src)))

	var doc struct {
		Top struct {
			Tag    string `json:"tag"`
			Fields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"fields"`
			Links []struct {
				Name   string `json:"name"`
				Target struct {
					Tag      string            `json:"tag"`
					Elements []json.RawMessage `json:"elements"`
				} `json:"target"`
			} `json:"links"`
		} `json:"top"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))

	assert.Equal(t, "MESH", doc.Top.Tag)
	assert.Equal(t, "triangles", doc.Top.Fields[0].Value)
	require.Len(t, doc.Top.Links, 3)

	indices := doc.Top.Links[0].Target
	assert.Equal(t, "IN16", indices.Tag)
	assert.Len(t, indices.Elements, 3)

	var vertex struct {
		Position [3]float32
		Normal   [3]float32
		Mapping  [2]float32
	}
	require.Len(t, doc.Top.Links[1].Target.Elements, 2)
	require.NoError(t, json.Unmarshal(doc.Top.Links[1].Target.Elements[1], &vertex))
	assert.Equal(t, [3]float32{4, 5, 6}, vertex.Position)
	assert.Equal(t, [2]float32{1, 0}, vertex.Mapping)

	var axis struct {
		Name        string
		Translation [3]float32
	}
	require.Len(t, doc.Top.Links[2].Target.Elements, 1)
	require.NoError(t, json.Unmarshal(doc.Top.Links[2].Target.Elements[0], &axis))
	assert.Equal(t, "pivot", axis.Name)
	assert.Equal(t, [3]float32{1, 2, 3}, axis.Translation)
}

// sharedChain builds nodes n0..n<depth> where every node lists the previous
// one twice, so naive expansion doubles at each level.
func sharedChain(depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "n0: node n0 %s\nend\n", identity)
	for i := 1; i <= depth; i++ {
		fmt.Fprintf(&b, "n%d: node n%d %s\n\t$n%d\n\t$n%d\nend\n", i, i, identity, i-1, i-1)
	}
	fmt.Fprintf(&b, "top: $n%d\n", depth)
	return b.String()
}

func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, l := range n.Links {
		total += countNodes(l.Target)
	}
	return total
}

func TestSharedBlocksExpandOnce(t *testing.T) {
	t.Parallel()

	const depth = 24
	r := reader(t, sharedChain(depth))

	doc, err := Build(r)
	require.NoError(t, err)
	// One expansion per block plus one shared reference per level.
	assert.Equal(t, 2*depth+1, countNodes(doc.Top))

	second := doc.Top.Links[1].Target
	require.NotNil(t, second)
	assert.True(t, second.Shared)
	assert.False(t, second.Repeated)
	assert.Empty(t, second.Links)

	var tree bytes.Buffer
	require.NoError(t, WriteTree(&tree, doc))
	assert.Contains(t, tree.String(), "\t<shown above>\n")
	assert.Less(t, strings.Count(tree.String(), "\n"), 10*depth)

	var out bytes.Buffer
	require.NoError(t, WriteJSON(&out, doc))
	assert.Contains(t, out.String(), `"shared": true`)
}
