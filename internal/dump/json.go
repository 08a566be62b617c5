package dump

import (
	"io"

	"github.com/goccy/go-json"

	"github.com/samcharles93/tmf/pkg/tmf"
)

// JSON writes the decoded block graph of r as an indented JSON document.
func JSON(w io.Writer, r *tmf.Reader) error {
	doc, err := Build(r)
	if err != nil {
		return err
	}
	return WriteJSON(w, doc)
}

// WriteJSON encodes an already built document.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// nodeJSON is the wire form of a Node. Interface values are encoded up front
// so the encoder never walks an interface inside the recursive node graph.
type nodeJSON struct {
	Offset   tmf.Offset      `json:"offset"`
	Tag      tmf.Tag         `json:"tag"`
	Size     uint64          `json:"size"`
	Kind     string          `json:"kind,omitempty"`
	Fields   []fieldJSON     `json:"fields,omitempty"`
	Links    []Link          `json:"links,omitempty"`
	Elements json.RawMessage `json:"elements,omitempty"`
	Repeated bool            `json:"repeated,omitempty"`
	Shared   bool            `json:"shared,omitempty"`
	Unknown  bool            `json:"unknown,omitempty"`
	Invalid  string          `json:"invalid,omitempty"`
}

type fieldJSON struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes n with its fields and elements pre-encoded.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	out := nodeJSON{
		Offset:   n.Offset,
		Tag:      n.Tag,
		Size:     n.Size,
		Kind:     n.Kind,
		Links:    n.Links,
		Repeated: n.Repeated,
		Shared:   n.Shared,
		Unknown:  n.Unknown,
		Invalid:  n.Invalid,
	}
	for _, f := range n.Fields {
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, fieldJSON{Name: f.Name, Value: v})
	}
	if n.Elements != nil {
		v, err := json.Marshal(n.Elements)
		if err != nil {
			return nil, err
		}
		out.Elements = v
	}
	return json.Marshal(out)
}
