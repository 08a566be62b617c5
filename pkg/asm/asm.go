// Package asm assembles the tagged model text format into a binary container.
//
// The source is a sequence of whitespace separated words. A statement is an
// optional "name:" label followed by a form; compound forms open a nested
// scope that is closed by "end". A label binds the offset of the block the
// form produced, and "$name" refers back to it from the same scope or any
// scope nested inside it. The root block is whatever the root scope binds
// to "top".
//
//	Test-mesh: mesh triangles
//		indices: array index16
//			0 1 2
//		end
//	end
//	top: $Test-mesh
package asm

import (
	"fmt"
	"io"

	"github.com/samcharles93/tmf/internal/logger"
	"github.com/samcharles93/tmf/pkg/tmf"
)

// TopName is the root scope name that selects the container's root block.
const TopName = "top"

type options struct {
	log      logger.Logger
	capacity int
}

// Option configures Assemble.
type Option func(*options)

// WithLogger traces forms and bindings at debug level.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithInitialCapacity sizes the output buffer up front.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// Assemble reads the whole source from r and returns the container bytes.
// Any error leaves no usable output.
func Assemble(r io.Reader, opts ...Option) ([]byte, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("asm: read source: %w", err)
	}
	return AssembleBytes(src, opts...)
}

// AssembleString assembles src.
func AssembleString(src string, opts ...Option) ([]byte, error) {
	return AssembleBytes([]byte(src), opts...)
}

// AssembleBytes assembles src.
func AssembleBytes(src []byte, opts ...Option) ([]byte, error) {
	o := options{log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	if uint64(max(o.capacity, 0)) > tmf.MaxBufferSize {
		return nil, fmt.Errorf("asm: initial capacity %d: %w", o.capacity, tmf.ErrBufferTooLarge)
	}
	a := &assembler{
		lex: newLexer(src),
		w:   tmf.NewWriter(tmf.NewBuffer(o.capacity)),
		log: o.log,
	}
	if err := a.run(); err != nil {
		return nil, err
	}
	return a.w.Bytes(), nil
}

type assembler struct {
	lex    *lexer
	w      *tmf.Writer
	scopes scopes
	log    logger.Logger
}

func (a *assembler) run() error {
	if _, err := a.w.Header(); err != nil {
		return fmt.Errorf("asm: %w", err)
	}
	a.scopes.push()
	if err := a.body(false); err != nil {
		return err
	}
	root := a.scopes.pop()
	top := root.own(TopName)
	if top.IsNull() {
		return errorAt(ErrMissingTop, a.lex.pos(), "bind %q to the root block", TopName)
	}
	a.log.Debug("top block", "offset", top)
	if err := a.w.SetTop(top); err != nil {
		return fmt.Errorf("asm: %w", err)
	}
	return nil
}

// body parses statements into the current scope until "end" closes a nested
// block, or until the input runs out at the root.
func (a *assembler) body(nested bool) error {
	for {
		tok, ok := a.lex.next()
		if !ok {
			if nested {
				return errorAt(ErrUnexpectedEOF, a.lex.pos(), "missing end")
			}
			return nil
		}
		if tok.text == "end" {
			if !nested {
				return errorAt(ErrUnexpectedEnd, tok.pos, "no open block")
			}
			return nil
		}
		if err := a.statement(tok); err != nil {
			return err
		}
	}
}

// child parses a nested block in a fresh scope and returns that scope.
func (a *assembler) child() (scope, error) {
	a.scopes.push()
	err := a.body(true)
	return a.scopes.pop(), err
}

func (a *assembler) statement(tok token) error {
	var name string
	namePos := tok.pos
	if n := len(tok.text); n > 0 && tok.text[n-1] == ':' {
		name = tok.text[:n-1]
		if name == "" {
			return errorAt(ErrMalformedLiteral, tok.pos, "empty name")
		}
		next, err := a.word(tok)
		if err != nil {
			return err
		}
		tok = next
	}
	off, err := a.form(tok)
	if err != nil {
		return err
	}
	if name != "" {
		a.scopes.bind(name, off, namePos)
		a.log.Debug("bind", "name", name, "offset", off, "depth", len(a.scopes))
	}
	a.scopes.record(off)
	return nil
}

func (a *assembler) form(tok token) (tmf.Offset, error) {
	if len(tok.text) > 0 && tok.text[0] == '$' {
		return a.reference(tok)
	}
	switch tok.text {
	case "mesh":
		return a.mesh(tok)
	case "skeleton":
		return a.skeleton()
	case "skeleton-animation", "animation":
		return a.animation(tok)
	case "node":
		return a.node(tok)
	case "geometry-instance":
		return a.geometryInstance()
	case "camera":
		return a.camera(tok)
	case "array":
		return a.array(tok)
	case "offset-table":
		return a.offsetTable()
	case "external":
		return a.external(tok)
	}
	return tmf.Null, errorAt(ErrUnknownKeyword, tok.pos, "%q", tok.text)
}

func (a *assembler) reference(tok token) (tmf.Offset, error) {
	name := tok.text[1:]
	off, ok := a.scopes.lookup(name)
	if !ok {
		return tmf.Null, errorAt(ErrUndefinedName, tok.pos, "%q", name)
	}
	return off, nil
}

func (a *assembler) traced(kind string, h tmf.Handle) tmf.Offset {
	a.log.Debug("block", "form", kind, "offset", h.Offset())
	return h.Offset()
}

// fixedName packs a name stored inline in a record. Names that do not fit
// are rejected rather than truncated.
func fixedName(name string, pos Pos) (tmf.FixedString, error) {
	if len(name) > tmf.FixedStringSize {
		return tmf.FixedString{}, errorAt(ErrMalformedLiteral, pos, "name %q is longer than %d bytes", name, tmf.FixedStringSize)
	}
	return tmf.NewFixedString(name), nil
}

func writeErr(err error) error {
	return fmt.Errorf("asm: %w", err)
}

func (a *assembler) mesh(kw token) (tmf.Offset, error) {
	word, err := a.word(kw)
	if err != nil {
		return tmf.Null, err
	}
	layout, ok := tmf.ParseLayout(word.text)
	if !ok {
		return tmf.Null, errorAt(ErrMalformedLiteral, word.pos, "mesh layout %q", word.text)
	}
	h, err := a.w.Append(tmf.TagMesh, 0)
	if err != nil {
		return tmf.Null, writeErr(err)
	}
	body, err := a.child()
	if err != nil {
		return tmf.Null, err
	}
	m := tmf.Mesh{
		Layout:   layout,
		Indices:  body.own("indices"),
		Vertices: body.own("vertices"),
		Axes:     body.own("axes"),
		Metadata: body.own("metadata"),
	}
	if err := h.Store(m); err != nil {
		return tmf.Null, writeErr(err)
	}
	return a.traced("mesh", h), nil
}

func (a *assembler) skeleton() (tmf.Offset, error) {
	h, err := a.w.Append(tmf.TagSkeleton, 0)
	if err != nil {
		return tmf.Null, writeErr(err)
	}
	body, err := a.child()
	if err != nil {
		return tmf.Null, err
	}
	s := tmf.Skeleton{
		Bones:     body.own("bones"),
		Sequences: body.own("sequences"),
	}
	if err := h.Store(s); err != nil {
		return tmf.Null, writeErr(err)
	}
	return a.traced("skeleton", h), nil
}

func (a *assembler) animation(kw token) (tmf.Offset, error) {
	start, err := a.float(kw)
	if err != nil {
		return tmf.Null, err
	}
	end, err := a.float(kw)
	if err != nil {
		return tmf.Null, err
	}
	h, err := a.w.Append(tmf.TagAnimation, 0)
	if err != nil {
		return tmf.Null, writeErr(err)
	}
	body, err := a.child()
	if err != nil {
		return tmf.Null, err
	}
	anim := tmf.SkeletonAnimation{
		Start:     start,
		End:       end,
		KeyFrames: body.own("key-frames"),
	}
	if err := h.Store(anim); err != nil {
		return tmf.Null, writeErr(err)
	}
	return a.traced("skeleton-animation", h), nil
}

// node is written after its body since its size depends on the number of
// child statements.
func (a *assembler) node(kw token) (tmf.Offset, error) {
	name, err := a.word(kw)
	if err != nil {
		return tmf.Null, err
	}
	transform, err := a.matrix(kw)
	if err != nil {
		return tmf.Null, err
	}
	fixed, err := fixedName(name.text, name.pos)
	if err != nil {
		return tmf.Null, err
	}
	body, err := a.child()
	if err != nil {
		return tmf.Null, err
	}
	h, err := a.w.AppendRecord(tmf.Node{
		Name:      fixed,
		Transform: transform,
		Children:  body.offsets,
	})
	if err != nil {
		return tmf.Null, writeErr(err)
	}
	return a.traced("node", h), nil
}

func (a *assembler) geometryInstance() (tmf.Offset, error) {
	h, err := a.w.Append(tmf.TagGeometryInstance, 0)
	if err != nil {
		return tmf.Null, writeErr(err)
	}
	body, err := a.child()
	if err != nil {
		return tmf.Null, err
	}
	g := tmf.GeometryInstance{
		Mesh:     body.own("mesh"),
		Skeleton: body.own("skeleton"),
		Material: body.own("material"),
	}
	if err := h.Store(g); err != nil {
		return tmf.Null, writeErr(err)
	}
	return a.traced("geometry-instance", h), nil
}

// camera has a fixed arity and no body.
func (a *assembler) camera(kw token) (tmf.Offset, error) {
	view, err := a.matrix(kw)
	if err != nil {
		return tmf.Null, err
	}
	projection, err := a.matrix(kw)
	if err != nil {
		return tmf.Null, err
	}
	h, err := a.w.AppendRecord(tmf.Camera{View: view, Projection: projection})
	if err != nil {
		return tmf.Null, writeErr(err)
	}
	return a.traced("camera", h), nil
}

func (a *assembler) external(kw token) (tmf.Offset, error) {
	url, err := a.word(kw)
	if err != nil {
		return tmf.Null, err
	}
	h, err := a.w.AppendRecord(tmf.External{URL: url.text})
	if err != nil {
		return tmf.Null, writeErr(err)
	}
	return a.traced("external", h), nil
}

// offsetTable collects the names bound in its body, sorted by name.
func (a *assembler) offsetTable() (tmf.Offset, error) {
	body, err := a.child()
	if err != nil {
		return tmf.Null, err
	}
	names := body.sortedNames()
	entries := make([]tmf.NamedOffset, 0, len(names))
	for _, name := range names {
		fixed, err := fixedName(name, body.positions[name])
		if err != nil {
			return tmf.Null, err
		}
		entries = append(entries, tmf.NamedOffset{
			Name:   fixed,
			Offset: body.names[name],
		})
	}
	h, err := tmf.AppendArray(a.w, entries)
	if err != nil {
		return tmf.Null, writeErr(err)
	}
	return a.traced("offset-table", h), nil
}
