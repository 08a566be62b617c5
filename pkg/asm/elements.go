package asm

import (
	"strconv"

	"github.com/samcharles93/tmf/pkg/tmf"
)

// word consumes the next token. after is the token that required it and is
// used to position the error when the input ends early.
func (a *assembler) word(after token) (token, error) {
	tok, ok := a.lex.next()
	if !ok {
		return token{}, errorAt(ErrUnexpectedEOF, a.lex.pos(), "after %q", after.text)
	}
	return tok, nil
}

func (a *assembler) float(after token) (float32, error) {
	tok, err := a.word(after)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok.text, 32)
	if err != nil {
		return 0, errorAt(ErrMalformedLiteral, tok.pos, "number %q", tok.text)
	}
	return float32(v), nil
}

func (a *assembler) floats(after token, dst []float32) error {
	for i := range dst {
		v, err := a.float(after)
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

func (a *assembler) unsigned(after token, bits int) (uint64, error) {
	tok, err := a.word(after)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(tok.text, 10, bits)
	if err != nil {
		return 0, errorAt(ErrMalformedLiteral, tok.pos, "%d-bit unsigned integer %q", bits, tok.text)
	}
	return v, nil
}

func (a *assembler) matrix(after token) (tmf.Matrix, error) {
	var m tmf.Matrix
	err := a.floats(after, m[:])
	return m, err
}

// elements calls read once per element until the closing "end".
func (a *assembler) elements(read func(first token) error) error {
	for {
		tok, ok := a.lex.peek()
		if !ok {
			return errorAt(ErrUnexpectedEOF, a.lex.pos(), "missing end of array")
		}
		if tok.text == "end" {
			a.lex.next()
			return nil
		}
		if err := read(tok); err != nil {
			return err
		}
	}
}

// array reads "array <type>" followed by element literals up to "end".
func (a *assembler) array(kw token) (tmf.Offset, error) {
	typ, err := a.word(kw)
	if err != nil {
		return tmf.Null, err
	}

	var h tmf.Handle
	switch typ.text {
	case "index16":
		var items []tmf.Index16
		err = a.elements(func(first token) error {
			v, err := a.unsigned(first, 16)
			items = append(items, tmf.Index16(v))
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "index32":
		var items []tmf.Index32
		err = a.elements(func(first token) error {
			v, err := a.unsigned(first, 32)
			items = append(items, tmf.Index32(v))
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "reference":
		var items []tmf.Reference
		err = a.elements(func(first token) error {
			tok, _ := a.lex.next()
			if len(tok.text) < 2 || tok.text[0] != '$' {
				return errorAt(ErrMalformedLiteral, tok.pos, "reference %q", tok.text)
			}
			off, err := a.reference(tok)
			items = append(items, tmf.Reference(off))
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "vertex-p2":
		var items []tmf.VertexP2
		err = a.elements(func(first token) error {
			var v tmf.VertexP2
			err := a.floats(first, v.Position[:])
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "vertex-p2c4":
		var items []tmf.VertexP2C4
		err = a.elements(func(first token) error {
			var v tmf.VertexP2C4
			err := a.readAll(first, v.Position[:], v.Color[:])
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "vertex-p3":
		var items []tmf.VertexP3
		err = a.elements(func(first token) error {
			var v tmf.VertexP3
			err := a.floats(first, v.Position[:])
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "vertex-p3n3":
		var items []tmf.VertexP3N3
		err = a.elements(func(first token) error {
			var v tmf.VertexP3N3
			err := a.readAll(first, v.Position[:], v.Normal[:])
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "vertex-p3n3m2":
		var items []tmf.VertexP3N3M2
		err = a.elements(func(first token) error {
			var v tmf.VertexP3N3M2
			err := a.readAll(first, v.Position[:], v.Normal[:], v.Mapping[:])
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "vertex-p3n3m2c4":
		var items []tmf.VertexP3N3M2C4
		err = a.elements(func(first token) error {
			var v tmf.VertexP3N3M2C4
			err := a.readAll(first, v.Position[:], v.Normal[:], v.Mapping[:], v.Color[:])
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "vertex-p3n3m2b4":
		var items []tmf.VertexP3N3M2B4
		err = a.elements(func(first token) error {
			var v tmf.VertexP3N3M2B4
			if err := a.readAll(first, v.Position[:], v.Normal[:], v.Mapping[:]); err != nil {
				return err
			}
			for i := range v.Bones {
				b, err := a.unsigned(first, 8)
				if err != nil {
					return err
				}
				v.Bones[i] = uint8(b)
			}
			err := a.floats(first, v.Weights[:])
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "axis":
		var items []tmf.NamedAxis
		err = a.elements(func(first token) error {
			name, _ := a.lex.next()
			fixed, err := fixedName(name.text, name.pos)
			if err != nil {
				return err
			}
			v := tmf.NamedAxis{Name: fixed}
			err = a.readAll(first, v.Translation[:], v.Rotation[:])
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "skeleton-bone":
		var items []tmf.SkeletonBone
		err = a.elements(func(first token) error {
			name, _ := a.lex.next()
			fixed, err := fixedName(name.text, name.pos)
			if err != nil {
				return err
			}
			parent, err := a.unsigned(first, 8)
			if err != nil {
				return err
			}
			v := tmf.SkeletonBone{Name: fixed, Parent: uint8(parent)}
			v.Transform, err = a.matrix(first)
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	case "skeleton-animation-key-frame":
		var items []tmf.KeyFrame
		err = a.elements(func(first token) error {
			bone, err := a.unsigned(first, 8)
			if err != nil {
				return err
			}
			interp, err := a.word(first)
			if err != nil {
				return err
			}
			method, ok := tmf.ParseInterpolation(interp.text)
			if !ok {
				return errorAt(ErrMalformedLiteral, interp.pos, "interpolation %q", interp.text)
			}
			v := tmf.KeyFrame{Bone: uint8(bone), Interpolation: method}
			if v.Time, err = a.float(first); err != nil {
				return err
			}
			v.Transform, err = a.matrix(first)
			items = append(items, v)
			return err
		})
		if err == nil {
			h, err = tmf.AppendArray(a.w, items)
		}
	default:
		return tmf.Null, errorAt(ErrUnknownType, typ.pos, "%q", typ.text)
	}
	if err != nil {
		if _, ok := err.(*ParseError); ok {
			return tmf.Null, err
		}
		return tmf.Null, writeErr(err)
	}
	return a.traced("array "+typ.text, h), nil
}

// readAll fills each destination in turn.
func (a *assembler) readAll(after token, dsts ...[]float32) error {
	for _, dst := range dsts {
		if err := a.floats(after, dst); err != nil {
			return err
		}
	}
	return nil
}
