package tmf

import (
	"fmt"
	"iter"
)

// Array is a read-only view over the elements of an array block. Elements
// are decoded on access; the view aliases the container bytes.
type Array[E any] struct {
	block Block
	items []byte
	width int
	dec   func([]byte) E
}

func newArray[E any, P element[E]](blk Block, items []byte) Array[E] {
	var zero E
	return Array[E]{
		block: blk,
		items: items,
		width: P(&zero).ByteSize(),
		dec: func(b []byte) E {
			var v E
			P(&v).decode(b)
			return v
		},
	}
}

// Block returns the array block header.
func (a Array[E]) Block() Block {
	return a.block
}

// Count returns the number of elements.
func (a Array[E]) Count() int {
	if a.width == 0 {
		return 0
	}
	return len(a.items) / a.width
}

// At decodes element i.
func (a Array[E]) At(i int) (E, error) {
	if i < 0 || i >= a.Count() {
		var zero E
		return zero, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, a.Count())
	}
	return a.dec(a.items[i*a.width : (i+1)*a.width]), nil
}

// All iterates the element window in order.
func (a Array[E]) All() iter.Seq2[int, E] {
	return func(yield func(int, E) bool) {
		for i := 0; i < a.Count(); i++ {
			if !yield(i, a.dec(a.items[i*a.width:(i+1)*a.width])) {
				return
			}
		}
	}
}

// Slice decodes every element.
func (a Array[E]) Slice() []E {
	out := make([]E, 0, a.Count())
	for _, v := range a.All() {
		out = append(out, v)
	}
	return out
}

// Bytes returns the raw element region.
func (a Array[E]) Bytes() []byte {
	return a.items
}

// Named is implemented by elements that can be looked up by name.
type Named interface {
	Matches(name string) bool
}

// Table is an array whose elements are looked up by name.
type Table[E Named] struct {
	Array[E]
}

// Lookup scans the table in order and returns the first match.
func (t Table[E]) Lookup(name string) (E, bool) {
	for _, v := range t.All() {
		if v.Matches(name) {
			return v, true
		}
	}
	var zero E
	return zero, false
}

// OffsetTable is the named offset dictionary.
type OffsetTable = Table[NamedOffset]

// Axes is the named axis table of a mesh.
type Axes = Table[NamedAxis]
