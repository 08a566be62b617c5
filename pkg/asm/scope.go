package asm

import (
	"slices"

	"github.com/samcharles93/tmf/pkg/tmf"
)

// scope holds the names bound in one block of source and the offset of every
// statement in it, in order.
type scope struct {
	names     map[string]tmf.Offset
	positions map[string]Pos
	offsets   []tmf.Offset
}

// own returns a name bound directly in s, or the null offset.
func (s scope) own(name string) tmf.Offset {
	return s.names[name]
}

// sortedNames returns the bound names in lexical order.
func (s scope) sortedNames() []string {
	names := make([]string, 0, len(s.names))
	for name := range s.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// scopes is the stack of open blocks, innermost last. A name resolves in the
// innermost scope that binds it; outer scopes never see inner names.
type scopes []scope

func (s *scopes) push() {
	*s = append(*s, scope{
		names:     make(map[string]tmf.Offset),
		positions: make(map[string]Pos),
	})
}

func (s *scopes) pop() scope {
	old := *s
	top := old[len(old)-1]
	*s = old[:len(old)-1]
	return top
}

func (s scopes) current() *scope {
	return &s[len(s)-1]
}

func (s scopes) bind(name string, off tmf.Offset, pos Pos) {
	cur := s.current()
	cur.names[name] = off
	cur.positions[name] = pos
}

func (s scopes) record(off tmf.Offset) {
	cur := s.current()
	cur.offsets = append(cur.offsets, off)
}

func (s scopes) lookup(name string) (tmf.Offset, bool) {
	for i := len(s) - 1; i >= 0; i-- {
		if off, ok := s[i].names[name]; ok {
			return off, true
		}
	}
	return tmf.Null, false
}
