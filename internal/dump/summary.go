package dump

import (
	"cmp"
	"slices"

	"github.com/samcharles93/tmf/pkg/tmf"
)

// Summary counts the blocks of a container by tag.
type Summary struct {
	Size   uint64     `json:"size"`
	Top    tmf.Offset `json:"top"`
	TopTag tmf.Tag    `json:"top_tag,omitempty"`
	Blocks int        `json:"blocks"`
	Tags   []TagCount `json:"tags"`
	// Error is set when the walk stopped at a malformed block.
	Error string `json:"error,omitempty"`
}

type TagCount struct {
	Tag   tmf.Tag `json:"tag"`
	Kind  string  `json:"kind,omitempty"`
	Count int     `json:"count"`
	Bytes uint64  `json:"bytes"`
}

// Summarize walks every block of r in offset order. A malformed block ends
// the walk and is reported in Summary.Error rather than as an error; only a
// bad header fails.
func Summarize(r *tmf.Reader) (Summary, error) {
	if err := r.Validate(); err != nil {
		return Summary{}, err
	}
	s := Summary{Size: uint64(r.Size())}
	if top, ok := r.Top(); ok {
		s.Top = top
		if blk, ok := r.BlockAt(top); ok {
			s.TopTag = blk.Tag
		}
	}

	counts := make(map[tmf.Tag]*TagCount)
	err := r.Walk(func(blk tmf.Block) error {
		s.Blocks++
		c, ok := counts[blk.Tag]
		if !ok {
			c = &TagCount{Tag: blk.Tag, Kind: tmf.ShapeName(blk.Tag)}
			counts[blk.Tag] = c
		}
		c.Count++
		c.Bytes += blk.Size
		return nil
	})
	if err != nil {
		s.Error = err.Error()
	}

	s.Tags = make([]TagCount, 0, len(counts))
	for _, c := range counts {
		s.Tags = append(s.Tags, *c)
	}
	slices.SortFunc(s.Tags, func(a, b TagCount) int {
		return cmp.Compare(a.Tag.String(), b.Tag.String())
	})
	return s, nil
}
