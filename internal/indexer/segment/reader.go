package segment

import (
	"fmt"
	"os"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/armon/go-radix"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/assembler"
)

// Reader serves lookups from a decoded compressed artifact.
type Reader struct {
	filePath string
	layout   assembler.Layout
	rows     []assembler.Decoded
	terms    *radix.Tree
	docs     *roaring.Bitmap
}

// OpenCompressed loads and fully decodes the compressed artifact at path.
func OpenCompressed(path string, layout assembler.Layout) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening compressed index: %w", err)
	}
	defer f.Close()

	c, err := ReadCompressed(f, layout)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return NewReader(path, c)
}

// NewReader decodes an in-memory compressed form.
func NewReader(name string, c *assembler.Compressed) (*Reader, error) {
	rows, err := assembler.Disassemble(c)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	r := &Reader{
		filePath: name,
		layout:   c.Layout,
		rows:     rows,
		terms:    radix.New(),
		docs:     roaring.New(),
	}
	for i, row := range rows {
		r.terms.Insert(row.Term, i)
		r.docs.AddMany(row.DocIDs)
	}
	return r, nil
}

// Lookup returns the decoded row for term.
func (r *Reader) Lookup(term string) (assembler.Decoded, bool) {
	v, ok := r.terms.Get(term)
	if !ok {
		return assembler.Decoded{}, false
	}
	return r.rows[v.(int)], true
}

// Prefix lists the dictionary terms starting with prefix, in order.
func (r *Reader) Prefix(prefix string) []string {
	var out []string
	r.terms.WalkPrefix(prefix, func(term string, _ interface{}) bool {
		out = append(out, term)
		return false
	})
	sort.Strings(out)
	return out
}

// DocSet returns the documents containing term.
func (r *Reader) DocSet(term string) *roaring.Bitmap {
	row, ok := r.Lookup(term)
	if !ok {
		return roaring.New()
	}
	return roaring.BitmapOf(row.DocIDs...)
}

// Intersect returns the documents containing every term.
func (r *Reader) Intersect(terms ...string) *roaring.Bitmap {
	if len(terms) == 0 {
		return roaring.New()
	}
	sets := make([]*roaring.Bitmap, 0, len(terms))
	for _, t := range terms {
		sets = append(sets, r.DocSet(t))
	}
	return roaring.FastAnd(sets...)
}

func (r *Reader) Terms() int {
	return len(r.rows)
}

func (r *Reader) DocCount() uint64 {
	return r.docs.GetCardinality()
}

func (r *Reader) Layout() assembler.Layout {
	return r.layout
}

func (r *Reader) Path() string {
	return r.filePath
}
