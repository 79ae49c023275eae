// Package assembler turns a finalized index into its two published forms:
// the uncompressed dictionary/postings table and the compressed form made
// of a shared dictionary string plus gap-coded postings bits per term.
package assembler

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/codec"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/dictionary"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

// Layout is the compression configuration of one index variant.
type Layout struct {
	Scheme    codec.Scheme
	Style     dictionary.Style
	BlockSize int
}

func (l Layout) String() string {
	return fmt.Sprintf("%s/%s/%d", l.Style, l.Scheme, l.BlockSize)
}

// Uncompressed is the ordered (term, df, postings) table.
type Uncompressed struct {
	Entries []index.Entry
}

// CompressedEntry is aligned by position with the i-th dictionary term.
type CompressedEntry struct {
	DocFreq   int
	Postings  *codec.BitString
	Offset    int
	HasOffset bool
}

type Compressed struct {
	Layout     Layout
	Dictionary string
	Entries    []CompressedEntry
}

// Assemble produces both forms of idx. Either both are returned or an
// error naming the offending term.
func Assemble(idx *index.Index, layout Layout) (*Uncompressed, *Compressed, error) {
	entries := idx.Entries()
	dict, err := dictionary.Compress(idx.Terms(), layout.Style, layout.BlockSize)
	if err != nil {
		return nil, nil, fmt.Errorf("compressing dictionary: %w", err)
	}

	postings, err := encodePostings(entries, layout.Scheme)
	if err != nil {
		return nil, nil, err
	}

	compressed := &Compressed{
		Layout:     layout,
		Dictionary: dict.Encoded,
		Entries:    make([]CompressedEntry, len(entries)),
	}
	for i, e := range entries {
		off, ok := dict.Offset(i)
		compressed.Entries[i] = CompressedEntry{
			DocFreq:   e.DocFreq,
			Postings:  postings[i],
			Offset:    off,
			HasOffset: ok,
		}
	}
	return &Uncompressed{Entries: entries}, compressed, nil
}

// encodePostings gap-codes every term's postings. Terms are independent, so
// the work is spread over GOMAXPROCS workers; the reported error is the one
// for the lowest term position.
func encodePostings(entries []index.Entry, scheme codec.Scheme) ([]*codec.BitString, error) {
	out := make([]*codec.BitString, len(entries))
	errs := make([]error, len(entries))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range entries {
		g.Go(func() error {
			bs, err := codec.EncodeGaps(entries[i].Postings.DocIDs(), scheme)
			if err != nil {
				errs[i] = apperrors.WithTerm(err, entries[i].Term)
				return errs[i]
			}
			out[i] = bs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil {
				return nil, fmt.Errorf("encoding postings: %w", e)
			}
		}
		return nil, fmt.Errorf("encoding postings: %w", err)
	}
	return out, nil
}

// Decoded is one row recovered from a compressed form.
type Decoded struct {
	Term    string
	DocFreq int
	DocIDs  []uint32
}

// Disassemble rebuilds terms and docIDs from c, walking the dictionary
// forward from each block offset in step with the entries.
func Disassemble(c *Compressed) ([]Decoded, error) {
	dict := &dictionary.Dictionary{
		Style:     c.Layout.Style,
		BlockSize: c.Layout.BlockSize,
		Encoded:   c.Dictionary,
		Offsets:   make([]int, len(c.Entries)),
	}
	for i, e := range c.Entries {
		if e.HasOffset {
			dict.Offsets[i] = e.Offset
		} else {
			dict.Offsets[i] = -1
		}
	}
	terms, err := dict.Terms()
	if err != nil {
		return nil, fmt.Errorf("decoding dictionary: %w", err)
	}
	if len(terms) != len(c.Entries) {
		return nil, apperrors.Newf(apperrors.ErrMalformedArtifact,
			"dictionary holds %d terms for %d entries", len(terms), len(c.Entries))
	}

	out := make([]Decoded, len(terms))
	for i, e := range c.Entries {
		ids, err := codec.DecodeGaps(e.Postings, c.Layout.Scheme)
		if err != nil {
			return nil, apperrors.WithTerm(err, terms[i])
		}
		if len(ids) != e.DocFreq {
			return nil, apperrors.WithTerm(apperrors.Newf(apperrors.ErrMalformedArtifact,
				"df %d but %d postings", e.DocFreq, len(ids)), terms[i])
		}
		out[i] = Decoded{Term: terms[i], DocFreq: e.DocFreq, DocIDs: ids}
	}
	return out, nil
}
