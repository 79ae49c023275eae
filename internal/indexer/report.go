package indexer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/assembler"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/tracing"
)

// Report summarises a build.
type Report struct {
	BuildID   string
	Documents int
	Skipped   int
	// Longest is the document with the largest doc length.
	Longest  index.DocStats
	Variants []VariantReport
	Timings  []tracing.Timing
}

// VariantReport describes one variant. Err is set when the variant failed,
// in which case only Name, Reducer and Layout are meaningful.
type VariantReport struct {
	Name       string
	Reducer    string
	Layout     assembler.Layout
	Terms      int
	DocCount   int
	MaxDF      int
	MaxDFTerms []string
	MinDFTerms []string
	MaxTFDoc   index.DocStats
	Artifacts  *segment.Artifacts
	Probes     []Probe
	Err        error
}

// Probe is the dictionary entry found for one probe term.
type Probe struct {
	Term              string
	Reduced           string
	Found             bool
	DocFreq           int
	Postings          index.PostingList
	InvertedListBytes int
}

// Failed reports whether any variant failed.
func (r *Report) Failed() bool {
	for _, v := range r.Variants {
		if v.Err != nil {
			return true
		}
	}
	return false
}

// Variant returns the report of the named variant.
func (r *Report) Variant(name string) (*VariantReport, bool) {
	for i := range r.Variants {
		if strings.EqualFold(r.Variants[i].Name, name) {
			return &r.Variants[i], true
		}
	}
	return nil, false
}

// Render writes a human-readable summary to w.
func (r *Report) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "build\t%s\n", r.BuildID)
	fmt.Fprintf(tw, "documents indexed\t%d\n", r.Documents)
	fmt.Fprintf(tw, "documents skipped\t%d\n", r.Skipped)
	if r.Longest.DocID != 0 {
		fmt.Fprintf(tw, "largest doclen\tdoc #%d with a doclen of %d\n", r.Longest.DocID, r.Longest.DocLength)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, v := range r.Variants {
		fmt.Fprintf(w, "\n== %s (%s, %s)\n", v.Name, v.Reducer, v.Layout)
		if v.Err != nil {
			fmt.Fprintf(w, "FAILED: %v\n", v.Err)
			continue
		}
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "terms\t%d\n", v.Terms)
		fmt.Fprintf(tw, "uncompressed size\t%d bytes\t%s\n", v.Artifacts.UncompressedBytes, v.Artifacts.UncompressedPath)
		fmt.Fprintf(tw, "compressed size\t%d bytes\t%s\n", v.Artifacts.CompressedBytes, v.Artifacts.CompressedPath)
		fmt.Fprintf(tw, "largest df\t%s\n", dfList(v.MaxDFTerms, v.MaxDF))
		fmt.Fprintf(tw, "lowest df\t%d terms with df 1\n", len(v.MinDFTerms))
		fmt.Fprintf(tw, "largest max_tf\tdoc #%d with a max_tf of %d\n", v.MaxTFDoc.DocID, v.MaxTFDoc.MaxTermFreq)
		if err := tw.Flush(); err != nil {
			return err
		}
		for _, p := range v.Probes {
			if !p.Found {
				fmt.Fprintf(w, "  %s (%s): not in dictionary\n", p.Term, p.Reduced)
				continue
			}
			pairs := make([]string, len(p.Postings))
			for i, posting := range p.Postings {
				pairs[i] = fmt.Sprintf("%d:%d", posting.DocID, posting.TermFreq)
			}
			fmt.Fprintf(w, "  %s (%s): df=%d inverted list=%d bytes tf=[%s]\n",
				p.Term, p.Reduced, p.DocFreq, p.InvertedListBytes, strings.Join(pairs, " "))
		}
	}

	if len(r.Timings) > 0 {
		fmt.Fprintln(w, "\n== timings")
		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, t := range r.Timings {
			fmt.Fprintf(tw, "%s\t%s\n", t.Path, t.Duration)
		}
		return tw.Flush()
	}
	return nil
}

func dfList(terms []string, df int) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = fmt.Sprintf("%s:%d", t, df)
	}
	return strings.Join(parts, " ")
}
