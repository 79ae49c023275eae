package index

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// Index is the finalized, lexicographically ordered dictionary. It is
// read-only.
type Index struct {
	entries    []Entry
	docs       docSet
	maxDF      int
	maxDFTerms []string
	minDFTerms []string
}

type docSet struct {
	ids   *roaring.Bitmap
	stats []DocStats
}

func newDocSet(stats []DocStats) docSet {
	ids := roaring.New()
	for _, s := range stats {
		ids.Add(s.DocID)
	}
	return docSet{ids: ids, stats: stats}
}

// Entries returns the dictionary in ascending term order.
func (x *Index) Entries() []Entry {
	return x.entries
}

func (x *Index) Len() int {
	return len(x.entries)
}

// Terms returns the ordered term sequence.
func (x *Index) Terms() []string {
	terms := make([]string, len(x.entries))
	for i, e := range x.entries {
		terms[i] = e.Term
	}
	return terms
}

// Lookup finds term by binary search over the sorted dictionary.
func (x *Index) Lookup(term string) (Entry, bool) {
	i := sort.Search(len(x.entries), func(i int) bool {
		return x.entries[i].Term >= term
	})
	if i >= len(x.entries) || x.entries[i].Term != term {
		return Entry{}, false
	}
	return x.entries[i], true
}

// DocCount is the number of documents that contributed postings.
func (x *Index) DocCount() int {
	return int(x.docs.ids.GetCardinality())
}

// Documents returns a copy of the set of contributing docIDs.
func (x *Index) Documents() *roaring.Bitmap {
	return x.docs.ids.Clone()
}

// MaxDF is the largest document frequency in the dictionary.
func (x *Index) MaxDF() int {
	return x.maxDF
}

// MaxDFTerms lists every term whose df equals MaxDF, in term order.
func (x *Index) MaxDFTerms() []string {
	return x.maxDFTerms
}

// MinDFTerms lists every term with df 1, in term order.
func (x *Index) MinDFTerms() []string {
	return x.minDFTerms
}

// DocWithMaxTermFreq returns the first document with the largest max_tf.
func (x *Index) DocWithMaxTermFreq() (DocStats, bool) {
	return x.pickDoc(func(a, b DocStats) bool { return a.MaxTermFreq > b.MaxTermFreq })
}

// DocWithMaxLength returns the first document with the largest length.
func (x *Index) DocWithMaxLength() (DocStats, bool) {
	return x.pickDoc(func(a, b DocStats) bool { return a.DocLength > b.DocLength })
}

func (x *Index) pickDoc(better func(a, b DocStats) bool) (DocStats, bool) {
	if len(x.docs.stats) == 0 {
		return DocStats{}, false
	}
	best := x.docs.stats[0]
	for _, s := range x.docs.stats[1:] {
		if better(s, best) {
			best = s
		}
	}
	return best, true
}
