package index

import (
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

// Accumulator is the working, unsorted term -> postings mapping built while
// documents are ingested. It is created at ingestion start, finalized once
// and must not be mutated afterwards. It is not safe for concurrent use.
type Accumulator struct {
	postings map[string]PostingList
	docs     []DocStats
}

func NewAccumulator() *Accumulator {
	return &Accumulator{
		postings: make(map[string]PostingList),
	}
}

// Add records the reduced terms of document docID and returns the highest
// single-term frequency in it. Callers must supply strictly increasing
// docIDs across calls; the order is not checked here.
func (a *Accumulator) Add(terms []string, docID, docLength uint32) (uint32, error) {
	if len(terms) == 0 {
		return 0, &apperrors.IndexError{
			Err:     apperrors.ErrEmptyDocument,
			DocID:   docID,
			Message: "no terms after reduction",
		}
	}
	counts := make(map[string]uint32, len(terms))
	order := make([]string, 0, len(terms))
	var maxTF uint32
	for _, term := range terms {
		if counts[term] == 0 {
			order = append(order, term)
		}
		counts[term]++
		if counts[term] > maxTF {
			maxTF = counts[term]
		}
	}
	for _, term := range order {
		a.postings[term] = append(a.postings[term], Posting{
			DocID:       docID,
			TermFreq:    counts[term],
			MaxTermFreq: maxTF,
			DocLength:   docLength,
		})
	}
	a.docs = append(a.docs, DocStats{
		DocID:       docID,
		DocLength:   docLength,
		MaxTermFreq: maxTF,
	})
	return maxTF, nil
}

// Terms is the number of distinct terms seen so far.
func (a *Accumulator) Terms() int {
	return len(a.postings)
}

// Docs returns the per-document statistics in ingestion order.
func (a *Accumulator) Docs() []DocStats {
	return a.docs
}

// Finalize sorts the dictionary, attaches document frequencies and collects
// the extremal-df term sets in the same pass.
func (a *Accumulator) Finalize() *Index {
	entries := make([]Entry, 0, len(a.postings))
	for term, postings := range a.postings {
		entries = append(entries, Entry{
			Term:     term,
			DocFreq:  len(postings),
			Postings: postings,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})

	idx := &Index{
		entries: entries,
		docs:    newDocSet(a.docs),
	}
	for _, e := range entries {
		switch {
		case e.DocFreq > idx.maxDF:
			idx.maxDF = e.DocFreq
			idx.maxDFTerms = append(idx.maxDFTerms[:0], e.Term)
		case e.DocFreq == idx.maxDF:
			idx.maxDFTerms = append(idx.maxDFTerms, e.Term)
		}
		if e.DocFreq == 1 {
			idx.minDFTerms = append(idx.minDFTerms, e.Term)
		}
	}
	return idx
}
