package index

// Posting holds one term's statistics within one document.
type Posting struct {
	DocID       uint32
	TermFreq    uint32
	MaxTermFreq uint32
	DocLength   uint32
}

// PostingList is ordered by strictly increasing DocID.
type PostingList []Posting

// DocIDs returns the docIDs of the list in order.
func (pl PostingList) DocIDs() []uint32 {
	ids := make([]uint32, len(pl))
	for i, p := range pl {
		ids[i] = p.DocID
	}
	return ids
}

// Entry is one dictionary row of a finalized Index.
type Entry struct {
	Term     string
	DocFreq  int
	Postings PostingList
}

// DocStats summarizes one ingested document.
type DocStats struct {
	DocID       uint32
	DocLength   uint32
	MaxTermFreq uint32
}
