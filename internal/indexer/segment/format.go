package segment

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/assembler"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/codec"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

const (
	postingSep = "->"
	fieldSep   = ":"
	maxLine    = 64 << 20
)

// WriteUncompressed writes one line per term:
//
//	term \t df \t doc:tf:maxtf:len->doc:tf:maxtf:len
func WriteUncompressed(w io.Writer, u *assembler.Uncompressed) error {
	bw := bufio.NewWriter(w)
	for _, e := range u.Entries {
		bw.WriteString(e.Term)
		bw.WriteByte('\t')
		bw.WriteString(strconv.Itoa(e.DocFreq))
		bw.WriteByte('\t')
		bw.WriteString(FormatPostings(e.Postings))
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing term %q: %w", e.Term, err)
		}
	}
	return bw.Flush()
}

// FormatPostings renders pl as doc:tf:maxtf:len entries joined by "->".
func FormatPostings(pl index.PostingList) string {
	var sb strings.Builder
	for i, p := range pl {
		if i > 0 {
			sb.WriteString(postingSep)
		}
		sb.WriteString(strconv.FormatUint(uint64(p.DocID), 10))
		sb.WriteString(fieldSep)
		sb.WriteString(strconv.FormatUint(uint64(p.TermFreq), 10))
		sb.WriteString(fieldSep)
		sb.WriteString(strconv.FormatUint(uint64(p.MaxTermFreq), 10))
		sb.WriteString(fieldSep)
		sb.WriteString(strconv.FormatUint(uint64(p.DocLength), 10))
	}
	return sb.String()
}

// ReadUncompressed parses the WriteUncompressed format.
func ReadUncompressed(r io.Reader) (*assembler.Uncompressed, error) {
	sc := newScanner(r)
	u := &assembler.Uncompressed{}
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		parts := strings.Split(text, "\t")
		if len(parts) != 3 {
			return nil, malformed(line, "want 3 tab-separated fields, got %d", len(parts))
		}
		df, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, malformed(line, "bad document frequency %q", parts[1])
		}
		postings, err := parsePostings(parts[2])
		if err != nil {
			return nil, apperrors.WithTerm(fmt.Errorf("line %d: %w", line, err), parts[0])
		}
		if df != len(postings) {
			return nil, malformed(line, "df %d but %d postings", df, len(postings))
		}
		u.Entries = append(u.Entries, index.Entry{Term: parts[0], DocFreq: df, Postings: postings})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading uncompressed index: %w", err)
	}
	return u, nil
}

func parsePostings(s string) (index.PostingList, error) {
	raw := strings.Split(s, postingSep)
	out := make(index.PostingList, 0, len(raw))
	for _, r := range raw {
		fields := strings.Split(r, fieldSep)
		if len(fields) != 4 {
			return nil, apperrors.Newf(apperrors.ErrMalformedArtifact, "posting %q needs 4 fields", r)
		}
		var vals [4]uint32
		for i, f := range fields {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, apperrors.Newf(apperrors.ErrMalformedArtifact, "posting %q: %v", r, err)
			}
			vals[i] = uint32(v)
		}
		p := index.Posting{DocID: vals[0], TermFreq: vals[1], MaxTermFreq: vals[2], DocLength: vals[3]}
		if n := len(out); n > 0 && p.DocID <= out[n-1].DocID {
			return nil, apperrors.WithDoc(apperrors.Newf(apperrors.ErrOutOfOrderIngestion,
				"doc %d follows doc %d", p.DocID, out[n-1].DocID), p.DocID)
		}
		out = append(out, p)
	}
	return out, nil
}

// WriteCompressed writes the dictionary string on the first line, then one
// df:bits[:offset] line per term in dictionary order.
func WriteCompressed(w io.Writer, c *assembler.Compressed) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(c.Dictionary)
	bw.WriteByte('\n')
	for i, e := range c.Entries {
		bw.WriteString(strconv.Itoa(e.DocFreq))
		bw.WriteString(fieldSep)
		bw.WriteString(e.Postings.String())
		if e.HasOffset {
			bw.WriteString(fieldSep)
			bw.WriteString(strconv.Itoa(e.Offset))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadCompressed parses the WriteCompressed format. The layout is not
// recorded in the artifact and must be supplied.
func ReadCompressed(r io.Reader, layout assembler.Layout) (*assembler.Compressed, error) {
	sc := newScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading compressed index: %w", err)
		}
		return nil, apperrors.New(apperrors.ErrMalformedArtifact, "missing dictionary line")
	}
	c := &assembler.Compressed{Layout: layout, Dictionary: sc.Text()}
	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, fieldSep)
		if len(fields) < 2 || len(fields) > 3 {
			return nil, malformed(line, "want df:bits[:offset], got %q", text)
		}
		df, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, malformed(line, "bad document frequency %q", fields[0])
		}
		bits, err := codec.ParseBitString(fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e := assembler.CompressedEntry{DocFreq: df, Postings: bits}
		if len(fields) == 3 {
			off, err := strconv.Atoi(fields[2])
			if err != nil || off < 0 || off > len(c.Dictionary) {
				return nil, malformed(line, "bad offset %q", fields[2])
			}
			e.Offset, e.HasOffset = off, true
		}
		c.Entries = append(c.Entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading compressed index: %w", err)
	}
	return c, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return sc
}

func malformed(line int, format string, args ...any) error {
	return apperrors.Newf(apperrors.ErrMalformedArtifact, "line %d: "+format, append([]any{line}, args...)...)
}
