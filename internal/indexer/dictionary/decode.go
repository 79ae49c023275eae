package dictionary

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

// Terms decodes the full term sequence.
func (d *Dictionary) Terms() ([]string, error) {
	terms := make([]string, 0, len(d.Offsets))
	switch d.Style {
	case Blocked:
		for i := range d.Offsets {
			start, end, err := d.span(i)
			if err != nil {
				return nil, err
			}
			t, err := decodeSpan(d.Encoded[start:end])
			if err != nil {
				return nil, fmt.Errorf("decoding term %d: %w", i, err)
			}
			terms = append(terms, t)
		}
	case FrontCoding:
		if d.BlockSize <= 0 {
			return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "block size must be positive, got %d", d.BlockSize)
		}
		for start := 0; start < len(d.Offsets); start += d.BlockSize {
			count := min(d.BlockSize, len(d.Offsets)-start)
			from, to, err := d.span(start)
			if err != nil {
				return nil, err
			}
			block, err := DecodeBlock(d.Encoded[from:to], count)
			if err != nil {
				return nil, err
			}
			terms = append(terms, block...)
		}
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "unknown dictionary style %d", int(d.Style))
	}
	return terms, nil
}

// span returns the region of Encoded from term i's offset to the next
// recorded offset.
func (d *Dictionary) span(i int) (int, int, error) {
	start, ok := d.Offset(i)
	if !ok {
		return 0, 0, apperrors.Newf(apperrors.ErrMalformedArtifact, "term %d has no offset", i)
	}
	end := len(d.Encoded)
	for j := i + 1; j < len(d.Offsets); j++ {
		if off, ok := d.Offset(j); ok {
			end = off
			break
		}
	}
	if start > end || end > len(d.Encoded) {
		return 0, 0, apperrors.Newf(apperrors.ErrMalformedArtifact, "offsets %d..%d out of range", start, end)
	}
	return start, end, nil
}

// decodeSpan recovers a term from exactly one len(t)+t record. The split is
// unique because digits(L)+L grows strictly with L.
func decodeSpan(s string) (string, error) {
	for digits := 1; digits < len(s); digits++ {
		n := len(s) - digits
		if strconv.Itoa(n) == s[:digits] {
			return s[digits:], nil
		}
	}
	return "", apperrors.Newf(apperrors.ErrMalformedArtifact, "cannot split length-prefixed record %q", s)
}

// DecodeBlock reverses EncodeBlock for a block known to hold count terms.
// Terms that start with digits make the length fields ambiguous, so every
// candidate split must be strictly increasing and re-encode to seg.
func DecodeBlock(seg string, count int) ([]string, error) {
	if count <= 0 {
		return nil, apperrors.New(apperrors.ErrEmptyBlock, "block has no terms")
	}
	accept := func(terms []string) bool {
		for i := 1; i < len(terms); i++ {
			if terms[i-1] >= terms[i] {
				return false
			}
		}
		enc, err := encodeBlock(terms)
		return err == nil && enc == seg
	}

	star := strings.Index(seg, prefixMarker)
	if star < 0 {
		if terms, ok := parseLiterals(seg, count, nil, accept); ok {
			return terms, nil
		}
		return nil, apperrors.Newf(apperrors.ErrMalformedArtifact, "cannot decode literal block %q", seg)
	}

	head, tail := seg[:star], seg[star+1:]
	for k := 1; k < len(head) && isDigit(head[k-1]); k++ {
		first, ok := canonicalInt(head[:k])
		if !ok {
			continue
		}
		prefix := head[k:]
		if first < len(prefix) || first-len(prefix) > len(tail) {
			continue
		}
		cut := first - len(prefix)
		rests, ok := parseRemainders(tail[cut:], count-1)
		if !ok {
			continue
		}
		terms := make([]string, 0, count)
		terms = append(terms, prefix+tail[:cut])
		for _, r := range rests {
			terms = append(terms, prefix+r)
		}
		if accept(terms) {
			return terms, nil
		}
	}
	return nil, apperrors.Newf(apperrors.ErrMalformedArtifact, "cannot decode front-coded block %q", seg)
}

// parseLiterals splits seg into exactly n len(t)+t records, backtracking
// over the length digits until accept approves a full split.
func parseLiterals(seg string, n int, got []string, accept func([]string) bool) ([]string, bool) {
	if n == 0 {
		if seg == "" && accept(got) {
			return got, true
		}
		return nil, false
	}
	for k := 1; k <= len(seg) && isDigit(seg[k-1]); k++ {
		l, ok := canonicalInt(seg[:k])
		if !ok || l == 0 {
			continue
		}
		if k+l > len(seg) {
			break
		}
		next := append(got[:len(got):len(got)], seg[k:k+l])
		if terms, ok := parseLiterals(seg[k+l:], n-1, next, accept); ok {
			return terms, true
		}
	}
	return nil, false
}

func parseRemainders(seg string, n int) ([]string, bool) {
	out := make([]string, 0, n)
	for len(out) < n {
		j := 0
		for j < len(seg) && isDigit(seg[j]) {
			j++
		}
		if j == 0 || !strings.HasPrefix(seg[j:], remainderMarker) {
			return nil, false
		}
		l, ok := canonicalInt(seg[:j])
		if !ok {
			return nil, false
		}
		body := seg[j+len(remainderMarker):]
		if l > len(body) {
			return nil, false
		}
		out = append(out, body[:l])
		seg = body[l:]
	}
	return out, seg == ""
}

func canonicalInt(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || strconv.Itoa(n) != s {
		return 0, false
	}
	return n, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
