// Package dictionary compresses the sorted term sequence of an index into a
// single string, either by length-prefixing every term (blocked storage) or
// by front coding fixed-size blocks of terms that share a prefix.
//
// Front-coded block layout, for block terms t0..tn and common prefix P:
//
//	len(t0) P "*" t0[len(P):] { len(ti[len(P):]) "<>" ti[len(P):] }
//
// A block whose first and last terms share no prefix is stored like the
// blocked scheme, as len(ti) ti for every member and no "*".
package dictionary

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

const (
	prefixMarker    = "*"
	remainderMarker = "<>"
)

// Style selects the dictionary compression strategy.
type Style int

const (
	Blocked Style = iota + 1
	FrontCoding
)

func (s Style) String() string {
	switch s {
	case Blocked:
		return "blocked"
	case FrontCoding:
		return "front-coding"
	default:
		return fmt.Sprintf("style(%d)", int(s))
	}
}

func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "blocked":
		return Blocked, nil
	case "front-coding", "frontcoding", "front":
		return FrontCoding, nil
	default:
		return 0, apperrors.Newf(apperrors.ErrInvalidConfig, "unknown dictionary style %q", name)
	}
}

// Dictionary is a compressed term sequence. Offsets is aligned with the
// original terms; -1 marks a term that has no offset of its own and is
// reached by decoding forward from its block start.
type Dictionary struct {
	Style     Style
	BlockSize int
	Encoded   string
	Offsets   []int
}

// Offset returns the start of term i in Encoded, if it carries one.
func (d *Dictionary) Offset(i int) (int, bool) {
	if i < 0 || i >= len(d.Offsets) || d.Offsets[i] < 0 {
		return 0, false
	}
	return d.Offsets[i], true
}

// Len is the number of terms in the dictionary.
func (d *Dictionary) Len() int {
	return len(d.Offsets)
}

// Compress encodes terms, which must be sorted and unique. blockSize is
// only consulted for FrontCoding.
func Compress(terms []string, style Style, blockSize int) (*Dictionary, error) {
	if len(terms) == 0 {
		return nil, apperrors.New(apperrors.ErrEmptyBlock, "cannot compress an empty dictionary")
	}
	for _, t := range terms {
		if err := validateTerm(t); err != nil {
			return nil, err
		}
	}
	d := &Dictionary{
		Style:     style,
		BlockSize: blockSize,
		Offsets:   make([]int, len(terms)),
	}
	var sb strings.Builder
	switch style {
	case Blocked:
		for i, t := range terms {
			d.Offsets[i] = sb.Len()
			writeLiteral(&sb, t)
		}
	case FrontCoding:
		if blockSize <= 0 {
			return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "block size must be positive, got %d", blockSize)
		}
		for start := 0; start < len(terms); start += blockSize {
			end := min(start+blockSize, len(terms))
			for i := start + 1; i < end; i++ {
				d.Offsets[i] = -1
			}
			d.Offsets[start] = sb.Len()
			block, err := EncodeBlock(terms[start:end])
			if err != nil {
				return nil, fmt.Errorf("encoding block at term %d: %w", start, err)
			}
			sb.WriteString(block)
		}
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "unknown dictionary style %d", int(style))
	}
	d.Encoded = sb.String()
	return d, nil
}

// EncodeBlock front-codes one block of sorted terms. Terms that begin with
// digits can make the length fields ambiguous, so the result is decoded
// again and rejected unless it yields exactly block.
func EncodeBlock(block []string) (string, error) {
	enc, err := encodeBlock(block)
	if err != nil {
		return "", err
	}
	got, err := DecodeBlock(enc, len(block))
	if err != nil {
		return "", apperrors.WithTerm(apperrors.Newf(apperrors.ErrInvalidTerm,
			"block encoding %q does not decode: %v", enc, err), block[0])
	}
	for i := range block {
		if got[i] != block[i] {
			return "", apperrors.WithTerm(apperrors.Newf(apperrors.ErrInvalidTerm,
				"block encoding is ambiguous, term %d decodes as %q", i, got[i]), block[i])
		}
	}
	return enc, nil
}

func encodeBlock(block []string) (string, error) {
	if len(block) == 0 {
		return "", apperrors.New(apperrors.ErrEmptyBlock, "block has no terms")
	}
	first := block[0]
	prefix := commonPrefix(first, block[len(block)-1])
	for _, t := range block {
		if err := validateTerm(t); err != nil {
			return "", err
		}
		if !strings.HasPrefix(t, prefix) {
			return "", apperrors.WithTerm(apperrors.Newf(apperrors.ErrUnsortedTerms,
				"term lacks block prefix %q", prefix), t)
		}
	}

	var sb strings.Builder
	if prefix == "" {
		for _, t := range block {
			writeLiteral(&sb, t)
		}
		return sb.String(), nil
	}
	sb.WriteString(strconv.Itoa(len(first)))
	sb.WriteString(prefix)
	sb.WriteString(prefixMarker)
	sb.WriteString(first[len(prefix):])
	for _, t := range block[1:] {
		rest := t[len(prefix):]
		sb.WriteString(strconv.Itoa(len(rest)))
		sb.WriteString(remainderMarker)
		sb.WriteString(rest)
	}
	return sb.String(), nil
}

func writeLiteral(sb *strings.Builder, term string) {
	sb.WriteString(strconv.Itoa(len(term)))
	sb.WriteString(term)
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

func validateTerm(t string) error {
	if t == "" {
		return apperrors.New(apperrors.ErrInvalidTerm, "empty term")
	}
	if strings.ContainsAny(t, "*<>") {
		return apperrors.WithTerm(apperrors.New(apperrors.ErrInvalidTerm,
			"term contains a reserved marker"), t)
	}
	return nil
}
