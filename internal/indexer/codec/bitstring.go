// Package codec implements the bit-level postings codes used by the
// compressed index: gamma and delta codes over docID gaps, written into a
// growable BitString.
package codec

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

// BitString is an append-only sequence of bits. Bit 0 is the first bit
// written and the first character of String().
type BitString struct {
	bits *bitset.BitSet
	n    uint
}

func NewBitString() *BitString {
	return &BitString{bits: bitset.New(64)}
}

// ParseBitString reads the ASCII '0'/'1' form produced by String.
func ParseBitString(s string) (*BitString, error) {
	bs := &BitString{bits: bitset.New(uint(len(s)))}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			bs.AppendBit(false)
		case '1':
			bs.AppendBit(true)
		default:
			return nil, apperrors.Newf(apperrors.ErrMalformedArtifact,
				"bit string has %q at position %d", s[i], i)
		}
	}
	return bs, nil
}

func (b *BitString) AppendBit(one bool) {
	if one {
		b.bits.Set(b.n)
	}
	b.n++
}

// AppendBits writes the low width bits of v, most significant first.
func (b *BitString) AppendBits(v uint64, width uint) {
	for i := width; i > 0; i-- {
		b.AppendBit((v>>(i-1))&1 == 1)
	}
}

// Append copies every bit of other onto the end of b.
func (b *BitString) Append(other *BitString) {
	for i := uint(0); i < other.n; i++ {
		b.AppendBit(other.bits.Test(i))
	}
}

func (b *BitString) Len() int {
	return int(b.n)
}

func (b *BitString) Bit(i int) bool {
	if i < 0 || uint(i) >= b.n {
		return false
	}
	return b.bits.Test(uint(i))
}

func (b *BitString) Equal(other *BitString) bool {
	if b.n != other.n {
		return false
	}
	for i := uint(0); i < b.n; i++ {
		if b.bits.Test(i) != other.bits.Test(i) {
			return false
		}
	}
	return true
}

func (b *BitString) String() string {
	var sb strings.Builder
	sb.Grow(int(b.n))
	for i := uint(0); i < b.n; i++ {
		if b.bits.Test(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Reader returns a cursor positioned at the first bit.
func (b *BitString) Reader() *BitReader {
	return &BitReader{src: b}
}

// BitReader consumes a BitString left to right.
type BitReader struct {
	src *BitString
	pos uint
}

func (r *BitReader) Remaining() int {
	return int(r.src.n - r.pos)
}

func (r *BitReader) ReadBit() (bool, error) {
	if r.pos >= r.src.n {
		return false, apperrors.Newf(apperrors.ErrMalformedArtifact,
			"bit string truncated at %d", r.pos)
	}
	bit := r.src.bits.Test(r.pos)
	r.pos++
	return bit, nil
}

// ReadBits reads width bits, most significant first.
func (r *BitReader) ReadBits(width uint) (uint64, error) {
	if width > 64 {
		return 0, fmt.Errorf("reading %d bits: %w", width, apperrors.ErrMalformedArtifact)
	}
	var v uint64
	for i := uint(0); i < width; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v <<= 1
		if bit {
			v |= 1
		}
	}
	return v, nil
}
