package codec

import (
	"fmt"
	"math/bits"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

// Scheme selects the prefix-free integer code used for postings gaps.
type Scheme int

const (
	Gamma Scheme = iota + 1
	Delta
)

func (s Scheme) String() string {
	switch s {
	case Gamma:
		return "gamma"
	case Delta:
		return "delta"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gamma":
		return Gamma, nil
	case "delta":
		return Delta, nil
	default:
		return 0, apperrors.Newf(apperrors.ErrInvalidConfig, "unknown gap code scheme %q", name)
	}
}

// Append writes the code for v onto bs. v must be positive.
func (s Scheme) Append(bs *BitString, v uint64) error {
	if v == 0 {
		return apperrors.New(apperrors.ErrInvalidGap, "codes are defined for positive integers only")
	}
	switch s {
	case Gamma:
		appendGamma(bs, v)
	case Delta:
		appendDelta(bs, v)
	default:
		return apperrors.Newf(apperrors.ErrInvalidConfig, "unknown gap code scheme %d", int(s))
	}
	return nil
}

// Decode reads exactly one code from r.
func (s Scheme) Decode(r *BitReader) (uint64, error) {
	switch s {
	case Gamma:
		return readGamma(r)
	case Delta:
		return readDelta(r)
	default:
		return 0, apperrors.Newf(apperrors.ErrInvalidConfig, "unknown gap code scheme %d", int(s))
	}
}

// CodeLen is the number of bits Append writes for v.
func (s Scheme) CodeLen(v uint64) int {
	if v == 0 {
		return 0
	}
	k := bits.Len64(v) - 1
	switch s {
	case Gamma:
		return 2*k + 1
	case Delta:
		return Gamma.CodeLen(uint64(k+1)) + k
	default:
		return 0
	}
}

// Encode concatenates the codes of vs.
func Encode(s Scheme, vs ...uint64) (*BitString, error) {
	bs := NewBitString()
	for _, v := range vs {
		if err := s.Append(bs, v); err != nil {
			return nil, err
		}
	}
	return bs, nil
}

// DecodeAll reads codes until bs is exhausted.
func DecodeAll(s Scheme, bs *BitString) ([]uint64, error) {
	r := bs.Reader()
	var out []uint64
	for r.Remaining() > 0 {
		v, err := s.Decode(r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// appendGamma writes k ones, a zero, then the k bits of v below its
// leading one, where k = floor(log2 v).
func appendGamma(bs *BitString, v uint64) {
	k := uint(bits.Len64(v) - 1)
	for i := uint(0); i < k; i++ {
		bs.AppendBit(true)
	}
	bs.AppendBit(false)
	bs.AppendBits(v, k)
}

func appendDelta(bs *BitString, v uint64) {
	k := uint(bits.Len64(v) - 1)
	appendGamma(bs, uint64(k+1))
	bs.AppendBits(v, k)
}

func readGamma(r *BitReader) (uint64, error) {
	var k uint
	for {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if !bit {
			break
		}
		k++
		if k > 63 {
			return 0, apperrors.New(apperrors.ErrMalformedArtifact, "gamma length prefix exceeds 63 bits")
		}
	}
	offset, err := r.ReadBits(k)
	if err != nil {
		return 0, err
	}
	return 1<<k | offset, nil
}

func readDelta(r *BitReader) (uint64, error) {
	length, err := readGamma(r)
	if err != nil {
		return 0, err
	}
	if length > 64 {
		return 0, apperrors.Newf(apperrors.ErrMalformedArtifact, "delta length %d exceeds 64 bits", length)
	}
	k := uint(length - 1)
	offset, err := r.ReadBits(k)
	if err != nil {
		return 0, err
	}
	return 1<<k | offset, nil
}
