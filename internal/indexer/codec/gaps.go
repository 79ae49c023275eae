package codec

import (
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

// Gaps turns ascending docIDs into the first absolute id followed by the
// difference to each predecessor.
func Gaps(docIDs []uint32) ([]uint64, error) {
	gaps := make([]uint64, 0, len(docIDs))
	var prev uint32
	for i, id := range docIDs {
		if i == 0 {
			if id == 0 {
				return nil, &apperrors.IndexError{
					Err:     apperrors.ErrInvalidGap,
					DocID:   id,
					Message: "leading docID must be positive",
				}
			}
			gaps = append(gaps, uint64(id))
			prev = id
			continue
		}
		if id <= prev {
			return nil, apperrors.WithDoc(apperrors.Newf(apperrors.ErrInvalidGap,
				"docID %d does not follow %d", id, prev), id)
		}
		gaps = append(gaps, uint64(id-prev))
		prev = id
	}
	return gaps, nil
}

// EncodeGaps gap-transforms docIDs and concatenates their codes.
func EncodeGaps(docIDs []uint32, s Scheme) (*BitString, error) {
	gaps, err := Gaps(docIDs)
	if err != nil {
		return nil, err
	}
	return Encode(s, gaps...)
}

// DecodeGaps reverses EncodeGaps.
func DecodeGaps(bs *BitString, s Scheme) ([]uint32, error) {
	gaps, err := DecodeAll(s, bs)
	if err != nil {
		return nil, err
	}
	ids := make([]uint32, 0, len(gaps))
	var acc uint64
	for _, g := range gaps {
		acc += g
		if acc > math.MaxUint32 {
			return nil, apperrors.Newf(apperrors.ErrMalformedArtifact, "docID %d overflows uint32", acc)
		}
		ids = append(ids, uint32(acc))
	}
	return ids, nil
}
