package dictionary

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

func TestEncodeBlock(t *testing.T) {
	tests := []struct {
		name  string
		block []string
		want  string
	}{
		{
			name:  "shared prefix",
			block: []string{"automata", "automate", "automatic", "automation"},
			want:  "8automat*a1<>e2<>ic3<>ion",
		},
		{
			name:  "single letter prefix",
			block: []string{"aardvark", "abacus", "abandon", "abate"},
			want:  "8a*ardvark5<>bacus6<>bandon4<>bate",
		},
		{
			name:  "first term is the prefix",
			block: []string{"flow", "flowfield", "flows"},
			want:  "4flow*5<>field1<>s",
		},
		{
			name:  "no shared prefix",
			block: []string{"zeta", "yankee"},
			want:  "4zeta6yankee",
		},
		{
			name:  "single term",
			block: []string{"mach"},
			want:  "4mach*",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeBlock(tt.block)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			decoded, err := DecodeBlock(got, len(tt.block))
			require.NoError(t, err)
			assert.Equal(t, tt.block, decoded)
		})
	}
}

func TestNoPrefixBlockHasNoMarker(t *testing.T) {
	got, err := EncodeBlock([]string{"zeta", "yankee"})
	require.NoError(t, err)
	assert.NotContains(t, got, prefixMarker)
}

func TestEncodeBlockErrors(t *testing.T) {
	_, err := EncodeBlock(nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyBlock)

	_, err = EncodeBlock([]string{"abc", "b", "abd"})
	assert.ErrorIs(t, err, apperrors.ErrUnsortedTerms)

	_, err = EncodeBlock([]string{"a*b"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)
}

func TestEncodeBlockRejectsAmbiguousLiterals(t *testing.T) {
	block := []string{"0a1a0101a1", "11a01100a11", "a", "a1aa"}
	raw, err := encodeBlock(block)
	require.NoError(t, err)
	decoded, err := DecodeBlock(raw, len(block))
	require.NoError(t, err)
	require.NotEqual(t, block, decoded, "the literal records admit an earlier sorted split")

	_, err = EncodeBlock(block)
	require.ErrorIs(t, err, apperrors.ErrInvalidTerm)
	var ie *apperrors.IndexError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "11a01100a11", ie.Term)

	_, err = Compress(block, FrontCoding, 4)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)
	_, err = Compress(block, Blocked, 4)
	assert.NoError(t, err, "blocked records are split by their offsets")
}

func TestDecodeBlockRequiresIncreasingTerms(t *testing.T) {
	_, err := DecodeBlock("1b1a", 2)
	assert.ErrorIs(t, err, apperrors.ErrMalformedArtifact)

	got, err := DecodeBlock("1a1b", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestCompressBlocked(t *testing.T) {
	terms := []string{"boundary", "flow", "nasa"}
	d, err := Compress(terms, Blocked, 4)
	require.NoError(t, err)

	assert.Equal(t, "8boundary4flow4nasa", d.Encoded)
	assert.Equal(t, []int{0, 9, 14}, d.Offsets)

	decoded, err := d.Terms()
	require.NoError(t, err)
	assert.Equal(t, terms, decoded)
}

func TestCompressFrontCodingOffsets(t *testing.T) {
	terms := []string{"aardvark", "abacus", "abandon", "abate", "flow", "flows"}
	d, err := Compress(terms, FrontCoding, 4)
	require.NoError(t, err)

	first := "8a*ardvark5<>bacus6<>bandon4<>bate"
	assert.Equal(t, first+"4flow*1<>s", d.Encoded)
	assert.Equal(t, []int{0, -1, -1, -1, len(first), -1}, d.Offsets)

	off, ok := d.Offset(4)
	require.True(t, ok)
	assert.Equal(t, len(first), off)
	_, ok = d.Offset(5)
	assert.False(t, ok)

	decoded, err := d.Terms()
	require.NoError(t, err)
	assert.Equal(t, terms, decoded)
}

func TestRoundTripWithDigitTerms(t *testing.T) {
	terms := []string{"1", "10", "100", "12ab", "12ac", "2d", "3", "33", "a1", "a12", "b", "x9"}
	sort.Strings(terms)
	for _, style := range []Style{Blocked, FrontCoding} {
		for _, size := range []int{1, 2, 3, 4, 8, 16} {
			t.Run(fmt.Sprintf("%s/%d", style, size), func(t *testing.T) {
				d, err := Compress(terms, style, size)
				require.NoError(t, err)
				decoded, err := d.Terms()
				require.NoError(t, err)
				assert.Equal(t, terms, decoded)
			})
		}
	}
}

func TestRoundTripLargeVocabulary(t *testing.T) {
	var terms []string
	for i := 0; i < 500; i++ {
		terms = append(terms, fmt.Sprintf("term%03dx", i), fmt.Sprintf("w%d", i*7))
	}
	sort.Strings(terms)
	d, err := Compress(terms, FrontCoding, 8)
	require.NoError(t, err)
	decoded, err := d.Terms()
	require.NoError(t, err)
	assert.Equal(t, terms, decoded)

	blocked, err := Compress(terms, Blocked, 8)
	require.NoError(t, err)
	assert.Less(t, len(d.Encoded), len(blocked.Encoded))
}

func TestCompressErrors(t *testing.T) {
	_, err := Compress(nil, Blocked, 4)
	assert.ErrorIs(t, err, apperrors.ErrEmptyBlock)

	_, err = Compress([]string{"a"}, FrontCoding, 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	_, err = Compress([]string{""}, Blocked, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTerm)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := DecodeBlock("9abc", 1)
	assert.ErrorIs(t, err, apperrors.ErrMalformedArtifact)

	_, err = DecodeBlock("3ab*c9<>x", 2)
	assert.ErrorIs(t, err, apperrors.ErrMalformedArtifact)

	d := &Dictionary{Style: Blocked, Encoded: "4flow", Offsets: []int{0, 9}}
	_, err = d.Terms()
	assert.ErrorIs(t, err, apperrors.ErrMalformedArtifact)
}

func TestParseStyle(t *testing.T) {
	s, err := ParseStyle("Front-Coding")
	require.NoError(t, err)
	assert.Equal(t, FrontCoding, s)
	_, err = ParseStyle("trie")
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
}
