package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexErrorMessage(t *testing.T) {
	err := &IndexError{Err: ErrInvalidGap, Term: "flow", DocID: 7, Message: "gap 0"}
	assert.Equal(t, `invalid gap (term "flow") (doc 7): gap 0`, err.Error())
	assert.True(t, Is(err, ErrInvalidGap))
}

func TestWithTermKeepsDoc(t *testing.T) {
	base := Newf(ErrInvalidGap, "gap %d", 0)
	withDoc := WithDoc(base, 3)
	wrapped := fmt.Errorf("encoding postings: %w", withDoc)

	got := WithTerm(wrapped, "shock")

	var ie *IndexError
	require.True(t, As(got, &ie))
	assert.Equal(t, "shock", ie.Term)
	assert.Equal(t, uint32(3), ie.DocID)
	assert.ErrorIs(t, got, ErrInvalidGap)
	assert.Empty(t, base.Term, "annotating must not mutate the original")
}

func TestWithTermWrapsPlainError(t *testing.T) {
	got := WithTerm(ErrEmptyBlock, "x")
	assert.ErrorIs(t, got, ErrEmptyBlock)
	assert.Nil(t, WithTerm(nil, "x"))
	assert.Nil(t, WithDoc(nil, 1))
}
