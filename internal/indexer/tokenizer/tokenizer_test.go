package tokenizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

func TestWords(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"abbreviation", "U.S.A. report", []string{"usa", "report"}},
		{"punctuation", "flow-field, (shock)", []string{"flow", "field", "shock"}},
		{"newlines", "mach\nnumber\t2.5", []string{"mach", "number", "25"}},
		{"non ascii", "café", []string{"caf"}},
		{"empty", "  ...  ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Words(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeDropsStopWords(t *testing.T) {
	n := NewNormalizer(nil)
	assert.Equal(t, []string{"experimental", "investigation", "aerodynamics", "wing"},
		n.Normalize("An experimental investigation of the aerodynamics of a wing"))
	assert.True(t, n.IsStopWord("the"))
	assert.False(t, n.IsStopWord("wing"))
}

func TestLoadStopWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stopwords")
	require.NoError(t, os.WriteFile(path, []byte("Wing\n\nflow\n"), 0o644))

	words, err := LoadStopWords(path)
	require.NoError(t, err)
	assert.Len(t, words, 2)

	n := NewNormalizer(words)
	assert.Equal(t, []string{"the", "over"}, n.Normalize("the wing flow over"))

	_, err = LoadStopWords(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLemmatizer(t *testing.T) {
	l := Lemmatizer{}
	cases := map[string]string{
		"flows":    "flow",
		"classes":  "class",
		"bodies":   "body",
		"boxes":    "box",
		"branches": "branch",
		"gas":      "gas",
		"analysis": "analysis",
		"pass":     "pass",
		"flow":     "flow",
		"radius":   "radius",
	}
	for in, want := range cases {
		assert.Equal(t, want, l.Reduce(in), in)
	}
}

func TestStemmer(t *testing.T) {
	s := Stemmer{}
	assert.Equal(t, "flow", s.Reduce("flows"))
	assert.Equal(t, "run", s.Reduce("running"))
	assert.Equal(t, "boundari", s.Reduce("boundary"))
	assert.Equal(t, "pressur", s.Reduce("pressure"))
}

func TestParseReducer(t *testing.T) {
	r, err := ParseReducer("lemma")
	require.NoError(t, err)
	assert.Equal(t, "lemma", r.Name())

	r, err = ParseReducer(" Porter ")
	require.NoError(t, err)
	assert.Equal(t, "stem", r.Name())

	_, err = ParseReducer("soundex")
	assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)

	assert.Equal(t, []string{"flow", "wing"}, ReduceAll(Lemmatizer{}, []string{"flows", "wings"}))
}
