package tokenizer

import (
	"strings"

	"github.com/kljensen/snowball/english"

	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
)

// Reducer maps a normalised token to its dictionary term.
type Reducer interface {
	Name() string
	Reduce(token string) string
}

// ParseReducer returns the reducer registered under name.
func ParseReducer(name string) (Reducer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lemma", "lemmatizer":
		return Lemmatizer{}, nil
	case "stem", "stemmer", "porter", "snowball":
		return Stemmer{}, nil
	default:
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "unknown reducer %q", name)
	}
}

// ReduceAll applies r to every token.
func ReduceAll(r Reducer, tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = r.Reduce(t)
	}
	return out
}

// Stemmer is the Snowball English (Porter2) stemmer.
type Stemmer struct{}

func (Stemmer) Name() string { return "stem" }

func (Stemmer) Reduce(token string) string {
	return english.Stem(token, true)
}

// Lemmatizer undoes regular noun and verb inflection without a lexicon.
// Words are only rewritten when the remaining lemma is at least minLen
// long, which keeps short words such as "gas" and "bus" intact.
type Lemmatizer struct{}

func (Lemmatizer) Name() string { return "lemma" }

var lemmaRules = []struct {
	suffix      string
	replacement string
	minLen      int
}{
	{"sses", "ss", 3},
	{"ies", "y", 3},
	{"ches", "ch", 3},
	{"shes", "sh", 3},
	{"xes", "x", 2},
	{"zes", "z", 3},
	{"men", "man", 3},
	{"ss", "ss", 2},
	{"us", "us", 2},
	{"is", "is", 2},
	{"s", "", 3},
}

func (Lemmatizer) Reduce(token string) string {
	for _, rule := range lemmaRules {
		if strings.HasSuffix(token, rule.suffix) {
			lemma := token[:len(token)-len(rule.suffix)] + rule.replacement
			if len(lemma) >= rule.minLen {
				return lemma
			}
			return token
		}
	}
	return token
}
