// Package tokenizer provides text normalisation for the indexer. It
// lower-cases input, drops dots so abbreviations collapse (U.S.A. -> usa),
// splits on every other non-alphanumeric character and removes stop-words.
package tokenizer

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

var defaultStopWords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
	"between", "both", "but", "by", "can", "could", "did", "do", "does", "doing",
	"down", "during", "each", "few", "for", "from", "further", "had", "has", "have",
	"having", "he", "her", "here", "hers", "him", "his", "how", "i", "if", "in",
	"into", "is", "it", "its", "itself", "just", "me", "more", "most", "my", "no",
	"nor", "not", "now", "of", "off", "on", "once", "only", "or", "other", "our",
	"out", "over", "own", "same", "she", "should", "so", "some", "such", "than",
	"that", "the", "their", "them", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "until", "up", "very", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "would", "you", "your",
}

// Normalizer turns raw field text into normalised word tokens.
type Normalizer struct {
	stopWords map[string]struct{}
}

// NewNormalizer uses stopWords, or the built-in list when it is nil.
func NewNormalizer(stopWords map[string]struct{}) *Normalizer {
	if stopWords == nil {
		stopWords = make(map[string]struct{}, len(defaultStopWords))
		for _, w := range defaultStopWords {
			stopWords[w] = struct{}{}
		}
	}
	return &Normalizer{stopWords: stopWords}
}

// LoadStopWords reads one stop-word per line.
func LoadStopWords(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening stop-word file: %w", err)
	}
	defer f.Close()
	words := make(map[string]struct{})
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w != "" {
			words[w] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stop-word file: %w", err)
	}
	return words, nil
}

// Words splits text into lowercased tokens without removing stop-words.
func Words(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r == '.':
			return -1
		default:
			return ' '
		}
	}, text)
	return strings.Fields(cleaned)
}

// Normalize returns the tokens of text with stop-words removed.
func (n *Normalizer) Normalize(text string) []string {
	return n.Filter(Words(text))
}

// Filter drops stop-words from words in place.
func (n *Normalizer) Filter(words []string) []string {
	tokens := words[:0]
	for _, w := range words {
		if _, isStop := n.stopWords[w]; isStop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// IsStopWord reports whether w is filtered by Normalize.
func (n *Normalizer) IsStopWord(w string) bool {
	_, ok := n.stopWords[w]
	return ok
}
