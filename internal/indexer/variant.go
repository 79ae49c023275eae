package indexer

import (
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/assembler"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/codec"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/dictionary"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/config"
)

// Variant is one index built from the shared token stream: its own reducer
// and its own compression layout.
type Variant struct {
	Name    string
	Reducer tokenizer.Reducer
	Layout  assembler.Layout
}

// VariantFromConfig resolves the names in c into codec and dictionary types.
func VariantFromConfig(c config.VariantConfig) (Variant, error) {
	reducer, err := tokenizer.ParseReducer(c.Reducer)
	if err != nil {
		return Variant{}, fmt.Errorf("variant %s: %w", c.Name, err)
	}
	scheme, err := codec.ParseScheme(c.Scheme)
	if err != nil {
		return Variant{}, fmt.Errorf("variant %s: %w", c.Name, err)
	}
	style, err := dictionary.ParseStyle(c.Style)
	if err != nil {
		return Variant{}, fmt.Errorf("variant %s: %w", c.Name, err)
	}
	return Variant{
		Name:    c.Name,
		Reducer: reducer,
		Layout:  assembler.Layout{Scheme: scheme, Style: style, BlockSize: c.BlockSize},
	}, nil
}

func VariantsFromConfig(cs []config.VariantConfig) ([]Variant, error) {
	out := make([]Variant, 0, len(cs))
	for _, c := range cs {
		v, err := VariantFromConfig(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
