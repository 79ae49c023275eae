package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/ingestion"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name   string
		doc    ingestion.Document
		fields []string
	}{
		{
			name: "valid",
			doc:  ingestion.Document{ID: 1, Fields: []ingestion.Field{{Name: "TITLE", Text: "flow"}}},
		},
		{
			name:   "no fields",
			doc:    ingestion.Document{ID: 2},
			fields: []string{"fields"},
		},
		{
			name:   "missing id",
			doc:    ingestion.Document{Fields: []ingestion.Field{{Name: "TEXT", Text: "x"}}},
			fields: []string{"id"},
		},
		{
			name: "oversized field",
			doc: ingestion.Document{ID: 3, Fields: []ingestion.Field{
				{Name: "TEXT", Text: strings.Repeat("a", maxFieldLength+1)},
			}},
			fields: []string{"field.TEXT"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(&tt.doc)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestValidationErrorIsDeterministic(t *testing.T) {
	err := &ValidationError{DocID: 7, Fields: map[string]string{"b": "two", "a": "one"}}
	assert.Equal(t, "document 7: a:one; b:two", err.Error())
}
