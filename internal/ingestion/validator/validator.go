// Package validator checks parsed collection documents before indexing and
// returns per-field error details.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/ingestion"
)

const (
	maxFieldLength    = 1048576
	maxDocumentLength = 4 * maxFieldLength
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	DocID  uint32
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%s", k, e.Fields[k]))
	}
	return fmt.Sprintf("document %d: %s", e.DocID, strings.Join(parts, "; "))
}

// ValidateDocument rejects documents without an id, without fields, or with
// oversized field text.
func ValidateDocument(doc *ingestion.Document) error {
	errs := make(map[string]string)

	if doc.ID == 0 {
		errs["id"] = "document id must be positive"
	}
	if len(doc.Fields) == 0 {
		errs["fields"] = "document has no fields"
	}
	for _, f := range doc.Fields {
		if strings.TrimSpace(f.Name) == "" {
			errs["fields"] = "field name is required"
			continue
		}
		if len(f.Text) > maxFieldLength {
			errs["field."+f.Name] = fmt.Sprintf("field must be at most %d bytes", maxFieldLength)
		}
	}
	if size := doc.Size(); size > maxDocumentLength {
		errs["document"] = fmt.Sprintf("document must be at most %d bytes, got %d", maxDocumentLength, size)
	}
	if len(errs) > 0 {
		return &ValidationError{DocID: doc.ID, Fields: errs}
	}
	return nil
}
