// Package ingestion defines the document types read from a Cranfield
// collection before they are normalised and indexed.
package ingestion

import "strings"

// Field is one top-level element of a collection document, e.g. TITLE.
type Field struct {
	Name string
	Text string
}

// Document is a parsed collection file. ID is assigned by the loader in
// file-name order starting at 1.
type Document struct {
	ID     uint32
	Path   string
	Fields []Field
}

// Texts returns the text of every field in document order.
func (d *Document) Texts() []string {
	out := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = f.Text
	}
	return out
}

// Size is the total byte length of all field text.
func (d *Document) Size() int {
	n := 0
	for _, f := range d.Fields {
		n += len(f.Text)
	}
	return n
}

// Field returns the text of the first field named name, case-insensitively.
func (d *Document) Field(name string) (string, bool) {
	for _, f := range d.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Text, true
		}
	}
	return "", false
}
