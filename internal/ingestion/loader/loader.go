// Package loader reads a Cranfield collection directory. Every regular file
// is one SGML/XML document whose root children (DOCNO, TITLE, AUTHOR, BIBLIO,
// TEXT) become fields. Files are visited in name order and numbered from 1.
package loader

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/ingestion"
	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/logger"
)

// Loader walks the files of one collection directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

func New(dir string) *Loader {
	return &Loader{
		dir:    dir,
		logger: logger.WithComponent("loader"),
	}
}

// Files lists the collection files in the order they are numbered.
func (l *Loader) Files() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("reading corpus directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			files = append(files, filepath.Join(l.dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Walk parses each file and calls fn with the resulting document. Parsing
// stops at the first error returned by fn or by the parser.
func (l *Loader) Walk(ctx context.Context, fn func(*ingestion.Document) error) error {
	files, err := l.Files()
	if err != nil {
		return err
	}
	l.logger.Info("loading collection", "dir", l.dir, "files", len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := ParseFile(path)
		if err != nil {
			return err
		}
		doc.ID = uint32(i + 1)
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// ParseFile parses one collection file. The returned document has no ID.
func ParseFile(path string) (*ingestion.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening document: %w", err)
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	doc.Path = path
	return doc, nil
}

// Parse reads a single document. Text nested deeper than the root's
// children is ignored, as is markup outside the root element.
func Parse(r io.Reader) (*ingestion.Document, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	dec.Entity = xml.HTMLEntity

	doc := &ingestion.Document{}
	var (
		depth   int
		current *strings.Builder
		name    string
		sawRoot bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrMalformedDocument, "document markup: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 1 {
				sawRoot = true
			}
			if depth == 2 {
				name = t.Name.Local
				current = &strings.Builder{}
			}
		case xml.CharData:
			if depth == 2 && current != nil {
				current.Write(t)
			}
		case xml.EndElement:
			if depth == 2 && current != nil {
				doc.Fields = append(doc.Fields, ingestion.Field{
					Name: strings.ToUpper(name),
					Text: strings.TrimSpace(strings.ReplaceAll(current.String(), "\n", " ")),
				})
				current = nil
			}
			depth--
		}
	}
	if !sawRoot {
		return nil, apperrors.New(apperrors.ErrMalformedDocument, "document has no root element")
	}
	return doc, nil
}
