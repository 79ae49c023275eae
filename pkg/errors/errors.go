package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyDocument       = errors.New("empty document")
	ErrInvalidGap          = errors.New("invalid gap")
	ErrEmptyBlock          = errors.New("empty block")
	ErrOutOfOrderIngestion = errors.New("out of order ingestion")
	ErrInvalidTerm         = errors.New("invalid term")
	ErrUnsortedTerms       = errors.New("terms not sorted")
	ErrEmptyIndex          = errors.New("empty index")
	ErrMalformedArtifact   = errors.New("malformed artifact")
	ErrInvalidConfig       = errors.New("invalid config")
	ErrMalformedDocument   = errors.New("malformed document")
)

// IndexError attaches the offending term and document to a sentinel so a
// failed build can be traced back to its input.
type IndexError struct {
	Err     error
	Term    string
	DocID   uint32
	Message string
}

func (e *IndexError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Term != "" {
		fmt.Fprintf(&b, " (term %q)", e.Term)
	}
	if e.DocID != 0 {
		fmt.Fprintf(&b, " (doc %d)", e.DocID)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *IndexError {
	return &IndexError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *IndexError {
	return &IndexError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithTerm returns err annotated with term. Non-IndexError values are wrapped.
func WithTerm(err error, term string) error {
	if err == nil {
		return nil
	}
	var ie *IndexError
	if errors.As(err, &ie) {
		cp := *ie
		cp.Term = term
		return &cp
	}
	return &IndexError{Err: err, Term: term}
}

// WithDoc returns err annotated with docID.
func WithDoc(err error, docID uint32) error {
	if err == nil {
		return nil
	}
	var ie *IndexError
	if errors.As(err, &ie) {
		cp := *ie
		cp.DocID = docID
		return &cp
	}
	return &IndexError{Err: err, DocID: docID}
}

// Is reports whether err matches target. It saves callers importing both
// this package and the standard errors package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
