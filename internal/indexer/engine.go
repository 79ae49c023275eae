// Package indexer drives a build: documents are normalised once, reduced
// per variant into that variant's accumulator, and on commit every variant
// is finalized, assembled and written concurrently and independently.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/assembler"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/ingestion/validator"
	apperrors "github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/tracing"
)

// Source yields documents in increasing ID order.
type Source interface {
	Walk(ctx context.Context, fn func(*ingestion.Document) error) error
}

type Options struct {
	OutputDir string
	// Normalizer defaults to one with the built-in stop-word list.
	Normalizer *tokenizer.Normalizer
	// Metrics defaults to a fresh, unexposed registry.
	Metrics    *metrics.Metrics
	ProbeTerms []string
	BuildID    string
}

type Engine struct {
	buildID    string
	variants   []*variantBuild
	normalizer *tokenizer.Normalizer
	writer     *segment.Writer
	metrics    *metrics.Metrics
	probeTerms []string
	logger     *slog.Logger

	lastDocID uint32
	ingested  int
	skipped   int
	longest   index.DocStats
	committed bool
}

type variantBuild struct {
	Variant
	acc *index.Accumulator
}

func NewEngine(variants []Variant, opts Options) (*Engine, error) {
	if len(variants) == 0 {
		return nil, apperrors.New(apperrors.ErrInvalidConfig, "no index variants configured")
	}
	seen := make(map[string]bool, len(variants))
	builds := make([]*variantBuild, 0, len(variants))
	for _, v := range variants {
		key := strings.ToLower(v.Name)
		if v.Name == "" || seen[key] {
			return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "variant name %q is empty or duplicated", v.Name)
		}
		if v.Reducer == nil {
			return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "variant %q has no reducer", v.Name)
		}
		if v.Layout.BlockSize <= 0 {
			return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "variant %q: blockSize must be positive", v.Name)
		}
		seen[key] = true
		builds = append(builds, &variantBuild{Variant: v, acc: index.NewAccumulator()})
	}
	if opts.Normalizer == nil {
		opts.Normalizer = tokenizer.NewNormalizer(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.BuildID == "" {
		opts.BuildID = uuid.NewString()
	}
	return &Engine{
		buildID:    opts.BuildID,
		variants:   builds,
		normalizer: opts.Normalizer,
		writer:     segment.NewWriter(opts.OutputDir),
		metrics:    opts.Metrics,
		probeTerms: opts.ProbeTerms,
		logger:     logger.WithComponent("indexer").With("build_id", opts.BuildID),
	}, nil
}

func (e *Engine) BuildID() string {
	return e.buildID
}

// IndexDocument normalises doc once and adds it to every variant. A document
// that fails validation or has no tokens left after stop-word removal still
// consumes its ID and is reported as skipped.
func (e *Engine) IndexDocument(ctx context.Context, doc *ingestion.Document) error {
	if e.committed {
		return errors.New("engine already committed")
	}
	if doc.ID <= e.lastDocID {
		return apperrors.WithDoc(apperrors.Newf(apperrors.ErrOutOfOrderIngestion,
			"document ids must increase, previous was %d", e.lastDocID), doc.ID)
	}
	e.lastDocID = doc.ID

	if err := validator.ValidateDocument(doc); err != nil {
		e.skip("invalid")
		return err
	}

	var tokens []string
	for _, text := range doc.Texts() {
		tokens = append(tokens, e.normalizer.Normalize(text)...)
	}
	docLen := len(tokens)
	if docLen == 0 {
		e.skip("empty")
		return apperrors.WithDoc(apperrors.New(apperrors.ErrEmptyDocument, "no tokens after normalisation"), doc.ID)
	}

	var maxTF uint32
	for _, v := range e.variants {
		tf, err := v.acc.Add(tokenizer.ReduceAll(v.Reducer, tokens), doc.ID, uint32(docLen))
		if err != nil {
			return fmt.Errorf("variant %s: %w", v.Name, err)
		}
		maxTF = max(maxTF, tf)
	}
	if uint32(docLen) > e.longest.DocLength {
		e.longest = index.DocStats{DocID: doc.ID, DocLength: uint32(docLen), MaxTermFreq: maxTF}
	}
	e.ingested++
	e.metrics.DocsIngestedTotal.Inc()
	logger.FromContext(ctx).Debug("document indexed",
		"doc_id", doc.ID,
		"doc_length", docLen,
	)
	return nil
}

func (e *Engine) skip(reason string) {
	e.skipped++
	e.metrics.DocsSkippedTotal.WithLabelValues(reason).Inc()
}

// Ingest feeds every document of src through IndexDocument. Skipped
// documents are logged; any other error stops ingestion.
func (e *Engine) Ingest(ctx context.Context, src Source) error {
	return src.Walk(ctx, func(doc *ingestion.Document) error {
		err := e.IndexDocument(ctx, doc)
		var verr *validator.ValidationError
		switch {
		case err == nil:
			return nil
		case apperrors.Is(err, apperrors.ErrEmptyDocument):
			e.logger.Warn("skipping empty document", "doc_id", doc.ID, "path", doc.Path)
			return nil
		case errors.As(err, &verr):
			e.logger.Warn("skipping invalid document", "doc_id", doc.ID, "path", doc.Path, "fields", verr.Fields)
			return nil
		default:
			return err
		}
	})
}

// Commit builds every variant concurrently. A failing variant writes nothing
// and does not stop the others; the returned error joins all failures and
// the report is returned either way.
func (e *Engine) Commit(ctx context.Context) (*Report, error) {
	if e.committed {
		return nil, errors.New("engine already committed")
	}
	e.committed = true

	ctx = logger.WithBuildID(ctx, e.buildID)
	ctx, root := tracing.StartSpan(ctx, "build", e.buildID)
	results := make([]VariantReport, len(e.variants))

	// Failures stay in each VariantReport so one variant never cancels another.
	var g errgroup.Group
	for i, v := range e.variants {
		g.Go(func() error {
			results[i] = e.buildVariant(ctx, v)
			return nil
		})
	}
	_ = g.Wait()
	root.End()
	root.Log(e.logger)

	report := &Report{
		BuildID:   e.buildID,
		Documents: e.ingested,
		Skipped:   e.skipped,
		Longest:   e.longest,
		Variants:  results,
		Timings:   root.Timings(),
	}
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("variant %s: %w", r.Name, r.Err))
		}
	}
	return report, errors.Join(errs...)
}

func (e *Engine) buildVariant(ctx context.Context, v *variantBuild) (vr VariantReport) {
	vr = VariantReport{Name: v.Name, Reducer: v.Reducer.Name(), Layout: v.Layout}
	ctx = logger.WithVariant(ctx, v.Name)
	ctx, span := tracing.StartChildSpan(ctx, v.Name)
	log := logger.FromContext(ctx)
	defer func() {
		span.End()
		status := "ok"
		if vr.Err != nil {
			status = "failed"
			span.SetAttr("error", vr.Err.Error())
			log.Error("variant build failed", "error", vr.Err)
		}
		e.metrics.BuildsTotal.WithLabelValues(v.Name, status).Inc()
	}()

	var idx *index.Index
	d, _ := tracing.Measure(ctx, "finalize", func(context.Context) error {
		idx = v.acc.Finalize()
		return nil
	})
	e.metrics.ObserveStage(v.Name, "finalize", d)
	if idx.Len() == 0 {
		vr.Err = apperrors.New(apperrors.ErrEmptyIndex, "no documents were indexed")
		return vr
	}

	var (
		plain  *assembler.Uncompressed
		packed *assembler.Compressed
	)
	d, err := tracing.Measure(ctx, "assemble", func(context.Context) error {
		var err error
		plain, packed, err = assembler.Assemble(idx, v.Layout)
		return err
	})
	e.metrics.ObserveStage(v.Name, "assemble", d)
	if err != nil {
		vr.Err = err
		return vr
	}

	var art *segment.Artifacts
	d, err = tracing.Measure(ctx, "write", func(context.Context) error {
		var err error
		art, err = e.writer.Write(v.Name, plain, packed)
		return err
	})
	e.metrics.ObserveStage(v.Name, "write", d)
	if err != nil {
		vr.Err = err
		return vr
	}

	vr.Terms = idx.Len()
	vr.DocCount = idx.DocCount()
	vr.MaxDF = idx.MaxDF()
	vr.MaxDFTerms = idx.MaxDFTerms()
	vr.MinDFTerms = idx.MinDFTerms()
	vr.MaxTFDoc, _ = idx.DocWithMaxTermFreq()
	vr.Artifacts = art
	vr.Probes = probe(idx, v.Reducer, e.probeTerms)

	e.metrics.DictionaryTerms.WithLabelValues(v.Name).Set(float64(vr.Terms))
	e.metrics.ArtifactBytes.WithLabelValues(v.Name, "uncompressed").Set(float64(art.UncompressedBytes))
	e.metrics.ArtifactBytes.WithLabelValues(v.Name, "compressed").Set(float64(art.CompressedBytes))
	log.Info("variant built",
		"layout", v.Layout.String(),
		"terms", vr.Terms,
		"uncompressed_bytes", art.UncompressedBytes,
		"compressed_bytes", art.CompressedBytes,
		"elapsed_ms", time.Since(span.StartTime).Milliseconds(),
	)
	return vr
}

func probe(idx *index.Index, r tokenizer.Reducer, terms []string) []Probe {
	out := make([]Probe, 0, len(terms))
	for _, raw := range terms {
		words := tokenizer.Words(raw)
		if len(words) == 0 {
			continue
		}
		p := Probe{Term: raw, Reduced: r.Reduce(words[0])}
		if entry, ok := idx.Lookup(p.Reduced); ok {
			p.Found = true
			p.DocFreq = entry.DocFreq
			p.Postings = entry.Postings
			p.InvertedListBytes = len(segment.FormatPostings(entry.Postings))
		}
		out = append(out, p)
	}
	return out
}
