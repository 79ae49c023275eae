// Package publisher announces committed index variants to the optional
// external sinks (Kafka, Redis, PostgreSQL). Sinks run concurrently, each
// call is retried, and one sink failing never blocks the others.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/resilience"
)

// Event describes one committed variant. It is the payload of the
// index.complete message.
type Event struct {
	BuildID           string    `json:"build_id"`
	Variant           string    `json:"variant"`
	Reducer           string    `json:"reducer"`
	Layout            string    `json:"layout"`
	Terms             int       `json:"terms"`
	Documents         int       `json:"documents"`
	MaxDF             int       `json:"max_df"`
	MaxDFTerms        []string  `json:"max_df_terms"`
	MinDFCount        int       `json:"min_df_count"`
	UncompressedPath  string    `json:"uncompressed_path"`
	CompressedPath    string    `json:"compressed_path"`
	UncompressedBytes int64     `json:"uncompressed_bytes"`
	CompressedBytes   int64     `json:"compressed_bytes"`
	Checksum          string    `json:"checksum"`
	CompletedAt       time.Time `json:"completed_at"`

	MinDFTerms []string `json:"-"`
}

// Sink delivers events to one external system.
type Sink interface {
	Name() string
	Publish(ctx context.Context, ev *Event) error
}

type Publisher struct {
	sinks   []Sink
	retry   resilience.RetryConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(retry resilience.RetryConfig, m *metrics.Metrics, sinks ...Sink) *Publisher {
	if m == nil {
		m = metrics.New()
	}
	return &Publisher{
		sinks:   sinks,
		retry:   retry,
		metrics: m,
		logger:  logger.WithComponent("publisher"),
	}
}

// Sinks reports how many sinks are configured.
func (p *Publisher) Sinks() int {
	return len(p.sinks)
}

// EventsFromReport returns one event per successful variant.
func EventsFromReport(r *indexer.Report, completedAt time.Time) []*Event {
	var events []*Event
	for _, v := range r.Variants {
		if v.Err != nil || v.Artifacts == nil {
			continue
		}
		events = append(events, &Event{
			BuildID:           r.BuildID,
			Variant:           v.Name,
			Reducer:           v.Reducer,
			Layout:            v.Layout.String(),
			Terms:             v.Terms,
			Documents:         v.DocCount,
			MaxDF:             v.MaxDF,
			MaxDFTerms:        v.MaxDFTerms,
			MinDFCount:        len(v.MinDFTerms),
			MinDFTerms:        v.MinDFTerms,
			UncompressedPath:  v.Artifacts.UncompressedPath,
			CompressedPath:    v.Artifacts.CompressedPath,
			UncompressedBytes: v.Artifacts.UncompressedBytes,
			CompressedBytes:   v.Artifacts.CompressedBytes,
			Checksum:          v.Artifacts.Checksum,
			CompletedAt:       completedAt.UTC(),
		})
	}
	return events
}

// Publish sends every event to every sink and joins the failures.
func (p *Publisher) Publish(ctx context.Context, events []*Event) error {
	errs := make([]error, len(p.sinks))
	// Errors are collected per sink so a failing sink never stops the others.
	var g errgroup.Group
	for i, s := range p.sinks {
		g.Go(func() error {
			errs[i] = p.publishTo(ctx, s, events)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

func (p *Publisher) publishTo(ctx context.Context, s Sink, events []*Event) error {
	var errs []error
	for _, ev := range events {
		name := fmt.Sprintf("%s:%s", s.Name(), ev.Variant)
		err := resilience.Retry(ctx, name, p.retry, func(ctx context.Context) error {
			return s.Publish(ctx, ev)
		})
		if err != nil {
			p.metrics.PublishTotal.WithLabelValues(s.Name(), "failed").Inc()
			p.logger.Error("publish failed", "sink", s.Name(), "variant", ev.Variant, "error", err)
			errs = append(errs, err)
			continue
		}
		p.metrics.PublishTotal.WithLabelValues(s.Name(), "ok").Inc()
		p.logger.Info("published", "sink", s.Name(), "variant", ev.Variant, "build_id", ev.BuildID)
	}
	return errors.Join(errs...)
}
