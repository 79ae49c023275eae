package publisher

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/lib/pq"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/resilience"
)

// KafkaSink emits the event on the index.complete topic keyed by variant.
type KafkaSink struct {
	producer *kafka.Producer
}

func NewKafkaSink(p *kafka.Producer) *KafkaSink {
	return &KafkaSink{producer: p}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, ev *Event) error {
	return s.producer.Publish(ctx, kafka.Event{
		Key:   ev.Variant,
		Value: ev,
		Headers: map[string]string{
			"build_id": ev.BuildID,
			"checksum": ev.Checksum,
		},
	})
}

// RedisSink uploads the compressed artifact and moves the latest pointer.
type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(c *redis.Client) *RedisSink {
	return &RedisSink{client: c}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, ev *Event) error {
	data, err := os.ReadFile(ev.CompressedPath)
	if err != nil {
		return resilience.Permanent(fmt.Errorf("reading compressed artifact: %w", err))
	}
	if sum := segment.Checksum(data); sum != ev.Checksum {
		return resilience.Permanent(fmt.Errorf("artifact %s changed on disk: checksum %s, want %s",
			ev.CompressedPath, sum, ev.Checksum))
	}
	return s.client.PutArtifact(ctx, ev.Variant, ev.BuildID, data, map[string]any{
		"layout":    ev.Layout,
		"reducer":   ev.Reducer,
		"terms":     strconv.Itoa(ev.Terms),
		"documents": strconv.Itoa(ev.Documents),
		"checksum":  ev.Checksum,
	})
}

// PostgresSink records the build and its extremal-df terms.
type PostgresSink struct {
	client *postgres.Client
}

func NewPostgresSink(c *postgres.Client) *PostgresSink {
	return &PostgresSink{client: c}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Publish(ctx context.Context, ev *Event) error {
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO index_builds (build_id, variant, layout, terms, documents, max_df,
				uncompressed_bytes, compressed_bytes, checksum, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (build_id, variant) DO NOTHING`,
			ev.BuildID, ev.Variant, ev.Layout, ev.Terms, ev.Documents, ev.MaxDF,
			ev.UncompressedBytes, ev.CompressedBytes, ev.Checksum, ev.CompletedAt)
		if err != nil {
			return fmt.Errorf("inserting build: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}

		stmt, err := tx.PrepareContext(ctx, pq.CopyIn("index_build_terms", "build_id", "variant", "term", "kind", "df"))
		if err != nil {
			return fmt.Errorf("preparing term copy: %w", err)
		}
		defer stmt.Close()
		for _, t := range ev.MaxDFTerms {
			if _, err := stmt.ExecContext(ctx, ev.BuildID, ev.Variant, t, "max", ev.MaxDF); err != nil {
				return fmt.Errorf("copying term %q: %w", t, err)
			}
		}
		for _, t := range ev.MinDFTerms {
			if _, err := stmt.ExecContext(ctx, ev.BuildID, ev.Variant, t, "min", 1); err != nil {
				return fmt.Errorf("copying term %q: %w", t, err)
			}
		}
		if _, err := stmt.ExecContext(ctx); err != nil {
			return fmt.Errorf("flushing term copy: %w", err)
		}
		return nil
	})
}
