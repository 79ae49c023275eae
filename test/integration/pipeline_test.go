// Package integration contains tests that run the loader, engine and
// reader together over a small on-disk collection, and push the result
// through the Redis and PostgreSQL sinks when those services are reachable.
//
// Run with:
//
//	go test -v ./test/integration/...
package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/publisher"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/resilience"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var corpus = map[string]string{
	"cranfield0001": `<DOC>
<DOCNO>
1
</DOCNO>
<TITLE>
experimental investigation of the aerodynamics of a
wing in a slipstream .
</TITLE>
<TEXT>
an experimental study of a wing in a propeller slipstream was
made in order to determine the spanwise distribution of the lift
increase due to slipstream at different angles of attack of the wing .
</TEXT>
</DOC>`,
	"cranfield0002": `<DOC>
<DOCNO>
2
</DOCNO>
<TITLE>
simple shear flow past a flat plate in an incompressible fluid of small
viscosity .
</TITLE>
<TEXT>
in the study of high-speed viscous flow past a two-dimensional body it
is usually necessary to consider a curved shock wave emitting from the
nose or leading edge of the body . the boundary layer flows are
affected by the reynolds number .
</TEXT>
</DOC>`,
	"cranfield0003": `<DOC>
<DOCNO>
3
</DOCNO>
<TITLE>
the boundary layer in simple shear flow past a flat plate .
</TITLE>
<TEXT>
the boundary-layer equations are presented for steady incompressible
flow with no pressure gradient . nasa
</TEXT>
</DOC>`,
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range corpus {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func buildCorpus(t *testing.T) (*config.Config, *indexer.Report) {
	t.Helper()
	cfg := config.Default()
	cfg.Indexer.CorpusDir = writeCorpus(t)
	cfg.Indexer.OutputDir = t.TempDir()

	variants, err := indexer.VariantsFromConfig(cfg.Indexer.Variants)
	require.NoError(t, err)
	engine, err := indexer.NewEngine(variants, indexer.Options{
		OutputDir:  cfg.Indexer.OutputDir,
		ProbeTerms: cfg.Indexer.ProbeTerms,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, engine.Ingest(ctx, loader.New(cfg.Indexer.CorpusDir)))
	report, err := engine.Commit(ctx)
	require.NoError(t, err)
	return cfg, report
}

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	db, err := postgres.New(testPostgresConfig())
	if err != nil {
		t.Skipf("skipping integration test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// skipIfNoRedis skips the test when Redis is unavailable.
func skipIfNoRedis(t *testing.T) *redis.Client {
	t.Helper()
	client, err := redis.NewClient(config.RedisConfig{
		Addr:      envOrDefault("TEST_REDIS_ADDR", "localhost:6379"),
		KeyPrefix: "cranfield-test",
		TTL:       time.Minute,
	})
	if err != nil {
		t.Skipf("skipping integration test: redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "cranfield_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "cranfield"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    2,
		InitialDelay:   10 * time.Millisecond,
		MaxDelay:       50 * time.Millisecond,
		AttemptTimeout: 5 * time.Second,
	}
}

// ---------------------------------------------------------------------------
// Pipeline
// ---------------------------------------------------------------------------

func TestPipelineBuildsBothVariants(t *testing.T) {
	cfg, report := buildCorpus(t)

	assert.Equal(t, 3, report.Documents)
	assert.Zero(t, report.Skipped)
	assert.Equal(t, uint32(2), report.Longest.DocID)

	for _, vc := range cfg.Indexer.Variants {
		v, ok := report.Variant(vc.Name)
		require.True(t, ok, vc.Name)
		require.NoError(t, v.Err)
		assert.Less(t, v.Artifacts.CompressedBytes, v.Artifacts.UncompressedBytes, vc.Name)

		r, err := segment.OpenCompressed(v.Artifacts.CompressedPath, v.Layout)
		require.NoError(t, err)

		flow, ok := r.Lookup("flow")
		require.True(t, ok, "%s: flow", vc.Name)
		assert.Equal(t, []uint32{2, 3}, flow.DocIDs)

		wing, ok := r.Lookup("wing")
		require.True(t, ok)
		assert.Equal(t, []uint32{1}, wing.DocIDs)

		assert.Equal(t, []uint32{2, 3}, r.Intersect("flow", "flat").ToArray())
	}

	v1, _ := report.Variant("Version1")
	assert.Equal(t, "lemma", v1.Reducer)
	probes := make(map[string]indexer.Probe)
	for _, p := range v1.Probes {
		probes[p.Term] = p
	}
	assert.True(t, probes["nasa"].Found)
	assert.Equal(t, 1, probes["nasa"].DocFreq)
	assert.False(t, probes["prandtl"].Found)

	var out bytes.Buffer
	require.NoError(t, report.Render(&out))
	assert.Contains(t, out.String(), "== Version2 (stem, front-coding/delta/8)")
}

func TestPipelineRebuildIsByteIdentical(t *testing.T) {
	_, first := buildCorpus(t)
	_, second := buildCorpus(t)
	for _, name := range []string{"Version1", "Version2"} {
		a, _ := first.Variant(name)
		b, _ := second.Variant(name)
		assert.Equal(t, a.Artifacts.Checksum, b.Artifacts.Checksum, name)
	}
}

// ---------------------------------------------------------------------------
// Sinks
// ---------------------------------------------------------------------------

func TestRedisSinkRoundTrip(t *testing.T) {
	client := skipIfNoRedis(t)
	_, report := buildCorpus(t)
	report.BuildID = uuid.NewString()

	events := publisher.EventsFromReport(report, time.Now())
	pub := publisher.New(fastRetry(), metrics.New(), publisher.NewRedisSink(client))
	require.NoError(t, pub.Publish(context.Background(), events))

	v2, _ := report.Variant("Version2")
	buildID, data, err := client.LatestArtifact(context.Background(), "Version2")
	require.NoError(t, err)
	assert.Equal(t, report.BuildID, buildID)
	assert.Equal(t, v2.Artifacts.Checksum, segment.Checksum(data))

	c, err := segment.ReadCompressed(bytes.NewReader(data), v2.Layout)
	require.NoError(t, err)
	r, err := segment.NewReader("redis", c)
	require.NoError(t, err)
	_, ok := r.Lookup("flow")
	assert.True(t, ok)

	meta, err := client.Meta(context.Background(), "Version2", buildID)
	require.NoError(t, err)
	assert.Equal(t, v2.Layout.String(), meta["layout"])
}

func TestPostgresSinkIsIdempotent(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()
	require.NoError(t, db.EnsureSchema(ctx))

	_, report := buildCorpus(t)
	report.BuildID = uuid.NewString()
	events := publisher.EventsFromReport(report, time.Now())
	pub := publisher.New(fastRetry(), metrics.New(), publisher.NewPostgresSink(db))
	require.NoError(t, pub.Publish(ctx, events))
	require.NoError(t, pub.Publish(ctx, events), "republishing the same build")

	var builds int
	require.NoError(t, db.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM index_builds WHERE build_id = $1`, report.BuildID).Scan(&builds))
	assert.Equal(t, 2, builds)

	v1, _ := report.Variant("Version1")
	var minTerms int
	require.NoError(t, db.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM index_build_terms WHERE build_id = $1 AND variant = $2 AND kind = 'min'`,
		report.BuildID, "Version1").Scan(&minTerms))
	assert.Equal(t, len(v1.MinDFTerms), minTerms)
}
