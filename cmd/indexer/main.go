package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/publisher"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/resilience"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "configs/indexer.yaml", "path to config file")
	corpusDir := flag.String("corpus", "", "collection directory (overrides indexer.corpusDir)")
	outputDir := flag.String("out", "", "artifact directory (overrides indexer.outputDir)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if *corpusDir != "" {
		cfg.Indexer.CorpusDir = *corpusDir
	}
	if *outputDir != "" {
		cfg.Indexer.OutputDir = *outputDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, m.Handler())
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(sctx)
		}()
	}

	var stopWords map[string]struct{}
	if cfg.Indexer.StopwordsPath != "" {
		stopWords, err = tokenizer.LoadStopWords(cfg.Indexer.StopwordsPath)
		if err != nil {
			slog.Error("failed to load stop-words", "error", err)
			return 1
		}
	}

	variants, err := indexer.VariantsFromConfig(cfg.Indexer.Variants)
	if err != nil {
		slog.Error("invalid variant", "error", err)
		return 1
	}
	engine, err := indexer.NewEngine(variants, indexer.Options{
		OutputDir:  cfg.Indexer.OutputDir,
		Normalizer: tokenizer.NewNormalizer(stopWords),
		Metrics:    m,
		ProbeTerms: cfg.Indexer.ProbeTerms,
	})
	if err != nil {
		slog.Error("failed to create engine", "error", err)
		return 1
	}
	slog.Info("starting build",
		"build_id", engine.BuildID(),
		"corpus", cfg.Indexer.CorpusDir,
		"variants", len(variants),
	)

	if err := engine.Ingest(ctx, loader.New(cfg.Indexer.CorpusDir)); err != nil {
		slog.Error("ingestion failed", "error", err)
		return 1
	}
	report, buildErr := engine.Commit(ctx)
	if err := report.Render(os.Stdout); err != nil {
		slog.Error("writing report", "error", err)
	}

	status := 0
	if buildErr != nil {
		slog.Error("build finished with failures", "error", buildErr)
		status = 1
	}

	if err := publish(ctx, cfg, m, report); err != nil {
		slog.Error("publishing failed", "error", err)
		status = 1
	}

	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			slog.Error("writing metrics textfile", "error", err)
		}
	}
	slog.Info("build finished", "build_id", report.BuildID, "failed", report.Failed())
	return status
}

// publish sends the committed variants to every enabled sink. A sink that
// cannot be reached at startup or fails its preflight check counts as a
// failed publish and is left out.
func publish(ctx context.Context, cfg *config.Config, m *metrics.Metrics, report *indexer.Report) error {
	var (
		sinks  = map[string]publisher.Sink{}
		errs   []error
		checks = health.NewChecker(cfg.Retry.AttemptTimeout)
	)
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		sink := publisher.NewKafkaSink(producer)
		sinks[sink.Name()] = sink
		checks.Register(sink.Name(), health.Ping(producer.Ping))
	}
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			errs = append(errs, err)
		} else {
			defer client.Close()
			sink := publisher.NewRedisSink(client)
			sinks[sink.Name()] = sink
			checks.Register(sink.Name(), health.Ping(client.Ping))
		}
	}
	if cfg.Postgres.Enabled {
		client, err := postgres.New(cfg.Postgres)
		if err == nil {
			err = client.EnsureSchema(ctx)
			if err != nil {
				client.Close()
			}
		}
		if err != nil {
			errs = append(errs, err)
		} else {
			defer client.Close()
			sink := publisher.NewPostgresSink(client)
			sinks[sink.Name()] = sink
			checks.Register(sink.Name(), health.Ping(client.Ping))
		}
	}
	if len(sinks) == 0 {
		return errors.Join(errs...)
	}

	preflight := checks.Run(ctx)
	for _, name := range preflight.Down() {
		errs = append(errs, fmt.Errorf("sink %s unavailable: %s", name, preflight.Components[name].Message))
		m.PublishTotal.WithLabelValues(name, "unavailable").Inc()
		delete(sinks, name)
	}
	ready := make([]publisher.Sink, 0, len(sinks))
	for _, sink := range sinks {
		ready = append(ready, sink)
	}
	if len(ready) == 0 {
		return errors.Join(errs...)
	}

	events := publisher.EventsFromReport(report, time.Now())
	pub := publisher.New(resilience.FromConfig(cfg.Retry), m, ready...)
	errs = append(errs, pub.Publish(ctx, events))
	return errors.Join(errs...)
}
