package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/segment"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/cranfield-index/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/indexer.yaml", "path to config file")
	variantName := flag.String("variant", "Version1", "variant to read")
	fromRedis := flag.Bool("redis", false, "load the latest artifact from Redis instead of the output directory")
	prefix := flag.Bool("prefix", false, "list dictionary terms starting with each argument")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	vc, ok := cfg.Variant(*variantName)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown variant %q\n", *variantName)
		os.Exit(1)
	}
	variant, err := indexer.VariantFromConfig(vc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	reader, err := open(cfg, variant, *fromRedis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening index: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d terms, %d documents (%s)\n", reader.Path(), reader.Terms(), reader.DocCount(), reader.Layout())

	var terms []string
	for _, arg := range flag.Args() {
		for _, w := range tokenizer.Words(arg) {
			terms = append(terms, variant.Reducer.Reduce(w))
		}
	}
	for _, t := range terms {
		if *prefix {
			fmt.Printf("%s*: %s\n", t, strings.Join(reader.Prefix(t), " "))
			continue
		}
		row, ok := reader.Lookup(t)
		if !ok {
			fmt.Printf("%s: not found\n", t)
			continue
		}
		fmt.Printf("%s: df=%d docs=%v\n", t, row.DocFreq, row.DocIDs)
	}
	if len(terms) > 1 && !*prefix {
		fmt.Printf("all of %s: %v\n", strings.Join(terms, " "), reader.Intersect(terms...).ToArray())
	}
}

func open(cfg *config.Config, v indexer.Variant, fromRedis bool) (*segment.Reader, error) {
	if !fromRedis {
		return segment.OpenCompressed(filepath.Join(cfg.Indexer.OutputDir, segment.CompressedName(v.Name)), v.Layout)
	}
	client, err := redis.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}
	defer client.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	buildID, data, err := client.LatestArtifact(ctx, v.Name)
	if err != nil {
		if redis.IsNilError(err) {
			return nil, fmt.Errorf("no build of %s published to redis", v.Name)
		}
		return nil, err
	}
	c, err := segment.ReadCompressed(bytes.NewReader(data), v.Layout)
	if err != nil {
		return nil, err
	}
	return segment.NewReader(client.ArtifactKey(v.Name, buildID), c)
}
