// Command batch computes distances for every pair listed in a JSON manifest
// and writes one JSON result per line to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	natsadapter "github.com/samirrijal/geodist/internal/adapters/nats"
	"github.com/samirrijal/geodist/internal/adapters/valkey"
	"github.com/samirrijal/geodist/internal/core/ports"
	"github.com/samirrijal/geodist/internal/core/usecases"
	"github.com/samirrijal/geodist/internal/pkg/config"
	"github.com/samirrijal/geodist/internal/pkg/logging"
)

func main() {
	workers := flag.Int("workers", 8, "max concurrent calculations")
	publish := flag.Bool("publish", false, "publish results to NATS")
	flag.Parse()

	cfg, err := config.Load("geodist-batch")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load manifest
	manifestPath := "pairs.json"
	if flag.NArg() > 0 {
		manifestPath = flag.Arg(0)
	}
	manifest, err := loadManifest(manifestPath)
	if err != nil {
		log.Fatal(err)
	}

	var cache ports.CacheService
	if cfg.Valkey.Enabled {
		c, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable, caching disabled", "error", err)
		} else {
			defer c.Close()
			cache = c
		}
	}

	var events ports.EventPublisher
	if *publish {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer pub.Close()
		events = pub
	}

	svc := usecases.NewDistanceService(cache, events, cfg.Cache.TTLSeconds)

	slog.Info("batch starting", "source", manifest.Source, "pairs", len(manifest.Pairs), "workers", *workers)
	start := time.Now()

	results := runAll(ctx, svc, manifest.Pairs, *workers)

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			log.Fatalf("write result: %v", err)
		}
	}

	slog.Info("batch done", "pairs", len(results), "failed", failed, "elapsed", time.Since(start).String())
	if failed > 0 {
		os.Exit(1)
	}
}
