package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"styleprint/internal/analyzer"
	"styleprint/internal/api"
	"styleprint/internal/config"
	"styleprint/internal/eventbus"
	"styleprint/internal/fetcher"
	"styleprint/internal/pipeline"
	"styleprint/internal/similarity"
	"styleprint/internal/store"
	"styleprint/internal/timeline"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <config.yaml>", os.Args[0])
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mongoStore, err := store.NewMongo(ctx, cfg.MongoEndpoint)
	if err != nil {
		log.Fatalf("failed to construct store: %v", err)
	}

	readyCtx, cancelReady := context.WithTimeout(ctx, 30*time.Second)
	defer cancelReady()
	if err := mongoStore.WaitUntilReady(readyCtx); err != nil {
		log.Fatalf("store not ready: %v", err)
	}

	bus := eventbus.New()

	var src timeline.Source
	if cfg.TwitterConsumerKey != "" {
		src = timeline.NewTwitterSource(timeline.TwitterCredentials{
			ConsumerKey:    cfg.TwitterConsumerKey,
			ConsumerSecret: cfg.TwitterConsumerSecret,
			AccessToken:    cfg.TwitterAccessToken,
			AccessSecret:   cfg.TwitterAccessSecret,
		})
	} else {
		log.Printf("[main] no twitter_consumer_key configured, running with a no-op timeline source")
		src = timeline.NewFake()
	}

	var p *pipeline.Pipeline
	if cfg.WithAnalyzer {
		f := fetcher.New(mongoStore, src)
		a := analyzer.New(mongoStore, cfg.HandleConfig())
		s := similarity.New(mongoStore)

		p = pipeline.New(f, a, s, bus, pipeline.DefaultStageConcurrency)
		p.Start(ctx)
		p.Seed(cfg.TwitterHandles)
	} else {
		// With the analyzer disabled, the HTTP layer still needs a Q_in
		// to push /refresh requests onto, even if nothing drains it.
		p = pipeline.New(fetcher.New(mongoStore, src), analyzer.New(mongoStore, cfg.HandleConfig()), similarity.New(mongoStore), bus, pipeline.DefaultStageConcurrency)
	}

	if enableMemoryTrim() {
		go memoryTrimLoop(ctx)
	}

	server := api.New(mongoStore, p.QIn, bus, cfg.StaticLocation, cfg.ServerPort)
	server.Start()
	log.Printf("[main] listening on :%d", cfg.ServerPort)

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] server shutdown error: %v", err)
	}

	p.Stop()
	bus.Close()
	if err := mongoStore.Close(shutdownCtx); err != nil {
		log.Printf("[main] store close error: %v", err)
	}
}

// enableMemoryTrim defaults to on, matching the reference system's
// always-on 300-second malloc_trim loop
// (_examples/original_source/server/src/memory_trimmer.rs); set
// ENABLE_MEMORY_TRIM=false to disable it.
func enableMemoryTrim() bool {
	return os.Getenv("ENABLE_MEMORY_TRIM") != "false"
}

func memoryTrimLoop(ctx context.Context) {
	ticker := time.NewTicker(300 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			debug.FreeOSMemory()
		}
	}
}
