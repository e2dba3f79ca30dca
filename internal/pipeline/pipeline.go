// Package pipeline wires the three processing stages together through
// the Q_in -> Q_analyze -> Q_sim -> Q_done queue chain: one dispatcher
// goroutine per stage pops handles and fans them out to a bounded pool
// of per-handle worker goroutines.
package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"styleprint/internal/analyzer"
	"styleprint/internal/eventbus"
	"styleprint/internal/fetcher"
	"styleprint/internal/queue"
	"styleprint/internal/similarity"
)

// DefaultStageConcurrency bounds how many handles each stage processes
// concurrently.
const DefaultStageConcurrency = 8

// Pipeline owns the four inter-stage queues and the per-stage
// processing logic. Construct with New, then Start(ctx); Stop drains
// and shuts down cleanly.
type Pipeline struct {
	QIn      *queue.Queue
	QAnalyze *queue.Queue
	QSim     *queue.Queue
	QDone    *queue.Queue

	fetcher    *fetcher.Fetcher
	analyzer   *analyzer.Analyzer
	similarity *similarity.Engine
	bus        *eventbus.Bus

	concurrency int
	wg          sync.WaitGroup
}

// New returns a Pipeline wired to the given stage implementations and
// event bus. Concurrency <= 0 falls back to DefaultStageConcurrency.
func New(f *fetcher.Fetcher, a *analyzer.Analyzer, s *similarity.Engine, bus *eventbus.Bus, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = DefaultStageConcurrency
	}
	return &Pipeline{
		QIn:         queue.New(),
		QAnalyze:    queue.New(),
		QSim:        queue.New(),
		QDone:       queue.New(),
		fetcher:     f,
		analyzer:    a,
		similarity:  s,
		bus:         bus,
		concurrency: concurrency,
	}
}

// Seed pushes the configured handles onto Q_in at startup.
func (p *Pipeline) Seed(handles []string) {
	for _, h := range handles {
		p.QIn.Push(h)
	}
}

// Start launches the four stage dispatchers as background goroutines
// and returns immediately. Call Stop to shut down.
func (p *Pipeline) Start(ctx context.Context) {
	go p.runStage(ctx, "fetcher", p.QIn, p.QAnalyze, p.fetcher.FetchHandle)
	go p.runStage(ctx, "analyzer", p.QAnalyze, p.QSim, p.analyzer.AnalyzeHandle)
	go p.runStage(ctx, "similarity", p.QSim, p.QDone, p.wrapSimilarity())
	go p.runTerminal(ctx, "notifier", p.QDone)
}

// Stop closes every queue, unblocking dispatchers and draining
// in-flight items, then waits for all worker goroutines to finish.
// Safe to call once after Start.
func (p *Pipeline) Stop() {
	p.QIn.Close()
	p.QAnalyze.Close()
	p.QSim.Close()
	p.QDone.Close()
	p.wg.Wait()
}

// stageFunc processes one handle for one stage, returning an error on
// failure that the dispatcher logs and drops rather than propagates
// past the worker boundary.
type stageFunc func(ctx context.Context, handle string) error

// wrapSimilarity adapts the Engine's method to stageFunc. A handle can
// reach Q_sim before another handle's signature write is visible under
// a non-transactional store; ErrNoStoredSignature surfaces as an
// ordinary error in that case, same as any other failure.
func (p *Pipeline) wrapSimilarity() stageFunc {
	return p.similarity.UpdateSimilarities
}

func (p *Pipeline) runStage(ctx context.Context, name string, in, out *queue.Queue, fn stageFunc) {
	sem := make(chan struct{}, p.concurrency)

	for {
		handle, ok := in.Pop(ctx)
		if !ok {
			return
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		p.wg.Add(1)
		go func(handle string) {
			defer p.wg.Done()
			defer func() { <-sem }()

			if err := fn(ctx, handle); err != nil {
				log.Printf("[%s] %s: %v", name, handle, err)
				return
			}
			out.Push(handle)
		}(handle)
	}
}

// runTerminal drains Q_done, loading the handle's freshly written
// similarity rows and publishing them for the live websocket stream.
// A load failure here is itself HandleScoped: the pipeline run already
// succeeded, so it is logged rather than retried.
func (p *Pipeline) runTerminal(ctx context.Context, name string, in *queue.Queue) {
	for {
		handle, ok := in.Pop(ctx)
		if !ok {
			return
		}

		rows, err := p.similarity.Store.SimilaritiesOf(ctx, handle)
		if err != nil {
			log.Printf("[%s] %s: load similarities for notification: %v", name, handle, err)
			rows = nil
		}

		p.bus.Publish(eventbus.Notification{
			Kind:      eventbus.SimilarityUpdated,
			Handle:    handle,
			Rows:      rows,
			Timestamp: time.Now(),
		})
	}
}
