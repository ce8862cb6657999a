package service

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradeflow/internal/config"
)

// ExtractionTask is a unit of work for the extraction worker pool. The worker
// owns FilePath once the task is enqueued and removes it when done.
type ExtractionTask struct {
	DocumentID uuid.UUID
	FilePath   string
}

// ExtractionQueue accepts extraction tasks for asynchronous processing.
// Enqueue returns false when the queue is full; the caller keeps ownership of
// the task's temp file in that case.
type ExtractionQueue interface {
	Enqueue(task ExtractionTask) bool
}

// ExtractionProcessor runs the extraction for a single document. Failures are
// recorded on the document's extraction job, not returned.
type ExtractionProcessor interface {
	ProcessExtraction(ctx context.Context, documentID uuid.UUID, filePath string)
	// DiscardExtraction records that a queued document will never be
	// extracted and releases its temp file.
	DiscardExtraction(ctx context.Context, documentID uuid.UUID, filePath string)
}

// ExtractionWorker runs a bounded pool of goroutines that process queued
// document extractions.
type ExtractionWorker struct {
	processor ExtractionProcessor
	tasks     chan ExtractionTask
	cfg       config.QueueConfig
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewExtractionWorker creates a new ExtractionWorker.
func NewExtractionWorker(processor ExtractionProcessor, cfg config.QueueConfig, timeout time.Duration) *ExtractionWorker {
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	return &ExtractionWorker{
		processor: processor,
		tasks:     make(chan ExtractionTask, cfg.Size),
		cfg:       cfg,
		timeout:   timeout,
	}
}

// Enqueue offers a task to the pool without blocking.
func (w *ExtractionWorker) Enqueue(task ExtractionTask) bool {
	select {
	case w.tasks <- task:
		return true
	default:
		return false
	}
}

// Start launches the worker goroutines. They drain the queue until ctx is
// canceled; Start blocks until all in-flight extractions have finished.
func (w *ExtractionWorker) Start(ctx context.Context) {
	log.Printf("extractionWorker: started (concurrency=%d, queue=%d)", w.cfg.Concurrency, w.cfg.Size)

	for i := 0; i < w.cfg.Concurrency; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-w.tasks:
					w.process(task)
				}
			}
		}()
	}

	w.wg.Wait()
	w.drain()
	log.Printf("extractionWorker: shutdown complete")
}

// drain discards tasks still queued after the workers have stopped, so their
// jobs don't sit pending forever and their temp files don't leak.
func (w *ExtractionWorker) drain() {
	for {
		select {
		case task := <-w.tasks:
			log.Printf("extractionWorker: discarding queued document %s on shutdown", task.DocumentID)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			w.processor.DiscardExtraction(ctx, task.DocumentID, task.FilePath)
			cancel()
		default:
			return
		}
	}
}

func (w *ExtractionWorker) process(task ExtractionTask) {
	// The temp file is removed whatever the extraction outcome.
	defer func() {
		if err := os.Remove(task.FilePath); err != nil && !os.IsNotExist(err) {
			log.Printf("extractionWorker: removing temp file %s: %v", task.FilePath, err)
		}
	}()

	// Fresh context independent of the server's, so in-flight extractions
	// complete even during shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	log.Printf("extractionWorker: processing document %s", task.DocumentID)
	w.processor.ProcessExtraction(ctx, task.DocumentID, task.FilePath)
}
