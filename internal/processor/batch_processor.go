package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/config"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/queue"
)

// BatchWriter is the write access the processor needs. *database.Writer
// implements it.
type BatchWriter interface {
	WriteBatch(records []models.ResaleRecord) error
}

// BatchProcessor drains resale record batches from the queue into the
// database write path, with retries on failed batches. Workers receive from
// the queue channel, so each batch is written exactly once no matter how
// many workers run.
type BatchProcessor struct {
	writer    BatchWriter
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.RecordQueue
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewBatchProcessor creates a new batch processor instance
func NewBatchProcessor(writer BatchWriter, queue *queue.RecordQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		writer: writer,
		queue:  queue,
		config: config,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the worker goroutines
func (p *BatchProcessor) Start() {
	for i := 0; i < p.config.Import.ProcessorCount; i++ {
		p.waitGroup.Add(1)
		go p.processLoop()
	}
}

// Stop gracefully shuts down the processor
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

// processLoop consumes batches until the queue closes or the processor is
// stopped.
func (p *BatchProcessor) processLoop() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch, ok := <-p.queue.Batches():
			if !ok {
				return
			}
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).Error("Dropping batch after retries")
			}
		}
	}
}

// processBatch writes a single batch with retry logic
func (p *BatchProcessor) processBatch(batch []models.ResaleRecord) error {
	var err error
	for attempt := 0; attempt <= p.config.Import.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch write, attempt %d of %d", attempt, p.config.Import.MaxRetries)
			time.Sleep(time.Duration(p.config.Import.RetryDelay) * time.Second)
		}

		err = p.writer.WriteBatch(batch)
		if err == nil {
			p.logger.Infof("Successfully wrote batch of %d records", len(batch))
			return nil
		}

		p.logger.Errorf("Batch write failed: %v", err)
	}

	return fmt.Errorf("failed to write batch after %d attempts: %w", p.config.Import.MaxRetries, err)
}
