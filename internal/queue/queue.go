package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// RecordQueue is an in-memory queue of resale record batches sitting between
// the CSV importer and the batch processors. Each pushed batch is delivered
// to exactly one consumer, so concurrent consumers never write the same
// records twice.
type RecordQueue struct {
	items   chan []models.ResaleRecord
	maxSize int
	closed  bool
	mu      sync.RWMutex
	logger  *logrus.Logger
}

// NewRecordQueue creates a new record queue with the specified buffer size
func NewRecordQueue(bufferSize int, logger *logrus.Logger) *RecordQueue {
	return &RecordQueue{
		items:   make(chan []models.ResaleRecord, bufferSize),
		maxSize: bufferSize,
		logger:  logger,
	}
}

// Push adds a batch of records to the queue. The read lock is held across
// the send so Close cannot close the channel under a concurrent Push.
func (q *RecordQueue) Push(records []models.ResaleRecord) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	// Non-blocking send to prevent deadlocks
	select {
	case q.items <- records:
		q.logger.WithField("batch_size", len(records)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Batches is the consume side of the queue. Receiving takes a batch off the
// queue, so each batch reaches a single consumer. The channel is closed when
// the queue is closed.
func (q *RecordQueue) Batches() <-chan []models.ResaleRecord {
	return q.items
}

// Close stops the queue and prevents new items from being added
func (q *RecordQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.items)
	return nil
}

// Len returns the current number of batches in the queue
func (q *RecordQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed
func (q *RecordQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
