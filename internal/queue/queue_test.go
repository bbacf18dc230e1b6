package queue

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
)

func TestNewRecordQueue(t *testing.T) {
	logger := logrus.New()
	q := NewRecordQueue(10, logger)
	assert.NotNil(t, q)
	assert.Equal(t, 10, q.maxSize)
	assert.False(t, q.IsClosed())
}

func TestRecordQueue_Push(t *testing.T) {
	logger := logrus.New()
	q := NewRecordQueue(2, logger)

	// Test successful push
	records := []models.ResaleRecord{{Town: "BEDOK"}}
	err := q.Push(records)
	assert.NoError(t, err)
	assert.Equal(t, 1, q.Len())

	// Test queue full
	for i := 0; i < 2; i++ {
		records := []models.ResaleRecord{{Town: "BEDOK"}}
		_ = q.Push(records)
	}
	err = q.Push(records)
	assert.Equal(t, ErrQueueFull, err)

	// Test closed queue
	q.Close()
	err = q.Push(records)
	assert.Equal(t, ErrQueueClosed, err)
}

func TestRecordQueue_Consume(t *testing.T) {
	logger := logrus.New()
	q := NewRecordQueue(10, logger)

	testRecords := []models.ResaleRecord{{Town: "BEDOK"}, {Town: "YISHUN"}}
	err := q.Push(testRecords)
	assert.NoError(t, err)
	q.Close()

	var processed []models.ResaleRecord
	for batch := range q.Batches() {
		processed = append(processed, batch...)
	}

	assert.Equal(t, 2, len(processed))
	assert.Equal(t, "BEDOK", processed[0].Town)
	assert.Equal(t, "YISHUN", processed[1].Town)
}

// Each batch must reach exactly one consumer, even with several consumers
// draining the queue concurrently.
func TestRecordQueue_SingleDelivery(t *testing.T) {
	logger := logrus.New()
	q := NewRecordQueue(10, logger)

	const batches = 6
	for i := 0; i < batches; i++ {
		err := q.Push([]models.ResaleRecord{{Town: "BEDOK"}})
		assert.NoError(t, err)
	}
	q.Close()

	var mu sync.Mutex
	var wg sync.WaitGroup
	delivered := 0

	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range q.Batches() {
				mu.Lock()
				delivered++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, batches, delivered)
}

func TestRecordQueue_Close(t *testing.T) {
	logger := logrus.New()
	q := NewRecordQueue(10, logger)

	// Test first close
	err := q.Close()
	assert.NoError(t, err)
	assert.True(t, q.IsClosed())

	// Test second close (should be no-op)
	err = q.Close()
	assert.NoError(t, err)

	// The consume channel ends with the queue.
	_, ok := <-q.Batches()
	assert.False(t, ok)
}
