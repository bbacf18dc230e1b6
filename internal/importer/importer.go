package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/models"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/queue"
)

// Sink receives parsed record batches. The import queue implements it.
type Sink interface {
	Push(records []models.ResaleRecord) error
}

// Stats summarizes one import run.
type Stats struct {
	TotalRows int
	Parsed    int
	Skipped   int
	Elapsed   time.Duration
}

// Importer streams the HDB resale CSV drop into batches of parsed records.
type Importer struct {
	sink      Sink
	batchSize int
	logger    *logrus.Logger
}

func New(sink Sink, batchSize int, logger *logrus.Logger) *Importer {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Importer{
		sink:      sink,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ImportFile reads the CSV at path and pushes record batches to the sink.
// Rows that fail to parse are skipped and counted, not fatal.
func (im *Importer) ImportFile(ctx context.Context, path string) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("opening data file: %w", err)
	}
	defer f.Close()

	start := time.Now()
	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Stats{}, fmt.Errorf("reading CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	var stats Stats
	batch := make([]models.ResaleRecord, 0, im.batchSize)

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("reading CSV row: %w", err)
		}
		stats.TotalRows++

		get := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(row) {
				return ""
			}
			return row[idx]
		}

		record, err := parseRecord(get)
		if err != nil {
			stats.Skipped++
			im.logger.WithError(err).WithField("row", stats.TotalRows).Warn("Skipping unparseable row")
			continue
		}
		stats.Parsed++
		batch = append(batch, record)

		if len(batch) >= im.batchSize {
			if err := im.push(ctx, batch); err != nil {
				return stats, err
			}
			batch = make([]models.ResaleRecord, 0, im.batchSize)
		}

		if stats.Parsed%10000 == 0 {
			im.logger.WithFields(logrus.Fields{
				"parsed":  stats.Parsed,
				"skipped": stats.Skipped,
			}).Info("Import progress")
		}
	}

	if len(batch) > 0 {
		if err := im.push(ctx, batch); err != nil {
			return stats, err
		}
	}

	stats.Elapsed = time.Since(start)
	im.logger.WithFields(logrus.Fields{
		"total":   stats.TotalRows,
		"parsed":  stats.Parsed,
		"skipped": stats.Skipped,
		"elapsed": stats.Elapsed.String(),
	}).Info("Import finished")
	return stats, nil
}

// push hands a batch to the sink, waiting out transient queue-full
// conditions.
func (im *Importer) push(ctx context.Context, batch []models.ResaleRecord) error {
	for {
		err := im.sink.Push(batch)
		if err == nil {
			return nil
		}
		if !errors.Is(err, queue.ErrQueueFull) {
			return fmt.Errorf("pushing batch: %w", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}
