package scheduler

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// refreshHour is the local hour of the daily data refresh. HDB publishes
// dataset updates overnight.
const refreshHour = 3

// Jobs are the pieces of the import pipeline the scheduler drives.
type Jobs struct {
	// StoreEmpty reports whether the database holds any transactions yet.
	StoreEmpty func() (bool, error)
	// RunImport runs a full CSV import.
	RunImport func() error
	// SendDigest posts the market digest after a successful refresh.
	SendDigest func() error
}

// Scheduler runs the startup import and the daily refresh.
type Scheduler struct {
	jobs     Jobs
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex
	// startupRunning is read from the ticker goroutine while the startup
	// goroutine clears it, hence atomic.
	startupRunning atomic.Bool
}

// NewScheduler creates a new scheduler
func NewScheduler(jobs Jobs, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	s := &Scheduler{
		jobs:     jobs,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
	s.startupRunning.Store(true)
	return s
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Run the startup check in a separate goroutine
	go func() {
		s.jobMutex.Lock()
		defer s.jobMutex.Unlock()
		s.runStartupImport()
		s.startupRunning.Store(false)
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// runStartupImport imports the dataset when the store is empty, so a fresh
// deployment serves data without manual intervention.
func (s *Scheduler) runStartupImport() {
	empty, err := s.jobs.StoreEmpty()
	if err != nil {
		s.logger.WithError(err).Error("Startup store check failed")
		return
	}
	if !empty {
		s.logger.Info("Store already populated, skipping startup import")
		return
	}

	s.logger.Info("Empty store detected, running startup import")
	s.runRefresh()
}

// executeScheduledJobs runs all jobs that are scheduled for the given time
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	// Skip if we're still running startup jobs
	if s.startupRunning.Load() {
		s.logger.Debug("Skipping scheduled jobs while startup is in progress")
		return
	}

	if t.Hour() != refreshHour || t.Minute() != 0 {
		return
	}

	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	s.logger.Info("Starting scheduled data refresh")
	s.runRefresh()
	s.logger.Info("Completed scheduled data refresh")
}

// runRefresh imports the dataset and posts the digest on success.
func (s *Scheduler) runRefresh() {
	if err := s.jobs.RunImport(); err != nil {
		s.logger.WithError(err).Error("Import job failed")
		return
	}
	s.logger.Info("Import job completed successfully")

	if s.jobs.SendDigest == nil {
		return
	}
	if err := s.jobs.SendDigest(); err != nil {
		s.logger.WithError(err).Error("Digest job failed")
	}
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
