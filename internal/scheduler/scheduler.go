// Package scheduler enqueues background tasks on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
)

// TaskEnqueuer adds a task to the background queue.
type TaskEnqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// Job enqueues the task built by NewTask every time Schedule fires.
type Job struct {
	Name     string
	Schedule string // Cron format: "30 3 * * *" = daily at 03:30
	NewTask  func() backlite.Task
}

// TaskScheduler manages periodic enqueueing of background tasks, such as
// the nightly catalog enrichment and audit retention cleanup.
type TaskScheduler struct {
	enqueuer TaskEnqueuer

	cron       *cron.Cron
	mu         sync.RWMutex
	jobs       map[string]Job
	entries    map[string]cron.EntryID
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewTaskScheduler creates a new scheduler instance
func NewTaskScheduler(enqueuer TaskEnqueuer) *TaskScheduler {
	return &TaskScheduler{
		enqueuer: enqueuer,
		cron:     cron.New(cron.WithParser(parser)),
		jobs:     make(map[string]Job),
		entries:  make(map[string]cron.EntryID),
	}
}

// Add registers a job. Jobs may be added before or after Start.
func (s *TaskScheduler) Add(job Job) error {
	if job.NewTask == nil {
		return fmt.Errorf("job %q has no task", job.Name)
	}
	if err := ValidateSchedule(job.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", job.Schedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}

	entryID, err := s.cron.AddFunc(job.Schedule, func() {
		s.run(job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", job.Name, err)
	}
	s.jobs[job.Name] = job
	s.entries[job.Name] = entryID

	log.Printf("Scheduler: %s scheduled %s", job.Name, DescribeSchedule(job.Schedule))
	return nil
}

// Start begins firing jobs until ctx is cancelled or Stop is called.
func (s *TaskScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: started with %d jobs", len(s.jobs))

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()
}

// Stop gracefully stops the scheduler
func (s *TaskScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Scheduler: stopped")
}

// RunNow enqueues a job's task immediately and returns the task ID.
func (s *TaskScheduler) RunNow(name string) (string, error) {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown job %q", name)
	}
	return s.enqueue(job)
}

// IsRunning returns whether the scheduler is active
func (s *TaskScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the named job fires next, or nil when the
// scheduler is stopped or the job is unknown.
func (s *TaskScheduler) GetNextRunTime(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	entryID, ok := s.entries[name]
	if !ok {
		return nil
	}
	t := s.cron.Entry(entryID).Next
	return &t
}

func (s *TaskScheduler) run(job Job) {
	if _, err := s.enqueue(job); err != nil {
		log.Printf("Scheduler: %s: %v", job.Name, err)
	}
}

func (s *TaskScheduler) enqueue(job Job) (string, error) {
	id, err := s.enqueuer.Enqueue(job.NewTask())
	if err != nil {
		return "", err
	}
	log.Printf("Scheduler: %s enqueued task %s", job.Name, id)
	return id, nil
}
