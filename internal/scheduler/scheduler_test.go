package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookstore-assistant/internal/tasks"
)

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []backlite.Task
	err   error
}

func (f *fakeEnqueuer) Enqueue(task backlite.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task)
	return "task-1", nil
}

func enrichJob(schedule string) Job {
	return Job{
		Name:     "enrich_catalog",
		Schedule: schedule,
		NewTask:  func() backlite.Task { return tasks.EnrichCatalogTask{Limit: 200} },
	}
}

func TestTaskScheduler_Add(t *testing.T) {
	s := NewTaskScheduler(&fakeEnqueuer{})

	require.NoError(t, s.Add(enrichJob("30 3 * * *")))
	assert.Error(t, s.Add(enrichJob("30 3 * * *")), "duplicate name")
	assert.Error(t, s.Add(Job{Name: "bad", Schedule: "invalid", NewTask: enrichJob("").NewTask}))
	assert.Error(t, s.Add(Job{Name: "empty", Schedule: "0 * * * *"}))
}

func TestTaskScheduler_RunNow(t *testing.T) {
	enqueuer := &fakeEnqueuer{}
	s := NewTaskScheduler(enqueuer)
	require.NoError(t, s.Add(enrichJob("30 3 * * *")))

	id, err := s.RunNow("enrich_catalog")
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)
	require.Len(t, enqueuer.tasks, 1)
	assert.Equal(t, tasks.EnrichCatalogTask{Limit: 200}, enqueuer.tasks[0])

	_, err = s.RunNow("missing")
	assert.Error(t, err)

	enqueuer.err = errors.New("queue closed")
	_, err = s.RunNow("enrich_catalog")
	assert.Error(t, err)
}

func TestTaskScheduler_StartStop(t *testing.T) {
	s := NewTaskScheduler(&fakeEnqueuer{})
	require.NoError(t, s.Add(enrichJob("0 * * * *")))

	assert.Nil(t, s.GetNextRunTime("enrich_catalog"))

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime("enrich_catalog")
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))
	assert.Nil(t, s.GetNextRunTime("missing"))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		schedule string
		valid    bool
	}{
		{"0 * * * *", true},
		{"30 3 * * *", true},
		{"0 4 * * 0", true},
		{"invalid", false},
		{"* * * *", false},
		{"60 * * * *", false},
		{"0 25 * * *", false},
	}

	for _, tt := range tests {
		t.Run(tt.schedule, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDescribeSchedule(t *testing.T) {
	assert.Equal(t, "Daily at 03:30", DescribeSchedule("30 3 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * *", DescribeSchedule("5 4 * * *"))
}

func TestNextRunTime(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 15, 0, 0, time.UTC)
	next, err := NextRunTime("30 3 * * *", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 16, 3, 30, 0, 0, time.UTC), next)

	_, err = NextRunTime("invalid", now)
	assert.Error(t, err)
}
