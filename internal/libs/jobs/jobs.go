// Package jobs provides an in-process queue for background work.
package jobs

import (
	"context"
	"sync"
	"time"
)

// Status is the lifecycle state of a job.
type Status string

// Job statuses
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// historyLimit bounds how many finished jobs are remembered.
const historyLimit = 100

// Job represents a background job
type Job struct {
	ID         string
	Status     Status
	Error      string
	CreatedAt  time.Time
	StartedAt  time.Time
	FinishedAt time.Time
}

// Queue hands jobs to workers in FIFO order. It is safe for concurrent use.
type Queue struct {
	mu     sync.Mutex
	jobs   []*Job
	notify chan struct{}
}

// NewQueue creates a new job queue
func NewQueue() *Queue {
	return &Queue{
		jobs:   make([]*Job, 0),
		notify: make(chan struct{}, 1),
	}
}

// Enqueue adds a pending job to the queue
func (q *Queue) Enqueue(id string) Job {
	job := &Job{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.prune()
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return *job
}

// Next blocks until a pending job is available, marks it running and returns it.
func (q *Queue) Next(ctx context.Context) (Job, error) {
	for {
		q.mu.Lock()
		for _, job := range q.jobs {
			if job.Status == StatusPending {
				job.Status = StatusRunning
				job.StartedAt = time.Now()
				out := *job
				q.mu.Unlock()
				return out, nil
			}
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Job{}, ctx.Err()
		case <-q.notify:
		}
	}
}

// Finish records the outcome of a running job. A nil err marks it done.
func (q *Queue) Finish(id string, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.ID != id || job.Status != StatusRunning {
			continue
		}
		job.FinishedAt = time.Now()
		job.Status = StatusDone
		if err != nil {
			job.Status = StatusFailed
			job.Error = err.Error()
		}
		return
	}
}

// Count returns the number of jobs in the queue
func (q *Queue) Count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Pending returns the number of jobs waiting for a worker
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := 0
	for _, job := range q.jobs {
		if job.Status == StatusPending {
			n++
		}
	}
	return n
}

// Get returns a copy of the job with the given id.
func (q *Queue) Get(id string) (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.ID == id {
			return *job, true
		}
	}
	return Job{}, false
}

// prune drops the oldest finished jobs beyond historyLimit. Callers hold mu.
func (q *Queue) prune() {
	finished := 0
	for _, job := range q.jobs {
		if job.Status == StatusDone || job.Status == StatusFailed {
			finished++
		}
	}
	if finished <= historyLimit {
		return
	}

	drop := finished - historyLimit
	kept := q.jobs[:0]
	for _, job := range q.jobs {
		if drop > 0 && (job.Status == StatusDone || job.Status == StatusFailed) {
			drop--
			continue
		}
		kept = append(kept, job)
	}
	q.jobs = kept
}
