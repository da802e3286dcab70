package jobs

import (
	"context"
	"sync"
	"time"
)

type testJob struct {
	id      string
	typ     string
	payload []byte
	run     func(ctx context.Context) error
}

func (j *testJob) ID() string      { return j.id }
func (j *testJob) Type() string    { return j.typ }
func (j *testJob) Payload() []byte { return j.payload }

func (j *testJob) Execute(ctx context.Context) error {
	if j.run == nil {
		return nil
	}
	return j.run(ctx)
}

type finished struct {
	jobType string
	status  Status
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []finished
}

func (o *recordingObserver) JobFinished(jobType string, status Status, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, finished{jobType: jobType, status: status})
}

func (o *recordingObserver) snapshot() []finished {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]finished(nil), o.seen...)
}
