package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/phrazzld/tasks-api/internal/blob"
	"github.com/phrazzld/tasks-api/internal/docstore"
	"github.com/phrazzld/tasks-api/internal/events"
	"github.com/phrazzld/tasks-api/internal/jobs"
	"github.com/phrazzld/tasks-api/internal/repository"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	docs        *docstore.MemoryStore
	users       *repository.UserRepository
	tasks       *repository.TaskRepository
	tokens      auth.TokenService
	blobs       *blob.MemoryStore
	attachments *service.AttachmentServiceImpl
	submitter   *recordingSubmitter
	emitter     *events.InMemoryEventEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	docs := docstore.NewMemoryStore()
	blobs := blob.NewMemoryStore(true)
	f := &fixture{
		docs:   docs,
		users:  repository.NewUserRepository(docs, nil),
		tasks:  repository.NewTaskRepository(docs, nil),
		tokens: auth.NewTestTokenService(t, func() time.Time { return fixedNow }),
		blobs:  blobs,
		attachments: service.NewAttachmentService(blobs, service.AttachmentConfig{
			MaxUploadBytes: 1024,
			SignedURLTTL:   time.Hour,
		}, nil),
		submitter: &recordingSubmitter{},
		emitter:   events.NewInMemoryEventEmitter(nil),
	}
	f.emitter.RegisterHandler(service.NewAttachmentPurgeHandler(f.attachments, f.submitter, nil))
	return f
}

func (f *fixture) userService() *service.UserServiceImpl {
	return service.NewUserService(f.users, f.tokens, nil)
}

func (f *fixture) taskService() *service.TaskServiceImpl {
	return service.NewTaskService(f.tasks, f.emitter, nil)
}

// recordingSubmitter records submitted jobs without running them.
type recordingSubmitter struct {
	mu   sync.Mutex
	jobs []jobs.Job
	err  error
}

func (s *recordingSubmitter) Submit(_ context.Context, job jobs.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

func (s *recordingSubmitter) submitted() []jobs.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]jobs.Job(nil), s.jobs...)
}

// failingBlobStore fails every call with err.
type failingBlobStore struct {
	err error
}

func (s failingBlobStore) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", s.err
}

func (s failingBlobStore) Delete(context.Context, string) error { return s.err }

func (s failingBlobStore) SignedURL(context.Context, string, time.Duration) (string, error) {
	return "", s.err
}

func (s failingBlobStore) List(context.Context, string) ([]blob.Object, error) {
	return nil, s.err
}

var errBackend = errors.New("backend unavailable")

func ptr[T any](v T) *T { return &v }

func jobRecord(id string, payload []byte) jobs.Record {
	return jobs.Record{
		ID:      id,
		Type:    service.AttachmentPurgeJobType,
		Payload: payload,
		Status:  jobs.StatusPending,
	}
}
