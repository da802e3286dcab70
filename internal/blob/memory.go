package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data []byte
	meta Object
}

// MemoryStore keeps objects in process. It backs tests and the memory blob
// driver.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	public  bool
	now     func() time.Time
}

// NewMemoryStore creates an empty store. When public is set, Upload returns
// a memory:// URL for each object.
func NewMemoryStore(public bool) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]memoryObject),
		public:  public,
		now:     time.Now,
	}
}

// Ensure MemoryStore implements Store interface
var _ Store = (*MemoryStore)(nil)

// Upload implements Store.Upload.
func (s *MemoryStore) Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	s.mu.Lock()
	s.objects[path] = memoryObject{
		data: data,
		meta: Object{Path: path, ContentType: contentType, Size: int64(len(data)), Updated: s.now().UTC()},
	}
	s.mu.Unlock()

	if !s.public {
		return "", nil
	}
	return "memory://" + path, nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[path]; !ok {
		return ErrNotFound
	}
	delete(s.objects, path)
	return nil
}

// SignedURL implements Store.SignedURL.
func (s *MemoryStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	_, ok := s.objects[path]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}

	q := url.Values{}
	q.Set("expires", fmt.Sprint(s.now().Add(ttl).Unix()))
	return "memory://" + path + "?" + q.Encode(), nil
}

// List implements Store.List.
func (s *MemoryStore) List(ctx context.Context, prefix string) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Object, 0)
	for path, obj := range s.objects {
		if strings.HasPrefix(path, prefix) {
			out = append(out, obj.meta)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Open returns a reader over the object's content.
func (s *MemoryStore) Open(path string) (io.Reader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[path]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.NewReader(obj.data), nil
}
