package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/blob"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service"
)

const testMaxUpload = 1024

func newAttachmentHandler(t *testing.T) (*AttachmentHandler, *blob.MemoryStore) {
	t.Helper()
	blobs := blob.NewMemoryStore(false)
	attachments := service.NewAttachmentService(blobs, service.AttachmentConfig{MaxUploadBytes: testMaxUpload}, nil)
	return NewAttachmentHandler(attachments, testMaxUpload, NewErrorHandler(false), nil), blobs
}

func multipartRequest(t *testing.T, field, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/tasks/t1/attachments", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAttachmentHandlerUpload(t *testing.T) {
	h, blobs := newAttachmentHandler(t)

	rec := httptest.NewRecorder()
	h.Upload(rec, withTask(multipartRequest(t, "file", "notes.txt", []byte("hello")), sampleTask()))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	attachment := decodeJSON[domain.Attachment](t, rec)
	assert.True(t, strings.HasSuffix(attachment.Name, "-notes.txt"), attachment.Name)
	assert.Equal(t, "users/u1/tasks/t1/"+attachment.Name, attachment.Path)
	assert.Equal(t, int64(5), attachment.Size)

	stored, err := blobs.Open(attachment.Path)
	require.NoError(t, err)
	content, err := io.ReadAll(stored)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}

func TestAttachmentHandlerUploadRejections(t *testing.T) {
	tests := []struct {
		name         string
		request      func(t *testing.T) *http.Request
		expectedCode int
		expectedMsg  string
	}{
		{
			name: "empty file",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "empty.txt", nil)
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  domain.ErrEmptyAttachment.Message,
		},
		{
			name: "wrong field",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "upload", "notes.txt", []byte("hello"))
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  domain.ErrEmptyAttachment.Message,
		},
		{
			name: "over the size limit",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "big.bin", bytes.Repeat([]byte("x"), testMaxUpload+1))
			},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  domain.ErrAttachmentTooLarge.Message,
		},
		{
			name: "unsafe file name",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "file", "???", []byte("hello"))
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name: "not multipart",
			request: func(t *testing.T) *http.Request {
				return jsonRequest(http.MethodPost, "/api/tasks/t1/attachments", `{}`)
			},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newAttachmentHandler(t)

			rec := httptest.NewRecorder()
			h.Upload(rec, withTask(tt.request(t), sampleTask()))

			require.Equal(t, tt.expectedCode, rec.Code, rec.Body.String())
			body := errorBody(t, rec)
			assert.Equal(t, domain.CodeValidation, body.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, body.Message)
			}
		})
	}
}

func TestAttachmentHandlerListSignDelete(t *testing.T) {
	h, blobs := newAttachmentHandler(t)
	task := sampleTask()
	_, err := blobs.Upload(context.Background(), "users/u1/tasks/t1/1700000000000-a.txt", strings.NewReader("a"), "text/plain")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.List(rec, withTask(httptest.NewRequest(http.MethodGet, "/api/tasks/t1/attachments", nil), task))
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decodeJSON[[]domain.Attachment](t, rec)
	require.Len(t, listed, 1)
	assert.Equal(t, "1700000000000-a.txt", listed[0].Name)

	params := map[string]string{"id": "t1", "name": "1700000000000-a.txt"}

	rec = httptest.NewRecorder()
	h.SignedURL(rec, withTask(withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), params), task))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	signed := decodeJSON[AttachmentURLResponse](t, rec)
	assert.True(t, strings.HasPrefix(signed.URL, "memory://users/u1/tasks/t1/1700000000000-a.txt?"), signed.URL)
	assert.False(t, signed.ExpiresAt.IsZero())

	rec = httptest.NewRecorder()
	h.Delete(rec, withTask(withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), params), task))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.Delete(rec, withTask(withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), params), task))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Attachment not found", errorBody(t, rec).Error)
}

func TestAttachmentHandlerWithoutOwnershipGate(t *testing.T) {
	h, _ := newAttachmentHandler(t)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/t1/attachments", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
