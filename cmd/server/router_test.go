package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "debug",
			Environment:     "test",
			ShutdownTimeout: time.Second,
		},
		Database: config.DatabaseConfig{Driver: "memory"},
		Auth: config.AuthConfig{
			JWTSecret: strings.Repeat("k", 32),
			Issuer:    "tasks-api",
			Audience:  "tasks-users",
		},
		Blob: config.BlobConfig{
			Driver:         "memory",
			SignedURLTTL:   time.Hour,
			MaxUploadBytes: 1024,
		},
		RateLimit: config.RateLimitConfig{Requests: 100, Window: time.Minute},
		Jobs: config.JobsConfig{
			WorkerCount:        1,
			QueueSize:          10,
			StuckAfter:         time.Minute,
			StuckCheckInterval: time.Minute,
		},
		Telemetry: config.TelemetryConfig{ServiceName: "tasks-api-test"},
	}
}

// testServer starts the full router over in-memory backends.
func testServer(t *testing.T, cfg *config.Config) (*httptest.Server, *application) {
	t.Helper()
	log, _ := logger.NewTestLogger()

	app, err := newApplication(context.Background(), cfg, log)
	require.NoError(t, err)

	server := httptest.NewServer(app.setupRouter())
	t.Cleanup(func() {
		server.Close()
		app.cleanup()
	})
	return server, app
}

type client struct {
	t      *testing.T
	server *httptest.Server
	token  string
}

func (c *client) do(method, path string, body io.Reader, contentType string) (*http.Response, []byte) {
	c.t.Helper()
	req, err := http.NewRequest(method, c.server.URL+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, data
}

func (c *client) json(method, path, body string) (*http.Response, map[string]any) {
	c.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	resp, data := c.do(method, path, r, "application/json")

	var out map[string]any
	if len(data) > 0 && data[0] == '{' {
		require.NoError(c.t, json.Unmarshal(data, &out), string(data))
	}
	return resp, out
}

func (c *client) list(path string) (*http.Response, []map[string]any) {
	c.t.Helper()
	resp, data := c.do(http.MethodGet, path, nil, "")
	var out []map[string]any
	require.NoError(c.t, json.Unmarshal(data, &out), string(data))
	return resp, out
}

func register(t *testing.T, server *httptest.Server, email string) (*client, string) {
	t.Helper()
	c := &client{t: t, server: server}
	resp, body := c.json(http.MethodPost, "/api/users/register", `{"email":"`+email+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	c.token = body["token"].(string)
	return c, body["userId"].(string)
}

func TestTaskLifecycle(t *testing.T) {
	server, app := testServer(t, testConfig())
	owner, ownerID := register(t, server, "owner@example.com")
	other, _ := register(t, server, "other@example.com")

	// create
	resp, task := owner.json(http.MethodPost, "/api/tasks", `{"title":"Write report","description":"Q1 numbers"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, task)
	taskID := task["id"].(string)
	assert.Equal(t, ownerID, task["userId"])
	assert.Equal(t, false, task["completed"])
	assert.NotEmpty(t, resp.Header.Get("X-Trace-ID"))

	// list
	resp, tasks := owner.list("/api/tasks?statusFilter=pending")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, tasks, 1)
	assert.Equal(t, taskID, tasks[0]["id"])

	_, otherTasks := other.list("/api/tasks")
	assert.Empty(t, otherTasks)

	// ownership
	resp, denied := other.json(http.MethodGet, "/api/tasks/"+taskID, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied. You can only access your own tasks.", denied["error"])

	// update
	resp, updated := owner.json(http.MethodPut, "/api/tasks/"+taskID, `{"completed":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, updated)
	assert.Equal(t, true, updated["completed"])
	assert.Equal(t, "Write report", updated["title"])
	assert.NotEmpty(t, updated["updatedAt"])

	resp, invalid := owner.json(http.MethodPut, "/api/tasks/"+taskID, `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", invalid["code"])

	// attachment
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("meeting notes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, data := owner.do(http.MethodPost, "/api/tasks/"+taskID+"/attachments", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	resp, attachments := owner.list("/api/tasks/" + taskID + "/attachments")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, attachments, 1)

	name := attachments[0]["name"].(string)
	resp, signed := owner.json(http.MethodGet, "/api/tasks/"+taskID+"/attachments/"+name+"/url", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, signed)
	assert.Contains(t, signed["url"], name)

	resp, _ = other.do(http.MethodGet, "/api/tasks/"+taskID+"/attachments", nil, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// delete purges attachments in the background
	resp, data = owner.do(http.MethodDelete, "/api/tasks/"+taskID, nil, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode, string(data))

	resp, missing := owner.json(http.MethodGet, "/api/tasks/"+taskID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Task not found", missing["error"])

	assert.Eventually(t, func() bool {
		remaining, err := app.attachmentService.List(context.Background(), ownerID, taskID)
		return err == nil && len(remaining) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAuthFlow(t *testing.T) {
	server, _ := testServer(t, testConfig())
	anon := &client{t: t, server: server}

	t.Run("validation", func(t *testing.T) {
		resp, body := anon.json(http.MethodPost, "/api/users/register", `{"email":"not-an-email"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Validation error", body["error"])
		assert.Equal(t, []any{map[string]any{
			"field":   "email",
			"message": "email must be a valid email address",
		}}, body["details"])
	})

	registered, userID := register(t, server, "ada@example.com")

	t.Run("duplicate registration", func(t *testing.T) {
		resp, body := anon.json(http.MethodPost, "/api/users/register", `{"email":"ada@example.com"}`)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "USER_EXISTS", body["code"])
	})

	t.Run("login", func(t *testing.T) {
		resp, body := anon.json(http.MethodPost, "/api/users/login", `{"email":"ada@example.com"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, userID, body["userId"])

		resp, body = anon.json(http.MethodPost, "/api/users/login", `{"email":"nobody@example.com"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "USER_NOT_FOUND", body["code"])
	})

	t.Run("refresh", func(t *testing.T) {
		resp, body := registered.json(http.MethodPost, "/api/users/refresh-token", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Token refreshed successfully", body["message"])
		assert.NotEmpty(t, body["token"])
	})

	t.Run("missing token", func(t *testing.T) {
		resp, body := anon.json(http.MethodGet, "/api/tasks", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, map[string]any{"Authorization": "Bearer your-jwt-token"}, body["example"])
	})

	t.Run("invalid token", func(t *testing.T) {
		bad := &client{t: t, server: server, token: "not.a.token"}
		resp, body := bad.json(http.MethodGet, "/api/tasks", "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "INVALID_TOKEN", body["code"])
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Requests: 2, Window: time.Minute}
	server, _ := testServer(t, cfg)
	anon := &client{t: t, server: server}

	for i := 0; i < 2; i++ {
		resp, _ := anon.json(http.MethodPost, "/api/users/login", `{"email":"ada@example.com"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}

	resp, body := anon.json(http.MethodPost, "/api/users/login", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "RATE_LIMITED", body["code"])
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))

	// health and metrics are outside the limited API
	resp, _ = anon.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitKeysOnPeerAddress(t *testing.T) {
	tests := []struct {
		name          string
		trustProxy    bool
		expectedCodes []int
	}{
		{
			name:          "forwarded headers ignored by default",
			trustProxy:    false,
			expectedCodes: []int{http.StatusNotFound, http.StatusTooManyRequests, http.StatusTooManyRequests},
		},
		{
			name:          "forwarded headers honoured behind a trusted proxy",
			trustProxy:    true,
			expectedCodes: []int{http.StatusNotFound, http.StatusNotFound, http.StatusNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Server.TrustProxy = tt.trustProxy
			cfg.RateLimit = config.RateLimitConfig{Requests: 1, Window: time.Minute}
			server, _ := testServer(t, cfg)

			codes := make([]int, 0, len(tt.expectedCodes))
			for i := range tt.expectedCodes {
				req, err := http.NewRequest(http.MethodPost, server.URL+"/api/users/login",
					strings.NewReader(`{"email":"ada@example.com"}`))
				require.NoError(t, err)
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
				req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))

				resp, err := server.Client().Do(req)
				require.NoError(t, err)
				_ = resp.Body.Close()
				codes = append(codes, resp.StatusCode)
			}
			assert.Equal(t, tt.expectedCodes, codes)
		})
	}
}

func TestOperationalEndpoints(t *testing.T) {
	server, _ := testServer(t, testConfig())
	anon := &client{t: t, server: server}

	resp, health := anon.json(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", health["status"])
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, data := anon.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(data), `tasks_api_http_requests_total{method="GET",route="/health",status="200"} 1`)
	assert.Contains(t, string(data), "tasks_api_rate_limited_requests_total 0")
}

func TestNewApplicationRejectsUnknownDrivers(t *testing.T) {
	log, _ := logger.NewTestLogger()

	cfg := testConfig()
	cfg.Database.Driver = "mongo"
	_, err := newApplication(context.Background(), cfg, log)
	assert.ErrorContains(t, err, `unsupported database driver "mongo"`)

	cfg = testConfig()
	cfg.Blob.Driver = "s3"
	_, err = newApplication(context.Background(), cfg, log)
	assert.ErrorContains(t, err, `unsupported blob driver "s3"`)
}

func TestMigrateRejectsInvalidInput(t *testing.T) {
	log, _ := logger.NewTestLogger()

	err := migrate(context.Background(), testConfig(), "sideways", log)
	assert.ErrorContains(t, err, `unknown migration command "sideways"`)

	err = migrate(context.Background(), testConfig(), "up", log)
	assert.ErrorIs(t, err, errMigrationsNeedPostgres)
}
