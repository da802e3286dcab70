// Package ratelimit defines the fixed-window request limiter used by the HTTP
// layer and its in-process implementation. A Redis-backed implementation
// lives in internal/platform/redis.
package ratelimit
