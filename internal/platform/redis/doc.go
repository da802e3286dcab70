// Package redis provides the Redis connection and the Redis-backed
// fixed-window rate limiter shared by every API replica.
package redis
