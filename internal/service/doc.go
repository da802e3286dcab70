// Package service contains the application use cases. It orchestrates the
// domain types, the store ports (internal/store), the token service
// (internal/service/auth), the blob store and the event emitter.
//
// Services receive their dependencies through constructor injection and
// never depend on a concrete storage implementation. Expected failures are
// returned as domain sentinels; unexpected ones are wrapped in ServiceError.
package service
