// Package jobs runs background work outside the request path.
//
// A Job is persisted before it is queued, so work submitted before a crash
// or restart is recovered by the next Runner.Start. Jobs are rebuilt from
// their stored records through a Registry of per-type factories. Workers
// pull from a bounded in-memory Queue; Submit fails fast with ErrQueueFull
// rather than blocking the caller, and the stuck-job monitor queues the
// saved job once there is room.
package jobs
