// Package events lets use cases announce domain events without knowing who
// reacts to them.
//
// A service emits an Event through an EventEmitter; handlers registered with
// the InMemoryEventEmitter receive every event and act on the types they
// understand, typically by submitting background jobs.
package events
