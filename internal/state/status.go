// Package state implements the client-side stores that mirror the
// storefront API: a session store and one collection store per entity type.
// Every asynchronous operation runs a three-phase protocol (pending, then
// exactly one of fulfilled/rejected) and stores mutate only in response to
// those events. Overlapping operations on the same store are not serialized;
// the last terminal event to arrive wins.
package state

// Status is the request lifecycle state a store exposes to the presentation
// layer.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

// String returns the lowercase name used in logs and UI.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
