package store

// KV is the durable local store facade. All operations are synchronous
// and deal in JSON-serializable values, one blob per logical collection.
//
// The contract deliberately favors availability over strictness: a
// missing key or malformed stored JSON reads as absent, and a failed
// write is logged and dropped rather than surfaced, so in-memory state
// always makes forward progress. Callers that need to distinguish
// "absent" from "present" use the boolean return of Read.
type KV interface {
	// Read unmarshals the value stored under key into out and reports
	// whether a usable value was present. Malformed JSON is treated as
	// absent, never as an error.
	Read(key string, out any) bool

	// Write marshals value and stores it under key, replacing any
	// previous value. Failures are logged and swallowed.
	Write(key string, value any)

	// Remove deletes the value stored under key, if any.
	Remove(key string)
}
