// Package progress persists per-subscriber delivery state.
//
// The Store interface has three backends: a JSON file (the reference format,
// a single {"users": {...}} document rewritten atomically via temp file plus
// rename on every mutation), SQLite for larger subscriber sets, and an
// in-memory implementation for tests. Callers obtain subscriber state only
// through the Store; nothing else reads or writes the backing file.
//
// Advance is deliberately monotonic: replaying an older delivery
// acknowledgement can never move a subscriber backwards through the
// curriculum.
package progress
