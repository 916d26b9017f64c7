// Package kv is the persistent store adapter: a string-keyed byte store with
// two scopes.
//
// The durable scope (SQLiteStore) survives restarts and holds the session
// record, the session token, and the per-user chatroom and per-chatroom
// message lists. The session scope (MemoryStore) lives for one process and
// holds the pending OTP challenge.
//
// Both implement Store. WithTx runs a function against a transactional view:
// every write made through the view becomes visible together, or not at all
// when the function returns an error. Callers must use the Store handed to
// the function, never the outer one, while inside WithTx.
//
// Get on an absent key returns (nil, nil).
package kv
