// Package registry implements the Connection Registry component.
//
// The registry:
//   - Wraps each WebSocket in a Conn with a buffered send channel and
//     a single write pump (sends never block message handling)
//   - Partitions classified connections into per-role sets
//   - Provides lookup by role and by id, and best-effort multicast
//   - Owns auxiliary per-connection state (heartbeat cancellation)
//
// All mutation methods are idempotent and mutex-guarded; handlers run
// on one goroutine per connection.
package registry
