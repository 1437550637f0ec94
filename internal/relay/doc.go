// Package relay implements the message relay core: handshake
// classification, frame fan-out, command dispatch, desktop-instance
// handling and heartbeat.
//
// The relay:
//   - Classifies each connection by role on its first handshake
//   - Enriches producer frames with routing metadata and multicasts
//     them to consumers
//   - Routes consumer control commands to one targeted producer or
//     broadcasts them to all producers
//   - Forwards desktop-instance lifecycle commands to spawners and
//     tracks instance state
//   - Pings every classified connection on a per-connection timer
//
// Handlers run on the owning connection's read goroutine; shared state
// lives behind the registry and instance manager.
package relay
