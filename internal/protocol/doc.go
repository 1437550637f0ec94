// Package protocol defines the JSON wire messages exchanged over relay
// WebSocket connections.
//
// Every message is a JSON object with a mandatory "type" discriminator.
// Envelope extracts the discriminator once at the boundary; the typed
// structs in this package decode the rest. Unknown fields are ignored.
package protocol
