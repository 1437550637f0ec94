// Package server owns the WebSocket listener.
//
// Each accepted socket gets a registry.Conn and a sequential read loop
// that feeds the relay, so per-connection message order is preserved.
// Stop force-closes every open connection (classified or not) and then
// shuts the listener down.
package server
