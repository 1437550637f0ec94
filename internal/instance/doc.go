// Package instance implements the Desktop Instance Manager component.
//
// A desktop instance is a logical grouping of screens provisioned by a
// spawner on consumer request. The manager owns the instance table:
// create/remove are idempotent, status updates mutate instance- and
// screen-level state, and List returns point-in-time snapshots.
// Instances are never garbage collected; they live until explicitly
// removed.
package instance
