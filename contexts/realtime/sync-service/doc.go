// Package syncservice keeps every connected view converged with the stores.
//
// Writers publish one change notification per row write. The hub matches each
// notification against the subscriptions of every connected session,
// including the writer's own, and queues an invalidation. Views react by
// re-reading through the regular query paths; notifications never carry state
// that is applied directly.
//
// Layering:
// - domain: collections, subscriptions, row filters, invalidations, matching
// - application: hub, sessions, refresher, change feed consumer worker
// - ports: event subscriber
// - adapters/transport: HTTP handler and DTOs for the server-sent event stream
package syncservice
