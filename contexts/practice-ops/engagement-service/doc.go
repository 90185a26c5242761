// Package engagementservice owns client engagements: tasks and their lifecycle,
// the documents attached to them, and the client and staff lookup tables.
//
// Layering:
// - domain: task/document/client/employee entities, temporal lock, storage paths, errors
// - application: commands and queries, each taking the acting user explicitly
// - ports: repositories, object storage, access policy, change publisher
// - adapters: memory and postgres repositories, object storage, HTTP handler
// - transport: module-private DTOs for HTTP contracts
//
// Every write publishes a change notification for its collection; readers
// converge by re-fetching, never by patching.
package engagementservice
