// Package cache implements the time boxed caches in front of the permission catalog,
// form definitions and field definitions.
//
// A TTL cache has a single expiry timestamp: once it passes, every entry is dropped at
// once. Mutations call Invalidate for write-through consistency. When several replicas
// run, a Bus carries invalidations between them.
package cache
