// Package catmaid is the client for a CATMAID-style server: the remote
// source of the annotation graph, skeletons, volumes, and landmarks that an
// export run consumes.
//
// The client caches raw responses on disk (or in Redis) with a TTL and
// memoizes decoded skeletons per run in an LRU. Both caches hand out owned
// copies: decoded values are never aliased into cached storage, so callers
// can mutate what they receive.
package catmaid
