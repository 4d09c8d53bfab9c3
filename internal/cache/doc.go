// Package cache provides a byte-bounded LRU cache.
//
// Every entry is charged its size against the cache capacity and, when a
// resource.Controller is attached, against the controller's global memory
// limit. Entries that do not fit are not cached.
package cache
