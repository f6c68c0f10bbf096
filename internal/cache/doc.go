// Package cache provides a byte-bounded LRU cache for store values.
//
// The LRU keeps recently read or written values of a backing store in
// memory so repeated checks of hot keys skip the store. Capacity counts
// key and value bytes; the least recently used entries are evicted first.
package cache
