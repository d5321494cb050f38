// Package blobcache persists small JSON documents under a cache root so
// backend responses can be reused between runs.
//
// Keys are relative slash-separated paths; each key maps to one file. Reads
// never fail: a missing, unreadable, or corrupt file is reported as a miss.
// Writes create parent directories, go through a temp file plus rename, and
// hold an advisory lock on the cache root so two processes sharing a cache do
// not interleave writes. Entries never expire; callers bypass the cache to
// refresh. Typed wraps a Store with a JSON codec for one logical cache.
package blobcache
