// Package riot talks to the match history backend.
//
// It parses "name#tag" identities, derives the routing region from the tag,
// resolves identities to stable account ids, pages match id listings inside an
// analysis window, and fetches per-match detail. Account ids and match id
// listings are cached on disk through blobcache; match details are not, since
// a cached listing already pins the ids that will be fetched.
package riot
