// Package twitch talks to the video archive backend.
//
// A Client holds one app access token obtained through the client-credentials
// grant and refreshes it a minute before expiry; concurrent callers share a
// single refresh. Logins resolve to user ids and archived broadcasts are
// listed as millisecond intervals, both cached on disk through blobcache.
package twitch
