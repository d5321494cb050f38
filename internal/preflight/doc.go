// Package preflight provides readiness checks for the backends and
// filesystem paths streamcheck depends on.
//
// The CLI "streamcheck status" command runs every check and prints one line
// per result. Backend checks make a single unretried request so a bad key is
// reported in seconds.
package preflight
