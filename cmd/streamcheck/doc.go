// Command streamcheck reports how many of a contestant's ranked matches were
// played while they were broadcasting.
//
// Single mode analyzes one riot id against one stream login:
//
//	streamcheck check --riot-id "Name#TAG" --twitch login
//
// Batch mode reads a participant list (file or stdin) and processes every
// contestant in turn, recording skips instead of aborting:
//
//	streamcheck batch --input participants.json
package main
