// Package httpretry executes backend HTTP requests with retry on rate limiting,
// server errors, and transport failures.
//
// Delays grow by half on every retry starting from the configured backoff. A
// Retry-After header replaces the delay for the wait it accompanies only.
// When attempts run out the last response is returned unmodified so callers
// can inspect the status themselves.
package httpretry
