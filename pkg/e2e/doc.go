// Package e2e holds end-to-end tests that drive the HTTP API over a real
// listener with a directory-backed topology source.
package e2e
