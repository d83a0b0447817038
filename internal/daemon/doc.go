// Package daemon runs the long-lived longbox process: it enforces
// single-instance execution through a lock file, owns the library store,
// and serves the HTTP API that uploads, reads, and deletes comics.
package daemon
