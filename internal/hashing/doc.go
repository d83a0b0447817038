// Package hashing computes content digests used as deduplication keys.
//
// Digests are cryptographic (SHA-256) rather than checksums because they
// key the shared blob store: two uploads with equal digests are treated as
// the same content everywhere downstream.
package hashing
