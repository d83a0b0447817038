// Package library orchestrates the comic workflows on top of the archive
// adapter and the persistence layer.
//
// Ingest hashes an upload and short-circuits on duplicate content before
// any archive parsing; novel uploads are parsed, given a best-effort cover
// thumbnail, and persisted atomically. GetPage serves the reader: cached
// pages come straight from the store, uncached ones are extracted through
// a per-comic archive session, and every successful resolution records
// reading progress as a side effect. Delete cascades through everything a
// comic owns.
//
// Sessions live in memory per open comic and are never shared between
// comics; concurrent reads and ingestions of unrelated comics do not
// contend beyond the store's own transactions.
package library
