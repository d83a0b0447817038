// Package store persists the comic library in SQLite.
//
// Four tables back the library: items (one row per uploaded comic), blobs
// (content-addressed archive bytes with reference counts), comic_metadata
// (reading progress), and page_cache (extracted page images). Blobs are
// shared between items via ref_count; everything else is owned by exactly
// one comic and removed with it in DeleteComic's single transaction.
//
// Schema changes are additive SQL files under migrations/, applied through
// a schema_migrations table at Open. Row-level evolution is lazy: each row
// carries a record_version, and scan helpers upgrade old rows in place the
// first time they are read. There is never a blocking whole-table rewrite.
package store
