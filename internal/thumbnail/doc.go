// Package thumbnail generates bounded-size JPEG previews for library
// covers.
//
// Generation is best-effort by design: callers log and continue when a
// cover page cannot be decoded (bmp and webp pages, for example, have no
// stdlib decoder). A missing thumbnail never fails an ingestion.
package thumbnail
