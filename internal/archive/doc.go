// Package archive opens CBZ/CBR comic containers and extracts page images
// on demand.
//
// Both container families are presented through one Session type: opening a
// container lists its image entries in natural filename order as lightweight
// PageDescriptors, and LoadPage extracts a single entry when the reader
// actually needs it. Descriptors carry an entry path, never bytes or a
// decoder handle, so they are safe to serialize.
//
// A Session belongs to exactly one comic. Concurrent LoadPage calls on the
// same session are safe; sessions are never shared across comics.
package archive
