package store

import "time"

// Record versions for lazy row upgrades. Bump when a scan-time upgrade is
// added; the matching upgrade lives next to the scan helper.
const (
	itemRecordVersion     = 2
	metadataRecordVersion = 2
)

// Item is one library entry for an uploaded comic. ContentHash references a
// blobs row that holds refCount >= 1 for as long as the item exists.
type Item struct {
	ID            string
	Name          string
	ContentHash   string
	Size          int64
	MIMEType      string
	Thumbnail     []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
	RecordVersion int
}

// ComicMetadata tracks reading progress for one comic. Created lazily on
// the first page read, not at ingestion.
type ComicMetadata struct {
	ComicID       string
	CurrentPage   int
	TotalPages    int
	LastRead      time.Time
	DisplayFilter string
	RecordVersion int
}

// PageEntry is one cached extracted page. Entries are immutable once
// written and removed only when their comic is deleted.
type PageEntry struct {
	ComicID   string
	PageIndex int
	Data      []byte
	MIMEType  string
	CachedAt  time.Time
}

// StorageStats summarizes bytes held by the library database.
type StorageStats struct {
	BlobBytes      int64
	PageCacheBytes int64
	ThumbnailBytes int64
}

// Total returns all accounted bytes.
func (s StorageStats) Total() int64 {
	return s.BlobBytes + s.PageCacheBytes + s.ThumbnailBytes
}
