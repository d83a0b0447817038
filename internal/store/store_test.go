package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"longbox/internal/store"
	"longbox/internal/testsupport"
)

func insertTestItem(t *testing.T, st *store.Store, name, hash string, data []byte) *store.Item {
	t.Helper()

	item, err := st.InsertItemWithBlob(context.Background(), &store.Item{
		Name:        name,
		ContentHash: hash,
		Size:        int64(len(data)),
		MIMEType:    store.ContainerMIME(name),
	}, data)
	if err != nil {
		t.Fatalf("InsertItemWithBlob failed: %v", err)
	}
	return item
}

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	item := insertTestItem(t, st, "demo.cbz", "hash-1", []byte("archive-bytes"))
	if item.ID == "" {
		t.Fatal("expected item ID to be assigned")
	}
	if item.MIMEType != "application/vnd.comicbook+zip" {
		t.Fatalf("unexpected mime type: %q", item.MIMEType)
	}

	fetched, err := st.GetItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if fetched == nil || fetched.Name != "demo.cbz" {
		t.Fatalf("unexpected fetched item: %#v", fetched)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	insertTestItem(t, st, "demo.cbz", "hash-1", []byte("bytes"))
	if err := st.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	count, err := reopened.ItemCount(context.Background())
	if err != nil {
		t.Fatalf("ItemCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 item after reopen, got %d", count)
	}
}

func TestBlobRefCounting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.PutBlob(ctx, "hash-a", []byte("content")); err != nil {
		t.Fatalf("PutBlob failed: %v", err)
	}
	if err := st.PutBlob(ctx, "hash-a", []byte("content")); err != nil {
		t.Fatalf("second PutBlob failed: %v", err)
	}

	count, err := st.BlobRefCount(ctx, "hash-a")
	if err != nil {
		t.Fatalf("BlobRefCount failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected ref count 2, got %d", count)
	}

	if err := st.ReleaseBlob(ctx, "hash-a"); err != nil {
		t.Fatalf("ReleaseBlob failed: %v", err)
	}
	count, err = st.BlobRefCount(ctx, "hash-a")
	if err != nil {
		t.Fatalf("BlobRefCount after release failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected ref count 1, got %d", count)
	}

	if err := st.ReleaseBlob(ctx, "hash-a"); err != nil {
		t.Fatalf("final ReleaseBlob failed: %v", err)
	}
	if _, err := st.BlobRefCount(ctx, "hash-a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected drained blob row to be deleted, got err=%v", err)
	}
	if _, err := st.GetBlob(ctx, "hash-a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected GetBlob miss, got err=%v", err)
	}
}

func TestReleaseUnknownBlobIsConsistencyFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	err := st.ReleaseBlob(context.Background(), "never-stored")
	if !errors.Is(err, store.ErrConsistency) {
		t.Fatalf("expected ErrConsistency, got %v", err)
	}
}

func TestFindItemByHash(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := insertTestItem(t, st, "demo.cbz", "hash-find", []byte("bytes"))

	found, err := st.FindItemByHash(ctx, "hash-find")
	if err != nil {
		t.Fatalf("FindItemByHash failed: %v", err)
	}
	if found == nil || found.ID != item.ID {
		t.Fatalf("expected to find inserted item, got %#v", found)
	}

	missing, err := st.FindItemByHash(ctx, "hash-other")
	if err != nil {
		t.Fatalf("FindItemByHash miss errored: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil on miss, got %#v", missing)
	}
}

func TestListRecentOrdersByTouch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := insertTestItem(t, st, "first.cbz", "hash-first", []byte("a"))
	second := insertTestItem(t, st, "second.cbz", "hash-second", []byte("b"))

	time.Sleep(2 * time.Millisecond)
	if err := st.TouchItem(ctx, first.ID); err != nil {
		t.Fatalf("TouchItem failed: %v", err)
	}

	items, err := st.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != first.ID || items[1].ID != second.ID {
		t.Fatalf("unexpected order: %s, %s", items[0].Name, items[1].Name)
	}

	limited, err := st.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("ListRecent with limit failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != first.ID {
		t.Fatalf("unexpected limited result: %#v", limited)
	}
}

func TestSaveProgressValidatesRange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.SaveProgress(ctx, "comic-1", 3, 10); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}
	if err := st.SaveProgress(ctx, "comic-1", 10, 10); err == nil {
		t.Fatal("expected out-of-range current page to fail")
	}
	if err := st.SaveProgress(ctx, "comic-1", -1, 10); err == nil {
		t.Fatal("expected negative current page to fail")
	}

	meta, err := st.GetMetadata(ctx, "comic-1")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if meta == nil || meta.CurrentPage != 3 || meta.TotalPages != 10 {
		t.Fatalf("unexpected metadata: %#v", meta)
	}
	if meta.LastRead.IsZero() {
		t.Fatal("expected last read to be stamped")
	}
}

func TestMetadataCreatedLazily(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	insertTestItem(t, st, "demo.cbz", "hash-lazy", []byte("bytes"))

	meta, err := st.GetMetadata(ctx, "hash-lazy")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if meta != nil {
		t.Fatalf("expected no metadata before first read, got %#v", meta)
	}
}

func TestSetDisplayFilter(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := st.SetDisplayFilter(ctx, "comic-1", "sepia"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before metadata exists, got %v", err)
	}

	if err := st.SaveProgress(ctx, "comic-1", 0, 4); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}
	if err := st.SetDisplayFilter(ctx, "comic-1", "sepia"); err != nil {
		t.Fatalf("SetDisplayFilter failed: %v", err)
	}

	meta, err := st.GetMetadata(ctx, "comic-1")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if meta.DisplayFilter != "sepia" {
		t.Fatalf("unexpected filter: %q", meta.DisplayFilter)
	}
}

func TestPageCacheRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	miss, err := st.GetPage(ctx, "comic-1", 0)
	if err != nil {
		t.Fatalf("GetPage miss errored: %v", err)
	}
	if miss != nil {
		t.Fatalf("expected cache miss, got %#v", miss)
	}

	entry := store.PageEntry{ComicID: "comic-1", PageIndex: 0, Data: []byte("page-bytes"), MIMEType: "image/png"}
	if err := st.PutPage(ctx, entry); err != nil {
		t.Fatalf("PutPage failed: %v", err)
	}

	// Entries are immutable: a second write for the same key is dropped.
	dupe := store.PageEntry{ComicID: "comic-1", PageIndex: 0, Data: []byte("other"), MIMEType: "image/png"}
	if err := st.PutPage(ctx, dupe); err != nil {
		t.Fatalf("duplicate PutPage failed: %v", err)
	}

	hit, err := st.GetPage(ctx, "comic-1", 0)
	if err != nil {
		t.Fatalf("GetPage hit errored: %v", err)
	}
	if hit == nil || string(hit.Data) != "page-bytes" || hit.MIMEType != "image/png" {
		t.Fatalf("unexpected cached page: %#v", hit)
	}

	count, err := st.PageCount(ctx, "comic-1")
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 cached page, got %d", count)
	}
}

func TestDeleteComicCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := insertTestItem(t, st, "demo.cbz", "hash-del", []byte("bytes"))
	if err := st.SaveProgress(ctx, item.ID, 1, 3); err != nil {
		t.Fatalf("SaveProgress failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := st.PutPage(ctx, store.PageEntry{ComicID: item.ID, PageIndex: i, Data: []byte{byte(i + 1)}}); err != nil {
			t.Fatalf("PutPage failed: %v", err)
		}
	}

	if err := st.DeleteComic(ctx, item.ID); err != nil {
		t.Fatalf("DeleteComic failed: %v", err)
	}

	if fetched, err := st.GetItem(ctx, item.ID); err != nil || fetched != nil {
		t.Fatalf("expected item gone, got %#v err=%v", fetched, err)
	}
	if meta, err := st.GetMetadata(ctx, item.ID); err != nil || meta != nil {
		t.Fatalf("expected metadata gone, got %#v err=%v", meta, err)
	}
	count, err := st.PageCount(ctx, item.ID)
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cached pages swept, %d remain", count)
	}
	if _, err := st.BlobRefCount(ctx, "hash-del"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected blob deleted at zero refs, got err=%v", err)
	}
}

func TestDeleteComicKeepsSharedBlob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := insertTestItem(t, st, "demo.cbz", "hash-shared", []byte("bytes"))
	// A second reference on the same content, as a concurrent put would add.
	if err := st.PutBlob(ctx, "hash-shared", []byte("bytes")); err != nil {
		t.Fatalf("PutBlob failed: %v", err)
	}

	if err := st.DeleteComic(ctx, item.ID); err != nil {
		t.Fatalf("DeleteComic failed: %v", err)
	}

	count, err := st.BlobRefCount(ctx, "hash-shared")
	if err != nil {
		t.Fatalf("BlobRefCount failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected surviving reference, got %d", count)
	}
}

func TestDeleteMissingComic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	if err := st.DeleteComic(context.Background(), "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStorageBytes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	insertTestItem(t, st, "demo.cbz", "hash-size", []byte("0123456789"))
	if err := st.PutPage(ctx, store.PageEntry{ComicID: "c", PageIndex: 0, Data: []byte("abcde")}); err != nil {
		t.Fatalf("PutPage failed: %v", err)
	}

	stats, err := st.StorageBytes(ctx)
	if err != nil {
		t.Fatalf("StorageBytes failed: %v", err)
	}
	if stats.BlobBytes != 10 {
		t.Fatalf("expected 10 blob bytes, got %d", stats.BlobBytes)
	}
	if stats.PageCacheBytes != 5 {
		t.Fatalf("expected 5 page cache bytes, got %d", stats.PageCacheBytes)
	}
	if stats.Total() != stats.BlobBytes+stats.PageCacheBytes+stats.ThumbnailBytes {
		t.Fatal("total does not add up")
	}
}

func TestItemRecordUpgradedOnRead(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// Plant a version-1 row the way an old release would have written it:
	// no mime type, record_version 1.
	db, err := sql.Open("sqlite", cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = db.ExecContext(ctx,
		`INSERT INTO items (id, name, content_hash, size, mime_type, thumbnail, created_at, updated_at, record_version)
         VALUES ('old-item', 'old.cbr', 'hash-old', 7, NULL, NULL, ?, ?, 1)`,
		now, now,
	)
	if err != nil {
		t.Fatalf("insert v1 row: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO blobs (hash, data, ref_count) VALUES ('hash-old', X'00', 1)`); err != nil {
		t.Fatalf("insert blob row: %v", err)
	}

	item, err := st.GetItem(ctx, "old-item")
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if item.MIMEType != "application/vnd.comicbook-rar" {
		t.Fatalf("expected derived mime type, got %q", item.MIMEType)
	}

	var version int
	var mime string
	row := db.QueryRowContext(ctx, `SELECT record_version, mime_type FROM items WHERE id = 'old-item'`)
	if err := row.Scan(&version, &mime); err != nil {
		t.Fatalf("read upgraded row: %v", err)
	}
	if version != 2 || mime != "application/vnd.comicbook-rar" {
		t.Fatalf("row not upgraded in place: version=%d mime=%q", version, mime)
	}
}
