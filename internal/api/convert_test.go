package api

import (
	"strings"
	"testing"
	"time"

	"longbox/internal/store"
)

func TestFromItem(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	item := &store.Item{
		ID:          "abc",
		Name:        "demo.cbz",
		ContentHash: "deadbeef",
		Size:        1234,
		MIMEType:    "application/vnd.comicbook+zip",
		Thumbnail:   []byte{0xff, 0xd8, 0xff},
		CreatedAt:   created,
		UpdatedAt:   created.Add(time.Hour),
	}

	view := FromItem(item)
	if view.ID != "abc" || view.Name != "demo.cbz" || view.SizeBytes != 1234 {
		t.Fatalf("unexpected view %+v", view)
	}
	if !strings.HasPrefix(view.Thumbnail, "data:image/jpeg;base64,") {
		t.Fatalf("thumbnail should be a data URI, got %q", view.Thumbnail)
	}
	if view.CreatedAt != "2024-03-01T09:30:00Z" {
		t.Fatalf("unexpected created timestamp %q", view.CreatedAt)
	}
}

func TestFromItemWithoutThumbnail(t *testing.T) {
	view := FromItem(&store.Item{ID: "abc"})
	if view.Thumbnail != "" {
		t.Fatalf("expected empty thumbnail, got %q", view.Thumbnail)
	}
}

func TestFromMetadataNil(t *testing.T) {
	if FromMetadata(nil) != nil {
		t.Fatal("nil metadata must convert to nil")
	}
}

func TestFromMetadata(t *testing.T) {
	read := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)
	view := FromMetadata(&store.ComicMetadata{
		ComicID:       "abc",
		CurrentPage:   4,
		TotalPages:    22,
		LastRead:      read,
		DisplayFilter: "sepia",
	})
	if view == nil || view.CurrentPage != 4 || view.TotalPages != 22 || view.DisplayFilter != "sepia" {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.LastRead != "2024-03-02T20:00:00Z" {
		t.Fatalf("unexpected last read %q", view.LastRead)
	}
}

func TestFromItemsPreservesOrder(t *testing.T) {
	views := FromItems([]*store.Item{{ID: "b"}, {ID: "a"}})
	if len(views) != 2 || views[0].ID != "b" || views[1].ID != "a" {
		t.Fatalf("unexpected order %+v", views)
	}
	if FromItems(nil) != nil {
		t.Fatal("empty listing must convert to nil")
	}
}
