package api

import (
	"time"

	"longbox/internal/store"
	"longbox/internal/thumbnail"
)

// FromItem converts a stored library entry into its wire view.
func FromItem(item *store.Item) ItemView {
	if item == nil {
		return ItemView{}
	}
	return ItemView{
		ID:        item.ID,
		Name:      item.Name,
		SizeBytes: item.Size,
		MIMEType:  item.MIMEType,
		Thumbnail: thumbnail.DataURI(item.Thumbnail),
		CreatedAt: formatTime(item.CreatedAt),
		UpdatedAt: formatTime(item.UpdatedAt),
	}
}

// FromItems converts a listing, preserving order.
func FromItems(items []*store.Item) []ItemView {
	if len(items) == 0 {
		return nil
	}
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// FromMetadata converts reading state; a nil record maps to nil so the
// response field serializes as absent.
func FromMetadata(meta *store.ComicMetadata) *ProgressView {
	if meta == nil {
		return nil
	}
	return &ProgressView{
		ComicID:       meta.ComicID,
		CurrentPage:   meta.CurrentPage,
		TotalPages:    meta.TotalPages,
		LastRead:      formatTime(meta.LastRead),
		DisplayFilter: meta.DisplayFilter,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
