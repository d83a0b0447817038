package api

// ItemView is one library entry as served to clients. Thumbnail is an
// inline data URI so list views render without extra round trips.
type ItemView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	SizeBytes int64  `json:"sizeBytes"`
	MIMEType  string `json:"mimeType"`
	Thumbnail string `json:"thumbnail,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ProgressView is the reading state of one comic.
type ProgressView struct {
	ComicID       string `json:"comicId"`
	CurrentPage   int    `json:"currentPage"`
	TotalPages    int    `json:"totalPages"`
	LastRead      string `json:"lastRead"`
	DisplayFilter string `json:"displayFilter,omitempty"`
}

// StorageView is the advisory storage estimate.
type StorageView struct {
	UsedBytes  uint64 `json:"usedBytes"`
	QuotaBytes uint64 `json:"quotaBytes"`
}

// ComicListResponse wraps the recent-items listing.
type ComicListResponse struct {
	Items []ItemView `json:"items"`
}

// ComicResponse wraps a single comic with its reading state. Progress is
// null until the comic is opened for the first time.
type ComicResponse struct {
	Item     ItemView      `json:"item"`
	Progress *ProgressView `json:"progress,omitempty"`
}

// ErrorResponse is the uniform error payload. Kind is a stable machine
// token; Error is human phrasing and may change.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
