package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"longbox/internal/api"
	"longbox/internal/library"
	"longbox/internal/logging"
	"longbox/internal/testsupport"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := library.New(cfg, st, logging.NewNop())
	d, err := New(cfg, st, svc, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	server := httptest.NewServer(d.api.server.Handler)
	t.Cleanup(server.Close)
	return server
}

func uploadComic(t *testing.T, server *httptest.Server, filename string, data []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	resp, err := http.Post(server.URL+"/api/comics", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /api/comics: %v", err)
	}
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestUploadListShowDelete(t *testing.T) {
	server := newTestServer(t)
	data := testsupport.ThreePageCBZ(t)

	resp := uploadComic(t, server, "demo.cbz", data)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("upload status %d", resp.StatusCode)
	}
	created := decodeJSON[api.ComicResponse](t, resp)
	if created.Item.ID == "" || created.Item.Name != "demo.cbz" {
		t.Fatalf("unexpected item %+v", created.Item)
	}
	if created.Item.SizeBytes != int64(len(data)) {
		t.Fatalf("size %d, want %d", created.Item.SizeBytes, len(data))
	}

	resp, err := http.Get(server.URL + "/api/comics")
	if err != nil {
		t.Fatalf("GET /api/comics: %v", err)
	}
	listing := decodeJSON[api.ComicListResponse](t, resp)
	if len(listing.Items) != 1 || listing.Items[0].ID != created.Item.ID {
		t.Fatalf("unexpected listing %+v", listing)
	}

	resp, err = http.Get(server.URL + "/api/comics/" + created.Item.ID)
	if err != nil {
		t.Fatalf("GET comic: %v", err)
	}
	shown := decodeJSON[api.ComicResponse](t, resp)
	if shown.Progress != nil {
		t.Fatal("progress should be absent before the first page read")
	}

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/api/comics/"+created.Item.ID, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE comic: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/comics/" + created.Item.ID)
	if err != nil {
		t.Fatalf("GET deleted comic: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestUploadDuplicateReturnsSameItem(t *testing.T) {
	server := newTestServer(t)
	data := testsupport.ThreePageCBZ(t)

	first := decodeJSON[api.ComicResponse](t, uploadComic(t, server, "demo.cbz", data))
	second := decodeJSON[api.ComicResponse](t, uploadComic(t, server, "again.cbz", data))
	if second.Item.ID != first.Item.ID {
		t.Fatalf("duplicate upload produced new item %s", second.Item.ID)
	}
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	server := newTestServer(t)

	resp := uploadComic(t, server, "notes.pdf", []byte("%PDF-"))
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("status %d, want 415", resp.StatusCode)
	}
	payload := decodeJSON[api.ErrorResponse](t, resp)
	if payload.Kind != string(library.KindUnsupportedFormat) {
		t.Fatalf("unexpected kind %q", payload.Kind)
	}
}

func TestUploadRejectsCorruptArchive(t *testing.T) {
	server := newTestServer(t)

	resp := uploadComic(t, server, "broken.cbz", []byte("not a zip"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", resp.StatusCode)
	}
}

func TestUploadRequiresFileField(t *testing.T) {
	server := newTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.WriteField("name", "demo.cbz"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	writer.Close()

	resp, err := http.Post(server.URL+"/api/comics", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}
}

func TestServePageAndProgress(t *testing.T) {
	server := newTestServer(t)
	created := decodeJSON[api.ComicResponse](t, uploadComic(t, server, "demo.cbz", testsupport.ThreePageCBZ(t)))

	resp, err := http.Get(fmt.Sprintf("%s/api/comics/%s/pages/1", server.URL, created.Item.ID))
	if err != nil {
		t.Fatalf("GET page: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("page status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if !bytes.Equal(body, testsupport.PNGBytes(t, 2)) {
		t.Fatal("served page bytes differ from archive entry")
	}

	resp, err = http.Get(server.URL + "/api/comics/" + created.Item.ID)
	if err != nil {
		t.Fatalf("GET comic: %v", err)
	}
	shown := decodeJSON[api.ComicResponse](t, resp)
	if shown.Progress == nil || shown.Progress.CurrentPage != 1 || shown.Progress.TotalPages != 3 {
		t.Fatalf("unexpected progress %+v", shown.Progress)
	}
}

func TestServePageBadIndex(t *testing.T) {
	server := newTestServer(t)
	created := decodeJSON[api.ComicResponse](t, uploadComic(t, server, "demo.cbz", testsupport.ThreePageCBZ(t)))

	resp, err := http.Get(fmt.Sprintf("%s/api/comics/%s/pages/nope", server.URL, created.Item.ID))
	if err != nil {
		t.Fatalf("GET page: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}

	resp, err = http.Get(fmt.Sprintf("%s/api/comics/%s/pages/99", server.URL, created.Item.ID))
	if err != nil {
		t.Fatalf("GET page: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", resp.StatusCode)
	}
}

func TestSetDisplayFilterEndpoint(t *testing.T) {
	server := newTestServer(t)
	created := decodeJSON[api.ComicResponse](t, uploadComic(t, server, "demo.cbz", testsupport.ThreePageCBZ(t)))

	// Open the comic so progress metadata exists.
	resp, err := http.Get(fmt.Sprintf("%s/api/comics/%s/pages/0", server.URL, created.Item.ID))
	if err != nil {
		t.Fatalf("GET page: %v", err)
	}
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodPut,
		server.URL+"/api/comics/"+created.Item.ID+"/filter",
		bytes.NewReader([]byte(`{"filter":"grayscale"}`)))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT filter: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("filter status %d", resp.StatusCode)
	}

	resp, err = http.Get(server.URL + "/api/comics/" + created.Item.ID)
	if err != nil {
		t.Fatalf("GET comic: %v", err)
	}
	shown := decodeJSON[api.ComicResponse](t, resp)
	if shown.Progress == nil || shown.Progress.DisplayFilter != "grayscale" {
		t.Fatalf("unexpected progress %+v", shown.Progress)
	}
}

func TestStorageEndpoint(t *testing.T) {
	server := newTestServer(t)
	data := testsupport.ThreePageCBZ(t)
	uploadComic(t, server, "demo.cbz", data).Body.Close()

	resp, err := http.Get(server.URL + "/api/storage")
	if err != nil {
		t.Fatalf("GET /api/storage: %v", err)
	}
	view := decodeJSON[api.StorageView](t, resp)
	if view.UsedBytes < uint64(len(data)) {
		t.Fatalf("usage %d should cover the blob of %d bytes", view.UsedBytes, len(data))
	}
}

func TestStatusEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	status := decodeJSON[Status](t, resp)
	if status.Running {
		t.Fatal("daemon was never started")
	}
	if status.DatabasePath == "" || status.LockFilePath == "" {
		t.Fatalf("status paths missing: %+v", status)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/storage", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/storage: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status %d, want 405", resp.StatusCode)
	}
}
