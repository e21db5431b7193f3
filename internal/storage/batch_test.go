package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"realtyBack/internal/models"
)

// makeFileHeaders builds real multipart file headers the way a submitted
// form would carry them.
func makeFileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range names {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}
		if _, err := part.Write([]byte("payload of " + name)); err != nil {
			t.Fatalf("writing to form file failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing writer failed: %v", err)
	}

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("ParseMultipartForm failed: %v", err)
	}
	return req.MultipartForm.File["images"]
}

type fakeFileUploader struct {
	mu     sync.Mutex
	keys   []string
	gates  map[string]chan struct{}
	done   chan string
	failOn string
}

func (f *fakeFileUploader) fileName(key string) string {
	// key is {owner}-{filename}-{uuid}
	trimmed := strings.TrimPrefix(key, "owner1-")
	idx := strings.LastIndex(trimmed, "-")
	for i := 0; i < 4; i++ {
		idx = strings.LastIndex(trimmed[:idx], "-")
	}
	return trimmed[:idx]
}

func (f *fakeFileUploader) UploadFile(_ context.Context, key string, body io.ReadSeeker, _ int64, _ string) (string, error) {
	name := f.fileName(key)
	if f.gates != nil {
		if gate, ok := f.gates[name]; ok {
			<-gate
		}
	}

	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}

	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	if f.done != nil {
		f.done <- name
	}
	if name == f.failOn {
		return "", errors.New("storage rejected " + name)
	}
	return "url-" + name, nil
}

func TestUploadAllPreservesInputOrder(t *testing.T) {
	files := makeFileHeaders(t, "a.jpg", "b.jpg", "c.jpg")

	up := &fakeFileUploader{
		gates: map[string]chan struct{}{
			"a.jpg": make(chan struct{}),
			"b.jpg": make(chan struct{}),
		},
		done: make(chan string, 3),
	}

	// Completion order forced to c, b, a, the reverse of submission order.
	go func() {
		for range up.done {
			break
		}
		close(up.gates["b.jpg"])
		for range up.done {
			break
		}
		close(up.gates["a.jpg"])
	}()

	urls, err := UploadAll(context.Background(), up, files, "owner1", nil)
	if err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}

	want := []string{"url-a.jpg", "url-b.jpg", "url-c.jpg"}
	for i, u := range urls {
		if u != want[i] {
			t.Fatalf("expected input order preserved, got %v", urls)
		}
	}
}

func TestUploadAllFailsWholeBatch(t *testing.T) {
	files := makeFileHeaders(t, "a.jpg", "b.jpg", "c.jpg")
	up := &fakeFileUploader{failOn: "b.jpg"}

	urls, err := UploadAll(context.Background(), up, files, "owner1", nil)
	if !errors.Is(err, models.ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
	if urls != nil {
		t.Fatalf("expected no URL list on batch failure, got %v", urls)
	}
}

func TestUploadAllKeyFormat(t *testing.T) {
	files := makeFileHeaders(t, "photo.jpg")
	up := &fakeFileUploader{}

	if _, err := UploadAll(context.Background(), up, files, "owner1", nil); err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}

	key := up.keys[0]
	if !strings.HasPrefix(key, "owner1-photo.jpg-") {
		t.Fatalf("unexpected key prefix: %q", key)
	}
	suffix := strings.TrimPrefix(key, "owner1-photo.jpg-")
	if _, err := uuid.Parse(suffix); err != nil {
		t.Fatalf("expected uuid suffix, got %q: %v", suffix, err)
	}
}

func TestUploadAllUniqueKeysForSameFilename(t *testing.T) {
	files := makeFileHeaders(t, "photo.jpg", "photo.jpg")
	up := &fakeFileUploader{}

	if _, err := UploadAll(context.Background(), up, files, "owner1", nil); err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}
	if up.keys[0] == up.keys[1] {
		t.Fatalf("expected distinct keys for identically named files, got %q twice", up.keys[0])
	}
}

func TestUploadAllReportsProgress(t *testing.T) {
	files := makeFileHeaders(t, "a.jpg")
	up := &fakeFileUploader{}

	var (
		mu       sync.Mutex
		lastSent int64
		total    int64
	)
	progress := func(fileName string, transferred, tot int64) {
		if fileName != "a.jpg" {
			t.Errorf("unexpected file in progress event: %q", fileName)
		}
		mu.Lock()
		lastSent, total = transferred, tot
		mu.Unlock()
	}

	if _, err := UploadAll(context.Background(), up, files, "owner1", progress); err != nil {
		t.Fatalf("UploadAll failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if total != int64(len("payload of a.jpg")) {
		t.Fatalf("unexpected total %d", total)
	}
	if lastSent != total {
		t.Fatalf("expected final progress event at total, got %d/%d", lastSent, total)
	}
}

func TestProgressReaderResetsOnRewind(t *testing.T) {
	data := []byte("0123456789")
	var last int64
	pr := &progressReader{
		rs:    bytes.NewReader(data),
		total: int64(len(data)),
		onChange: func(transferred, _ int64) {
			last = transferred
		},
	}

	if _, err := io.ReadAll(pr); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if last != int64(len(data)) {
		t.Fatalf("expected %d transferred, got %d", len(data), last)
	}

	// The SDK rewinds before a resend; the counter must not run past total.
	if _, err := pr.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if _, err := io.ReadAll(pr); err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if last != int64(len(data)) {
		t.Fatalf("expected counter reset on rewind, got %d", last)
	}
}
