package worker

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakeRunner simulates process execution.
type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	run   func(ctx context.Context, name string, args ...string) (CommandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (CommandResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.run == nil {
		return CommandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

func (f *fakeRunner) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// fakeMogrify writes one <base>.jpg per input into the -path directory.
func fakeMogrify(t *testing.T, args []string) {
	t.Helper()
	outDir := argValue(args, "-path")
	extent := indexOf(args, "-extent")
	if outDir == "" || extent < 0 {
		t.Fatalf("unexpected mogrify args: %v", args)
	}
	for _, in := range args[extent+2:] {
		base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		mustWriteFile(t, filepath.Join(outDir, base+".jpg"), "jpg")
	}
}

type fakeFetcher struct {
	mu      sync.Mutex
	fetched []string
	fail    map[string]error
}

func (f *fakeFetcher) Fetch(ctx context.Context, source string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, source)
	if err, ok := f.fail[source]; ok {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader([]byte("image:" + source))), nil
}

type fakeArtifactStore struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	uploadErr error
	urlErr    error
	baseURL   string
}

func newFakeArtifactStore() *fakeArtifactStore {
	return &fakeArtifactStore{uploads: make(map[string][]byte), baseURL: "https://cdn.example.com/"}
}

func (f *fakeArtifactStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	if contentType != "video/mp4" {
		return errors.New("unexpected content type " + contentType)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return errors.New("size mismatch")
	}
	f.mu.Lock()
	f.uploads[key] = b
	f.mu.Unlock()
	return nil
}

func (f *fakeArtifactStore) URL(ctx context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return f.baseURL + key, nil
}

func (f *fakeArtifactStore) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func argValue(args []string, flag string) string {
	if i := indexOf(args, flag); i >= 0 && i+1 < len(args) {
		return args[i+1]
	}
	return ""
}

func indexOf(args []string, flag string) int {
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	return -1
}

func countOf(args []string, flag string) int {
	n := 0
	for _, a := range args {
		if a == flag {
			n++
		}
	}
	return n
}
