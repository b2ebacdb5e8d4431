package workflow

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
)

// fakeClips writes placeholder outputs and fails any call whose source
// contains one of failOn.
type fakeClips struct {
	mu     sync.Mutex
	calls  int
	failOn []string
}

func (f *fakeClips) do(src, dst string) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	for _, needle := range f.failOn {
		if strings.Contains(src, needle) {
			return errors.New("exit status 1: simulated failure")
		}
	}
	return os.WriteFile(dst, []byte("clip"), 0o644)
}

func (f *fakeClips) Trim(_ context.Context, src string, _, _ float64, dst string) error {
	return f.do(src, dst)
}

func (f *fakeClips) Mux(_ context.Context, video, _ string, dst string) error {
	return f.do(video, dst)
}

func (f *fakeClips) ExtractAudio(_ context.Context, src, dst string) error {
	return f.do(src, dst)
}

func (f *fakeClips) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
