package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WritePattern fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WritePattern(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := min(int64(chunkSize), remaining)
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// Workspace describes a detector workspace fixture.
type Workspace struct {
	Scores [][]float64
	// Video and Audio list the track indices whose crop artifacts exist.
	Video []int
	Audio []int
}

// WriteWorkspace lays out <folder>/<video>/pywork/{scores,tracks}.json and the
// requested pycrop artifacts using the default layout names.
func WriteWorkspace(t testing.TB, folder, video string, ws Workspace) string {
	t.Helper()

	root := filepath.Join(folder, video)
	scores, err := json.Marshal(ws.Scores)
	if err != nil {
		t.Fatalf("marshal scores: %v", err)
	}
	tracks := make([]map[string]int, len(ws.Scores))
	for idx := range tracks {
		tracks[idx] = map[string]int{"track": idx}
	}
	trackData, err := json.Marshal(tracks)
	if err != nil {
		t.Fatalf("marshal tracks: %v", err)
	}
	WriteFile(t, filepath.Join(root, "pywork", "scores.json"), string(scores))
	WriteFile(t, filepath.Join(root, "pywork", "tracks.json"), string(trackData))
	for _, idx := range ws.Video {
		WriteFile(t, filepath.Join(root, "pycrop", fmt.Sprintf("%05d.avi", idx)), "video")
	}
	for _, idx := range ws.Audio {
		WriteFile(t, filepath.Join(root, "pycrop", fmt.Sprintf("%05d.wav", idx)), "audio")
	}
	return root
}
