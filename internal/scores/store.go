package scores

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"talkclip/internal/config"
	"talkclip/internal/logging"
	"talkclip/internal/services"
)

// Layout names the detector workspace entries for a video.
type Layout struct {
	CropDir        string
	WorkDir        string
	OutputDir      string
	ScoresFile     string
	TracksFile     string
	VideoExtension string
	AudioExtension string
}

// LayoutFromConfig derives the workspace layout from configuration.
func LayoutFromConfig(cfg *config.Config) Layout {
	return Layout{
		CropDir:        cfg.Layout.CropDir,
		WorkDir:        cfg.Layout.WorkDir,
		OutputDir:      cfg.Layout.OutputDir,
		ScoresFile:     cfg.Layout.ScoresFile,
		TracksFile:     cfg.Layout.TracksFile,
		VideoExtension: cfg.Extraction.VideoExtension,
		AudioExtension: cfg.Extraction.AudioExtension,
	}
}

// Track is one face track with its scores and media artifacts.
type Track struct {
	Index     int
	Scores    []float64
	VideoPath string
	// AudioPath is empty when no separate audio artifact exists.
	AudioPath  string
	Descriptor json.RawMessage
}

// HasAudio reports whether the track carries a separate audio artifact.
func (t Track) HasAudio() bool {
	return t.AudioPath != ""
}

// Video is the loaded detector output for one video.
type Video struct {
	Name      string
	Root      string
	OutputDir string
	Tracks    []Track
	// DescriptorCount is the number of track descriptors, reported as the run's total tracks.
	DescriptorCount int
	ScoreCount      int
}

// Store reads detector workspaces.
type Store struct {
	layout Layout
	logger *slog.Logger
}

// NewStore constructs a store for the given layout.
func NewStore(layout Layout, logger *slog.Logger) *Store {
	return &Store{
		layout: layout,
		logger: logging.NewComponentLogger(logger, "scores"),
	}
}

// VideoRoot returns <videoFolder>/<videoName>.
func (s *Store) VideoRoot(videoFolder, videoName string) string {
	return filepath.Join(videoFolder, videoName)
}

// OutputDir returns the per-video clip directory.
func (s *Store) OutputDir(videoFolder, videoName string) string {
	return filepath.Join(s.VideoRoot(videoFolder, videoName), s.layout.OutputDir)
}

// WorkspaceExists reports whether the scores file for a video is present.
func (s *Store) WorkspaceExists(videoFolder, videoName string) bool {
	info, err := os.Stat(s.scoresPath(s.VideoRoot(videoFolder, videoName)))
	return err == nil && !info.IsDir()
}

// Load reads scores and descriptors and resolves per-track artifact paths.
func (s *Store) Load(videoFolder, videoName string) (*Video, error) {
	videoName = strings.TrimSpace(videoName)
	if videoName == "" {
		return nil, services.Wrap(services.ErrMissingInput, "load", "resolve video", "video name is empty", nil)
	}
	root := s.VideoRoot(videoFolder, videoName)

	var scoreSeqs [][]float64
	if err := readJSON(s.scoresPath(root), &scoreSeqs); err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "load", "read scores", s.scoresPath(root), err)
	}
	if scoreSeqs == nil {
		return nil, services.Wrap(services.ErrMissingInput, "load", "read scores", s.scoresPath(root)+": not a list of score sequences", nil)
	}
	var descriptors []json.RawMessage
	if err := readJSON(s.tracksPath(root), &descriptors); err != nil {
		return nil, services.Wrap(services.ErrMissingInput, "load", "read tracks", s.tracksPath(root), err)
	}
	if descriptors == nil {
		return nil, services.Wrap(services.ErrMissingInput, "load", "read tracks", s.tracksPath(root)+": not a list of track descriptors", nil)
	}

	count := min(len(scoreSeqs), len(descriptors))
	if len(scoreSeqs) != len(descriptors) {
		logging.WarnWithContext(s.logger, "score and track counts differ", "track_count_mismatch",
			logging.String(logging.FieldVideo, videoName),
			logging.Int("score_sequences", len(scoreSeqs)),
			logging.Int("track_descriptors", len(descriptors)),
			logging.String(logging.FieldErrorHint, "re-run the detector for this video"),
			logging.String(logging.FieldImpact, fmt.Sprintf("only the first %d tracks are processed", count)))
	}

	video := &Video{
		Name:            videoName,
		Root:            root,
		OutputDir:       filepath.Join(root, s.layout.OutputDir),
		Tracks:          make([]Track, 0, count),
		DescriptorCount: len(descriptors),
		ScoreCount:      len(scoreSeqs),
	}
	for idx := 0; idx < count; idx++ {
		track := Track{
			Index:      idx,
			Scores:     scoreSeqs[idx],
			VideoPath:  s.artifactPath(root, idx, s.layout.VideoExtension),
			Descriptor: descriptors[idx],
		}
		audio := s.artifactPath(root, idx, s.layout.AudioExtension)
		if info, err := os.Stat(audio); err == nil && !info.IsDir() {
			track.AudioPath = audio
		}
		video.Tracks = append(video.Tracks, track)
	}

	s.logger.Debug("loaded detector output",
		logging.String(logging.FieldVideo, videoName),
		logging.Int("tracks", len(video.Tracks)),
		logging.String("root", root))
	return video, nil
}

// ArtifactName returns the per-track artifact file name, e.g. 00003.avi.
func ArtifactName(index int, ext string) string {
	return fmt.Sprintf("%05d.%s", index, ext)
}

func (s *Store) artifactPath(root string, index int, ext string) string {
	return filepath.Join(root, s.layout.CropDir, ArtifactName(index, ext))
}

func (s *Store) scoresPath(root string) string {
	return filepath.Join(root, s.layout.WorkDir, s.layout.ScoresFile)
}

func (s *Store) tracksPath(root string) string {
	return filepath.Join(root, s.layout.WorkDir, s.layout.TracksFile)
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("file not found: %w", err)
		}
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}
