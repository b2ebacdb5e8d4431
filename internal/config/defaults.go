package config

const (
	defaultConfigPath         = "~/.config/talkclip/config.toml"
	defaultLogDir             = "~/.local/share/talkclip/logs"
	defaultLedgerFile         = "ledger.db"
	defaultThreshold          = 0.0
	defaultMinDurationSeconds = 0.5
	defaultFPS                = 25.0
	defaultWorkers            = 4
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultToolTimeoutSeconds = 300
	defaultVideoExtension     = "avi"
	defaultAudioExtension     = "wav"
	defaultCropDir            = "pycrop"
	defaultWorkDir            = "pywork"
	defaultOutputDir          = "speaking_segments"
	defaultScoresFile         = "scores.json"
	defaultTracksFile         = "tracks.json"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

var defaultVideoExtensions = []string{"mp4", "avi", "mov", "mkv"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Detection: Detection{
			Threshold:          defaultThreshold,
			MinDurationSeconds: defaultMinDurationSeconds,
			FPS:                defaultFPS,
		},
		Extraction: Extraction{
			Workers:            defaultWorkers,
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			ToolTimeoutSeconds: defaultToolTimeoutSeconds,
			VideoExtension:     defaultVideoExtension,
			AudioExtension:     defaultAudioExtension,
		},
		Layout: Layout{
			CropDir:    defaultCropDir,
			WorkDir:    defaultWorkDir,
			OutputDir:  defaultOutputDir,
			ScoresFile: defaultScoresFile,
			TracksFile: defaultTracksFile,
		},
		Batch: Batch{
			VideoExtensions: append([]string(nil), defaultVideoExtensions...),
			CopySource:      true,
			SkipCompleted:   true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
