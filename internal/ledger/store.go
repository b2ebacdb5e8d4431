package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// timestampLayout sorts lexically in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset history)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("run id is empty")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (
                id, video, video_folder, params_key, threshold, min_duration_seconds, fps,
                status, started_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.Video,
			run.VideoFolder,
			run.ParamsKey(),
			run.Params.Threshold,
			run.Params.MinDurationSeconds,
			run.Params.FPS,
			StatusRunning,
			run.StartedAt.UTC().Format(timestampLayout),
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// RecordClips stores the attempted segments of a run in one transaction.
func (s *Store) RecordClips(ctx context.Context, runID string, clips []Clip) error {
	if len(clips) == 0 {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin clips tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO clips (
                run_id, track, segment, start_frame, end_frame, start_seconds, duration_seconds,
                video_path, audio_path, audio_decoded, error_message
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare clip insert: %w", err)
		}
		defer stmt.Close()

		for _, clip := range clips {
			if _, err := stmt.ExecContext(ctx,
				runID,
				clip.Track,
				clip.Segment,
				clip.StartFrame,
				clip.EndFrame,
				clip.StartSeconds,
				clip.DurationSeconds,
				nullableString(clip.VideoPath),
				nullableString(clip.AudioPath),
				boolToInt(clip.AudioDecoded),
				nullableString(clip.Error),
			); err != nil {
				return fmt.Errorf("insert clip %d/%d: %w", clip.Track, clip.Segment, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit clips: %w", err)
		}
		return nil
	})
}

// FinishRun records the final status and totals.
func (s *Store) FinishRun(ctx context.Context, runID string, outcome Outcome) error {
	if outcome.Status == "" {
		outcome.Status = StatusCompleted
	}
	message := ""
	if outcome.Err != nil {
		message = outcome.Err.Error()
	}
	now := time.Now().UTC().Format(timestampLayout)
	return retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`UPDATE runs
             SET status = ?, total_tracks = ?, segments_kept = ?, segments_extracted = ?,
                 segments_failed = ?, error_message = ?, finished_at = ?
             WHERE id = ?`,
			outcome.Status,
			outcome.TotalTracks,
			outcome.Kept,
			outcome.Extracted,
			outcome.Failed,
			nullableString(message),
			now,
			runID,
		)
		if err != nil {
			return fmt.Errorf("finish run: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("finish run: run %s not found", runID)
		}
		return nil
	})
}

const runColumns = `id, video, video_folder, threshold, min_duration_seconds, fps, status,
    total_tracks, segments_kept, segments_extracted, segments_failed, error_message, started_at, finished_at`

// LastCompleted returns the most recent completed run for a video, or nil.
func (s *Store) LastCompleted(ctx context.Context, videoFolder, video string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs
         WHERE video_folder = ? AND video = ? AND status = ?
         ORDER BY started_at DESC LIMIT 1`,
		videoFolder, video, StatusCompleted)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last completed run: %w", err)
	}
	return run, nil
}

// GetRun fetches a run by id, or nil when absent.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// ListClips returns the clips of a run ordered by track and segment.
func (s *Store) ListClips(ctx context.Context, runID string) ([]Clip, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT track, segment, start_frame, end_frame, start_seconds, duration_seconds,
                video_path, audio_path, audio_decoded, error_message
         FROM clips WHERE run_id = ? ORDER BY track, segment`, runID)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var clips []Clip
	for rows.Next() {
		var (
			clip                       Clip
			videoPath, audioPath, errs sql.NullString
			decoded                    int
		)
		if err := rows.Scan(&clip.Track, &clip.Segment, &clip.StartFrame, &clip.EndFrame,
			&clip.StartSeconds, &clip.DurationSeconds, &videoPath, &audioPath, &decoded, &errs); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		clip.VideoPath = videoPath.String
		clip.AudioPath = audioPath.String
		clip.AudioDecoded = decoded != 0
		clip.Error = errs.String
		clips = append(clips, clip)
	}
	return clips, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		status     string
		errMessage sql.NullString
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(
		&run.ID,
		&run.Video,
		&run.VideoFolder,
		&run.Params.Threshold,
		&run.Params.MinDurationSeconds,
		&run.Params.FPS,
		&status,
		&run.TotalTracks,
		&run.Kept,
		&run.Extracted,
		&run.Failed,
		&errMessage,
		&startedAt,
		&finishedAt,
	); err != nil {
		return nil, err
	}
	run.Status = Status(status)
	run.Error = errMessage.String
	if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		run.StartedAt = t
	}
	if finishedAt.Valid {
		if t, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}
