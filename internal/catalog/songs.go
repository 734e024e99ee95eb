package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"

	"kashi/internal/decode"
)

// ErrNotFound is returned when no entry matches a lookup key.
var ErrNotFound = errors.New("catalog entry not found")

// Entry is one decoded song.
type Entry struct {
	ID        int64
	Digest    string
	Path      string
	Size      int64
	Format    string
	Title     string
	Artist    string
	Writer    string
	Composer  string
	Compounds int
	Warnings  int
	RunID     string
	// HasDocument reports whether the serialized document is stored.
	HasDocument bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Run is one batch invocation.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Failures   int
}

// StartRun records a new batch run.
func (s *Store) StartRun(ctx context.Context) (Run, error) {
	run := Run{ID: uuid.NewString(), StartedAt: time.Now().UTC()}
	if _, err := s.exec(ctx,
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		run.ID, run.StartedAt.Format(time.RFC3339Nano),
	); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stores the totals of a run.
func (s *Store) FinishRun(ctx context.Context, run *Run, files, failures int) error {
	run.FinishedAt = time.Now().UTC()
	run.Files = files
	run.Failures = failures
	if _, err := s.exec(ctx,
		"UPDATE runs SET finished_at = ?, files = ?, failures = ? WHERE id = ?",
		run.FinishedAt.Format(time.RFC3339Nano), files, failures, run.ID,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// Record upserts the entry for a successfully decoded file. The serialized
// document is stored only when storeDocument is set.
func (s *Store) Record(ctx context.Context, runID string, res decode.FileResult, storeDocument bool) error {
	if res.Err != nil || res.Document == nil {
		return fmt.Errorf("record %s: file did not decode", res.Path)
	}
	if res.Digest == "" {
		return fmt.Errorf("record %s: missing digest", res.Path)
	}

	meta := make(map[string]string, len(res.Document.Meta))
	for _, m := range res.Document.Meta {
		meta[m.Key] = m.Value
	}
	var blob []byte
	if storeDocument {
		var err error
		if blob, err = compress(res.Document.Bytes()); err != nil {
			return fmt.Errorf("record %s: %w", res.Path, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.exec(ctx,
		`INSERT INTO songs (
            digest, path, size, format, title, artist, writer, composer,
            compounds, warnings, run_id, document, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(digest) DO UPDATE SET
            path = excluded.path,
            size = excluded.size,
            format = excluded.format,
            title = excluded.title,
            artist = excluded.artist,
            writer = excluded.writer,
            composer = excluded.composer,
            compounds = excluded.compounds,
            warnings = excluded.warnings,
            run_id = excluded.run_id,
            document = excluded.document,
            updated_at = excluded.updated_at`,
		res.Digest, res.Path, res.Size, res.Format.String(),
		nullableString(meta["title"]), nullableString(meta["artist"]),
		nullableString(meta["writer"]), nullableString(meta["composer"]),
		len(res.Document.Compounds), len(res.Warnings),
		nullableString(runID), blob, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert song %s: %w", res.Path, err)
	}
	return nil
}

const entryColumns = `id, digest, path, size, format, title, artist, writer, composer,
    compounds, warnings, run_id, document IS NOT NULL, created_at, updated_at`

// List returns all entries ordered by artist then title.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM songs ORDER BY artist COLLATE NOCASE, title COLLATE NOCASE, id")
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return entries, nil
}

// Get looks an entry up by numeric id or by digest prefix.
func (s *Store) Get(ctx context.Context, key string) (Entry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Entry{}, ErrNotFound
	}
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM songs WHERE id = ?", id)
		e, err := scanEntry(row)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return e, err
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM songs WHERE digest LIKE ? ORDER BY id LIMIT 2",
		strings.ToLower(key)+"%")
	if err != nil {
		return Entry{}, fmt.Errorf("find song %s: %w", key, err)
	}
	defer rows.Close()
	var matches []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return Entry{}, err
		}
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, fmt.Errorf("iterate songs: %w", err)
	}
	switch len(matches) {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	case 1:
		return matches[0], nil
	default:
		return Entry{}, fmt.Errorf("digest prefix %q is ambiguous", key)
	}
}

// Document returns the stored serialized document of an entry.
func (s *Store) Document(ctx context.Context, id int64) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT document FROM songs WHERE id = ?", id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read document %d: %w", id, err)
	}
	if blob == nil {
		return nil, fmt.Errorf("song %d has no stored document", id)
	}
	return decompress(blob)
}

// Runs returns all runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, files, failures FROM runs ORDER BY started_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var (
			run      Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &finished, &run.Files, &run.Failures); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		if finished.Valid {
			run.FinishedAt = parseTime(finished.String)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e                               Entry
		title, artist, writer, composer sql.NullString
		runID                           sql.NullString
		created, updated                string
	)
	err := row.Scan(&e.ID, &e.Digest, &e.Path, &e.Size, &e.Format,
		&title, &artist, &writer, &composer,
		&e.Compounds, &e.Warnings, &runID, &e.HasDocument, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan song: %w", err)
	}
	e.Title = title.String
	e.Artist = artist.String
	e.Writer = writer.String
	e.Composer = composer.String
	e.RunID = runID.String
	e.CreatedAt = parseTime(created)
	e.UpdatedAt = parseTime(updated)
	return e, nil
}

func nullableString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress document: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close xz writer: %w", err)
	}
	return buf.Bytes(), nil
}

func decompress(blob []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("create xz reader: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress document: %w", err)
	}
	return data, nil
}
