package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded generation of one declaration file.
type Run struct {
	ID           string
	SourcePath   string
	InputDigest  string
	OutputDigest string
	CreatedAt    time.Time
}

// OutputDigest computes the digest recorded for emitted Go source.
func OutputDigest(generated []byte) string {
	sum := sha256.Sum256(generated)
	return hex.EncodeToString(sum[:])
}

// Key derives the cache key for one generation: the declaration digest
// combined with every emit option that shapes the output, so changing
// the package name or header invalidates the cache the same way editing
// a clause does. Null separators prevent boundary ambiguity between
// parts.
func Key(fileDigest, pkg, lazyImport, header string) string {
	h := sha256.New()
	for _, part := range []string{fileDigest, pkg, lazyImport, header} {
		h.Write([]byte(part))
		h.Write([]byte{0x00})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RecordRun appends a run record and returns it. Timestamps are stored
// in RFC 3339 UTC so rows compare identically across machines.
func (c *Cache) RecordRun(ctx context.Context, sourcePath, inputDigest, outputDigest string) (*Run, error) {
	run := &Run{
		ID:           uuid.NewString(),
		SourcePath:   sourcePath,
		InputDigest:  inputDigest,
		OutputDigest: outputDigest,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO runs (id, source_path, input_digest, output_digest, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SourcePath,
		run.InputDigest,
		run.OutputDigest,
		run.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	return run, nil
}

// Lookup returns the most recent run with the given input digest, or
// nil if the digest has never been generated. A non-nil result means the
// declarations are unchanged and the generated output would be
// byte-identical to that run's output.
func (c *Cache) Lookup(ctx context.Context, inputDigest string) (*Run, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, source_path, input_digest, output_digest, created_at
		FROM runs
		WHERE input_digest = ?
		ORDER BY rowid DESC
		LIMIT 1
	`, inputDigest)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup run: %w", err)
	}
	return run, nil
}

// History returns every recorded run for a source path, newest first.
// Insertion order (rowid) breaks same-second timestamp ties so the
// listing is deterministic.
func (c *Cache) History(ctx context.Context, sourcePath string) ([]Run, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, source_path, input_digest, output_digest, created_at
		FROM runs
		WHERE source_path = ?
		ORDER BY rowid DESC
	`, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("run history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("run history: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("run history: %w", err)
	}
	return runs, nil
}

// scanner abstracts sql.Row and sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var createdAt string
	if err := s.Scan(&run.ID, &run.SourcePath, &run.InputDigest, &run.OutputDigest, &createdAt); err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	run.CreatedAt = ts
	return &run, nil
}
