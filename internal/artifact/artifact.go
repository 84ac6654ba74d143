// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package artifact writes finished render outputs (PDF or HTML-fallback
// documents) to a local output directory, one file per render job, guarded
// by an advisory file lock so two supervisor instances never race on the
// same directory.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"magazinecore/internal/slug"
)

// Store writes render job artifacts under a root directory.
type Store struct {
	root string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create output dir: %w", err)
	}
	return &Store{root: dir}, nil
}

// lockTimeout bounds how long Write waits for the directory lock before
// giving up — long enough to ride out a neighboring job's write, short
// enough to fail loudly on a truly stuck lock.
const lockTimeout = 10 * time.Second

// Write saves content under a filename derived from issueID, the owning
// template pack's display name, and an epoch-millisecond timestamp (ext
// without its leading dot, e.g. "pdf" or "html"), returning the artifact's
// path relative to the store root — the value persisted as
// RenderJob.ArtifactURL. epochMs is a parameter rather than being read
// from time.Now() internally so callers can produce a deterministic name
// in tests.
func (s *Store) Write(issueID, packName string, epochMs int64, ext string, content []byte) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	lock := flock.New(filepath.Join(s.root, ".lock"))
	locked, err := lock.TryLockContext(ctx, 200*time.Millisecond)
	if err != nil {
		return "", fmt.Errorf("artifact: acquire lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("artifact: timed out waiting for output directory lock")
	}
	defer lock.Unlock()

	name := filename(issueID, packName, epochMs, ext)
	path := filepath.Join(s.root, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("artifact: write %s: %w", name, err)
	}
	return name, nil
}

// Open returns the absolute path of a previously written artifact.
func (s *Store) Open(relPath string) string {
	return filepath.Join(s.root, relPath)
}

// filename builds the on-disk artifact name:
// "<issue_id>-<slug(pack name)>-<epoch_ms>.<ext>".
func filename(issueID, packName string, epochMs int64, ext string) string {
	return fmt.Sprintf("%s-%s-%d.%s", issueID, slug.Generate(packName), epochMs, ext)
}
