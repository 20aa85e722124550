package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/labels-tracker/internal/document"
)

// IngestDirectory walks the runner's inbox and handles every document found
// in an organization folder. Per-file failures are reported in the results
// and do not stop the walk.
func (r *Runner) IngestDirectory(ctx context.Context, skipHidden bool) ([]FileResult, DirStats, error) {
	root := r.cfg.InboxDir
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("inbox dir is required")
	}

	var results []FileResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !document.Supported(path) {
			return nil
		}
		stats.Matched++

		job, err := r.JobFor(path)
		if err != nil {
			results = append(results, FileResult{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		res, err := r.Handle(ctx, job)
		results = append(results, res)
		switch {
		case err != nil:
			stats.Failed++
		case res.Duplicate:
			stats.Duplicate++
		default:
			stats.Succeeded++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
