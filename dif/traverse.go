package dif

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// traverse walks the subtree under root, emitting matching regular files as
// candidates. Directories that cannot be listed become soft errors on the
// results channel. Directory symlinks are followed, but each directory is
// visited at most once by resolved real path, so cyclic links terminate.
func (d *DuplicateImageFinder) traverse(ctx context.Context, root string, out chan<- candidate, results chan<- hashResult) {
	visited := make(map[string]bool)
	if real, err := filepath.EvalSymlinks(root); err == nil {
		visited[real] = true
	}
	d.walkDir(ctx, root, root, visited, out, results)
}

func (d *DuplicateImageFinder) walkDir(ctx context.Context, root, dir string, visited map[string]bool, out chan<- candidate, results chan<- hashResult) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		d.report(ctx, results, hashResult{path: dir, err: fmt.Errorf("%w: %s: %w", ErrFileAccess, dir, err)})
		return
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}

		path := filepath.Join(dir, entry.Name())
		if d.excluded(root, path) {
			continue
		}

		if entry.IsDir() {
			d.descend(ctx, root, path, visited, out, results)
			continue
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				if d.matchExt(entry.Name()) {
					d.report(ctx, results, hashResult{path: path, err: fmt.Errorf("%w: %s: %w", ErrFileAccess, path, err)})
				}
				continue
			}
			if target.IsDir() {
				d.descend(ctx, root, path, visited, out, results)
				continue
			}
			if target.Mode().IsRegular() && d.matchExt(entry.Name()) && target.Size() >= d.opts.MinFileSize {
				d.emit(ctx, out, candidate{path: path, size: target.Size()})
			}
			continue
		}

		if !d.matchExt(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			d.report(ctx, results, hashResult{path: path, err: fmt.Errorf("%w: %s: %w", ErrFileAccess, path, err)})
			continue
		}
		if info.Mode().IsRegular() && info.Size() >= d.opts.MinFileSize {
			d.emit(ctx, out, candidate{path: path, size: info.Size()})
		}
	}
}

func (d *DuplicateImageFinder) descend(ctx context.Context, root, dir string, visited map[string]bool, out chan<- candidate, results chan<- hashResult) {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		d.report(ctx, results, hashResult{path: dir, err: fmt.Errorf("%w: %s: %w", ErrFileAccess, dir, err)})
		return
	}
	if visited[real] {
		d.logger.Debugf("skipping already visited directory [%s]", dir)
		return
	}
	visited[real] = true
	d.walkDir(ctx, root, dir, visited, out, results)
}

func (d *DuplicateImageFinder) matchExt(name string) bool {
	_, ok := d.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (d *DuplicateImageFinder) excluded(root, path string) bool {
	if len(d.opts.Excludes) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range d.opts.Excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (d *DuplicateImageFinder) emit(ctx context.Context, out chan<- candidate, c candidate) {
	select {
	case out <- c:
	case <-ctx.Done():
	}
}

func (d *DuplicateImageFinder) report(ctx context.Context, results chan<- hashResult, r hashResult) {
	select {
	case results <- r:
	case <-ctx.Done():
	}
}
