package dif

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
)

// DefaultExtensions is the image suffix set scanned when Options.Extensions
// is left empty. Matching is case-insensitive.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// Options configures one finder. The zero value is usable; empty fields fall
// back to the defaults below.
type Options struct {
	Algorithm   string   // digest algorithm: sha256 (default), sha1, md5, highway
	ChunkSize   int      // streaming read size, default 64 KiB
	Extensions  []string // candidate suffixes, default DefaultExtensions
	Workers     int      // hashing goroutines, default runtime.NumCPU()
	MinFileSize int64    // candidates below this size are skipped
	Excludes    []string // doublestar patterns matched against root-relative paths

	Logger *log.Logger // nil means logrus standard logger

	// Progress, when set, is called once per hashed candidate from the
	// aggregator goroutine.
	Progress func(path string)
}

type DuplicateImageFinder struct {
	opts       Options
	extensions map[string]bool
	logger     *log.Logger
}

func NewDuplicateImageFinder(opts Options) (*DuplicateImageFinder, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = "sha256"
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	if _, err := newHasher(opts.Algorithm); err != nil {
		return nil, err
	}
	for _, pattern := range opts.Excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}

	extensions := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = true
	}

	d := DuplicateImageFinder{
		opts:       opts,
		extensions: extensions,
		logger:     opts.Logger,
	}
	d.logger.WithFields(log.Fields{
		"algorithm":     opts.Algorithm,
		"chunk_size":    opts.ChunkSize,
		"workers":       opts.Workers,
		"min_file_size": opts.MinFileSize,
	}).Debug("settings")

	return &d, nil
}

// Scan walks the tree under root, hashes every candidate and groups files by
// content digest. Only an invalid root fails the call; every per-file problem
// is collected into ScanResult.Errors and the scan carries on. When ctx is
// cancelled mid-scan, the partial result is returned with Cancelled set and a
// nil error.
func (d *DuplicateImageFinder) Scan(ctx context.Context, root string) (*ScanResult, error) {
	started := time.Now()

	fi, err := os.Stat(root)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRoot, root)
	}

	d.logger.Infof("searching duplicate images in [%s]", root)

	paths := make(chan candidate, d.opts.Workers*2)
	results := make(chan hashResult, d.opts.Workers)

	var producers sync.WaitGroup
	producers.Add(1 + d.opts.Workers)

	go func() {
		defer producers.Done()
		defer close(paths)
		d.traverse(ctx, root, paths, results)
	}()

	for i := 0; i < d.opts.Workers; i++ {
		go func() {
			defer producers.Done()
			for c := range paths {
				if ctx.Err() != nil {
					continue
				}
				digest, err := d.digestFile(ctx, c.path)
				if err != nil {
					if ctx.Err() != nil {
						continue
					}
					results <- hashResult{path: c.path, err: err}
					continue
				}
				results <- hashResult{path: c.path, size: c.size, digest: digest}
			}
		}()
	}

	go func() {
		producers.Wait()
		close(results)
	}()

	// The aggregator owns the grouping index exclusively.
	index := newGroupingIndex()
	errors := make([]FileError, 0)
	scanned := 0
	for r := range results {
		if r.err != nil {
			d.logger.Errorf("failed to process [%s]: %v", r.path, r.err)
			errors = append(errors, FileError{Path: r.path, Err: r.err})
			continue
		}
		d.logger.Debugf("%s  %s", r.digest, r.path)
		index.record(r.path, r.digest, r.size)
		scanned++
		if d.opts.Progress != nil {
			d.opts.Progress(r.path)
		}
	}

	result := ScanResult{
		Groups:    index.finalize(),
		Errors:    errors,
		Scanned:   scanned,
		Elapsed:   time.Since(started),
		Cancelled: ctx.Err() != nil,
	}
	d.logger.WithFields(log.Fields{
		"scanned":   result.Scanned,
		"groups":    len(result.Groups),
		"errors":    len(result.Errors),
		"cancelled": result.Cancelled,
	}).Info("scan finished")

	return &result, nil
}

// SortGroups reorders groups in place by the given order (SortByTotalSize,
// SortBySize or SortByCount).
func SortGroups(groups []DuplicateGroup, sortBy int) {
	switch sortBy {
	case SortByCount:
		sort.Stable(ByCount{groups})
	case SortBySize:
		sort.Stable(BySize{groups})
	default:
		sort.Stable(ByTotalSize{groups})
	}
}

// GetSortValue maps a user-supplied sort name to a sort order.
func GetSortValue(sortBy string) int {
	switch strings.TrimSpace(strings.ToLower(sortBy)) {
	case "size":
		return SortBySize
	case "count":
		return SortByCount
	default:
		return SortByTotalSize
	}
}
