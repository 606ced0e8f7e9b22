package dif

import (
	"errors"
	"time"
)

// Errors
var (
	ErrInvalidRoot = errors.New("root is not a directory")
	ErrFileAccess  = errors.New("file access failed")
)

// Sort orders for SortGroups
const (
	SortByTotalSize = iota
	SortBySize
	SortByCount
)

// DuplicateGroup holds the paths of files sharing one content digest.
// Size is the byte size of a single member, TotalSize the sum over all of them.
type DuplicateGroup struct {
	Digest    string
	Paths     []string
	Size      int64
	TotalSize int64
}

// FileError records one candidate file (or directory) that could not be
// processed. The scan continues past these.
type FileError struct {
	Path string
	Err  error
}

// ScanResult is the complete outcome of one Scan call.
//
// With more than one hashing worker, path order inside a group reflects
// hashing completion order rather than traversal order. Group order always
// follows first appearance of each digest at the aggregator.
type ScanResult struct {
	Groups    []DuplicateGroup
	Errors    []FileError
	Scanned   int
	Elapsed   time.Duration
	Cancelled bool
}

type Groups []DuplicateGroup

func (g Groups) Len() int      { return len(g) }
func (g Groups) Swap(i, j int) { g[i], g[j] = g[j], g[i] }

type ByTotalSize struct{ Groups }

func (g ByTotalSize) Less(i, j int) bool { return g.Groups[i].TotalSize > g.Groups[j].TotalSize }

type BySize struct{ Groups }

func (g BySize) Less(i, j int) bool { return g.Groups[i].Size > g.Groups[j].Size }

type ByCount struct{ Groups }

func (g ByCount) Less(i, j int) bool { return len(g.Groups[i].Paths) > len(g.Groups[j].Paths) }

type candidate struct {
	path string
	size int64
}

type hashResult struct {
	path   string
	size   int64
	digest string
	err    error
}
