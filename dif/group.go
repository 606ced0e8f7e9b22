package dif

// groupingIndex maps digests to the files producing them. It is owned by the
// aggregator alone, so no locking is needed. Distinct digests keep their
// first-insertion order; paths inside a bucket keep arrival order.
type groupingIndex struct {
	order   []string
	buckets map[string]*bucket
}

type bucket struct {
	paths []string
	size  int64
	total int64
}

func newGroupingIndex() *groupingIndex {
	return &groupingIndex{
		buckets: make(map[string]*bucket),
	}
}

func (g *groupingIndex) record(path, digest string, size int64) {
	b, ok := g.buckets[digest]
	if !ok {
		b = &bucket{size: size}
		g.buckets[digest] = b
		g.order = append(g.order, digest)
	}
	b.paths = append(b.paths, path)
	b.total += size
}

// finalize returns the buckets holding two or more files, in digest
// first-insertion order. Single-member buckets are unique files and carry no
// signal.
func (g *groupingIndex) finalize() []DuplicateGroup {
	groups := make([]DuplicateGroup, 0)
	for _, digest := range g.order {
		b := g.buckets[digest]
		if len(b.paths) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{
			Digest:    digest,
			Paths:     b.paths,
			Size:      b.size,
			TotalSize: b.total,
		})
	}
	return groups
}
