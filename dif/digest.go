package dif

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/minio/highwayhash"
)

const DefaultChunkSize = 64 * 1024

const highwayKey = "000102030405060708090A0B0C0D0E0FF0E0D0C0B0A090807060504030201000"

// newHasher returns a fresh hash state for the given algorithm identifier.
func newHasher(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "sha256":
		return sha256.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "md5":
		return md5.New(), nil
	case "highway":
		key, err := hex.DecodeString(highwayKey)
		if err != nil {
			return nil, err
		}
		return highwayhash.New(key)
	default:
		return nil, fmt.Errorf("unknown hash algorithm: %s", algorithm)
	}
}

// digestFile streams the file content into the configured hash in chunkSize
// reads and returns the digest as a lowercase hex string. The file handle is
// closed on every return path. Cancellation is observed between chunks.
func (d *DuplicateImageFinder) digestFile(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFileAccess, path, err)
	}
	defer file.Close()

	hasher, err := newHasher(d.opts.Algorithm)
	if err != nil {
		return "", err
	}

	buf := make([]byte, d.opts.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		n, err := file.Read(buf)
		if n > 0 {
			hasher.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrFileAccess, path, err)
		}
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
