package fsdb

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/zeebo/xxh3"
)

// readListing returns the entries of dir. A directory that cannot be read
// lists as empty.
func readListing(dir string) []fs.DirEntry {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Debug("read directory", slog.String("path", dir), slog.Any("error", err))
		return nil
	}
	return entries
}

// listingDigest hashes the entry paths of a listing. It changes whenever an
// entry is added, removed or renamed.
func listingDigest(dirPath string, entries []fs.DirEntry) uint64 {
	h := xxh3.New()
	for _, e := range entries {
		_, _ = h.Write([]byte(joinPath(dirPath, e.Name())))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
