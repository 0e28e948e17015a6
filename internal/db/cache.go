package db

import (
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"image-duplicate-finder/internal/reporter"
	"image-duplicate-finder/internal/scanner"
)

// Cache persists computed digests and finished reports between runs, keyed
// so that a touched file is re-hashed and an untouched one never is.
type Cache struct {
	db *sql.DB
}

// DefaultPath returns the cache location under the user config directory.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = "."
	}
	return filepath.Join(configDir, "image-finder-cache.db")
}

// NewCache opens (or creates) the cache database at path. An empty path
// selects DefaultPath.
func NewCache(path string) (*Cache, error) {
	if path == "" {
		path = DefaultPath()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS visual_hashes (
			path TEXT NOT NULL,
			algo TEXT NOT NULL,
			bits INTEGER NOT NULL,
			digest TEXT NOT NULL,
			mod_time TEXT,
			size INTEGER,
			PRIMARY KEY (path, algo, bits)
		)`,
		`CREATE TABLE IF NOT EXISTS scan_cache (
			fingerprint TEXT PRIMARY KEY,
			results_json TEXT
		)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}

	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// GetDigest returns the cached digest for a file, missing when the file's
// modification time or size no longer match the cached entry.
func (c *Cache) GetDigest(path, algo string, bits int, modTime string, size int64) (string, bool) {
	var digest, cachedModTime string
	var cachedSize int64
	err := c.db.QueryRow(
		"SELECT digest, mod_time, size FROM visual_hashes WHERE path = ? AND algo = ? AND bits = ?",
		path, algo, bits,
	).Scan(&digest, &cachedModTime, &cachedSize)
	if err != nil || cachedModTime != modTime || cachedSize != size {
		return "", false
	}
	return digest, true
}

// PutDigest stores a computed digest. Failures are swallowed: the cache is
// an accelerator, not a store of record.
func (c *Cache) PutDigest(path, algo string, bits int, modTime string, size int64, digest string) {
	_, _ = c.db.Exec(
		"INSERT OR REPLACE INTO visual_hashes (path, algo, bits, digest, mod_time, size) VALUES (?, ?, ?, ?, ?, ?)",
		path, algo, bits, digest, modTime, size,
	)
}

// CalculateFingerprint derives a stable identifier for a file set, used to
// key cached reports.
func (c *Cache) CalculateFingerprint(files []scanner.ImageFile) string {
	sorted := make([]scanner.ImageFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Path < sorted[j].Path
	})

	h := sha256.New()
	for _, f := range sorted {
		h.Write([]byte(f.Path))
		h.Write([]byte(f.ModTime.String()))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// GetReport returns the cached similarity groups for a file-set fingerprint.
func (c *Cache) GetReport(fingerprint string) ([]reporter.SimilarityGroup, bool) {
	var jsonStr string
	err := c.db.QueryRow("SELECT results_json FROM scan_cache WHERE fingerprint = ?", fingerprint).Scan(&jsonStr)
	if err != nil {
		return nil, false
	}

	var groups []reporter.SimilarityGroup
	if err := json.Unmarshal([]byte(jsonStr), &groups); err != nil {
		return nil, false
	}
	return groups, true
}

// PutReport stores finished similarity groups for a file-set fingerprint.
func (c *Cache) PutReport(fingerprint string, groups []reporter.SimilarityGroup) {
	data, err := json.Marshal(groups)
	if err != nil {
		return
	}
	_, _ = c.db.Exec("INSERT OR REPLACE INTO scan_cache (fingerprint, results_json) VALUES (?, ?)", fingerprint, string(data))
}
