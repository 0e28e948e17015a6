package visual

import (
	"fmt"
	"log"
	"sync"
	"time"

	"image-duplicate-finder/internal/blockhash"
	"image-duplicate-finder/internal/db"
	"image-duplicate-finder/internal/reporter"
	"image-duplicate-finder/internal/scanner"
)

// Options controls the digest pass.
type Options struct {
	Algorithm   Algorithm
	Size        blockhash.Size
	MaxDistance int
	Workers     int
	Debug       bool
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 4
	}
	return o.Workers
}

// ProcessDigests iterates over files and computes fingerprints for those not
// already cached at a matching modification time and size.
func ProcessDigests(files []scanner.ImageFile, cache *db.Cache, opts Options, onProgress func(float64)) {
	if cache == nil {
		return
	}

	total := len(files)
	var processed int
	var mu sync.Mutex

	advance := func() {
		mu.Lock()
		processed++
		if onProgress != nil {
			onProgress(float64(processed) / float64(total) * 100)
		}
		mu.Unlock()
	}

	// Use a worker pool to bound decode memory
	jobs := make(chan scanner.ImageFile, total)
	var wg sync.WaitGroup

	for w := 0; w < opts.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("🔥 CRITICAL RECOVERY: Digest worker recovered from panic: %v", r)
				}
			}()
			for f := range jobs {
				modTime := f.ModTime.Format(time.RFC3339)
				bits := opts.Algorithm.Bits(opts.Size)

				if _, ok := cache.GetDigest(f.Path, string(opts.Algorithm), bits, modTime, f.Size); ok {
					advance()
					continue
				}

				if opts.Debug {
					log.Printf("[VISUAL] Hashing %s", f.Name)
				}

				digest, err := ComputeFileDigest(f, opts.Algorithm, opts.Size)
				if err != nil {
					if opts.Debug {
						log.Printf("[VISUAL] Skipped %s: %v", f.Name, err)
					}
				} else {
					cache.PutDigest(f.Path, string(opts.Algorithm), bits, modTime, f.Size, digest.String())
				}

				advance()
			}
		}()
	}

	for _, f := range files {
		jobs <- f
	}
	close(jobs)
	wg.Wait()
}

// fileDigest couples a scanned file with its parsed fingerprint.
type fileDigest struct {
	file   scanner.ImageFile
	digest blockhash.Digest
}

// FindDuplicates groups files whose fingerprints lie within the Hamming
// distance threshold, using greedy clustering around the first unvisited
// file.
func FindDuplicates(files []scanner.ImageFile, cache *db.Cache, opts Options) []reporter.SimilarityGroup {
	if cache == nil || len(files) < 2 {
		return nil
	}

	var entries []fileDigest
	bits := opts.Algorithm.Bits(opts.Size)

	for _, f := range files {
		modTime := f.ModTime.Format(time.RFC3339)
		hx, ok := cache.GetDigest(f.Path, string(opts.Algorithm), bits, modTime, f.Size)
		if !ok {
			continue
		}
		d, err := blockhash.Parse(hx)
		if err != nil {
			// A corrupt cache row; the next digest pass rewrites it.
			continue
		}
		entries = append(entries, fileDigest{file: f, digest: d})
	}

	return clusterDigests(entries, opts.MaxDistance)
}

func clusterDigests(entries []fileDigest, maxDistance int) []reporter.SimilarityGroup {
	if len(entries) < 2 {
		return nil
	}

	visited := make(map[string]bool)
	var groups []reporter.SimilarityGroup

	for i := 0; i < len(entries); i++ {
		if visited[entries[i].file.Path] {
			continue
		}

		current := []fileDigest{entries[i]}
		visited[entries[i].file.Path] = true
		groupMax := 0

		for j := i + 1; j < len(entries); j++ {
			if visited[entries[j].file.Path] {
				continue
			}

			dist, err := entries[i].digest.Distance(entries[j].digest)
			if err != nil || dist > maxDistance {
				continue
			}

			current = append(current, entries[j])
			visited[entries[j].file.Path] = true
			if dist > groupMax {
				groupMax = dist
			}
		}

		if len(current) > 1 {
			var fileInfos []reporter.FileInfo
			for _, e := range current {
				fileInfos = append(fileInfos, reporter.FileInfo{
					Name:    e.file.Name,
					Path:    e.file.Path,
					Size:    e.file.Size,
					Type:    e.file.Type,
					ModTime: e.file.ModTime.Format(time.RFC3339),
					Digest:  e.digest.String(),
				})
			}

			groups = append(groups, reporter.SimilarityGroup{
				BaseName:    fmt.Sprintf("Visual Match: %s", current[0].file.Name),
				MaxDistance: groupMax,
				Files:       fileInfos,
			})
		}
	}

	return groups
}
