package similarity

import (
	"math"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"image-duplicate-finder/internal/scanner"
)

// SimilarPair represents a pair of files with similar names
type SimilarPair struct {
	File1      scanner.ImageFile
	File2      scanner.ImageFile
	Similarity float64
}

// FindSimilarNames finds pairs of files with similar names using parallel
// processing. It complements the visual pass: renamed exports or re-encodes
// of the same shot often keep most of the filename while changing every byte.
func FindSimilarNames(files []scanner.ImageFile, threshold int) []SimilarPair {
	if len(files) < 2 {
		return nil
	}

	type normalized struct {
		file scanner.ImageFile
		name string
	}
	norm := make([]normalized, len(files))
	for i, f := range files {
		norm[i] = normalized{file: f, name: NormalizeName(f.Name)}
	}

	numWorkers := runtime.NumCPU()
	pairsChan := make(chan SimilarPair, 1000)
	var wg sync.WaitGroup

	// Split the outer loop among workers
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := workerID; i < len(norm); i += numWorkers {
				f1 := norm[i]

				for j := i + 1; j < len(norm); j++ {
					f2 := norm[j]

					// Fast path: wildly different lengths cannot
					// reach any useful similarity.
					len1 := utf8.RuneCountInString(f1.name)
					len2 := utf8.RuneCountInString(f2.name)
					if len1 > 0 && len2 > 0 {
						ratio := float64(len1) / float64(len2)
						if ratio < 0.4 || ratio > 2.5 {
							continue
						}
					}

					score := Score(f1.name, f2.name)
					if score >= float64(threshold) {
						pairsChan <- SimilarPair{File1: f1.file, File2: f2.file, Similarity: score}
					}
				}
			}
		}(w)
	}

	var pairs []SimilarPair
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for p := range pairsChan {
			pairs = append(pairs, p)
		}
	}()

	wg.Wait()
	close(pairsChan)
	collectWg.Wait()

	return pairs
}

// Score rates two already-normalized names on a 0-100 scale: a weighted mix
// of Levenshtein similarity (reliable for edit-style renames) and bigram
// Jaccard (tolerant of word reordering).
func Score(norm1, norm2 string) float64 {
	if norm1 == norm2 {
		return 100.0
	}

	lev := levenshteinSimilarity(norm1, norm2)
	gram := bigramSimilarity(norm1, norm2)

	score := (lev*0.7 + gram*0.3) * 100
	return math.Round(score*10) / 10
}

// NameScore rates two raw filenames.
func NameScore(name1, name2 string) float64 {
	return Score(NormalizeName(name1), NormalizeName(name2))
}

// NormalizeName strips the extension, lowercases, flattens separators and
// removes trailing copy markers like " (2)" or "_copy".
func NormalizeName(filename string) string {
	name := filename
	if idx := strings.LastIndex(filename, "."); idx != -1 {
		name = filename[:idx]
	}

	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	name = strings.TrimSpace(name)

	// "photo (2)" -> "photo"
	if strings.HasSuffix(name, ")") {
		if open := strings.LastIndex(name, "("); open > 0 {
			inner := name[open+1 : len(name)-1]
			if isDigits(inner) {
				name = strings.TrimSpace(name[:open])
			}
		}
	}

	// "photo copy" / "photo copy 3" -> "photo"
	if idx := strings.LastIndex(name, " copy"); idx != -1 {
		rest := strings.TrimSpace(name[idx+5:])
		if rest == "" || isDigits(rest) {
			name = strings.TrimSpace(name[:idx])
		}
	}

	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// levenshteinSimilarity maps edit distance onto [0,1].
func levenshteinSimilarity(s1, s2 string) float64 {
	maxLen := math.Max(float64(utf8.RuneCountInString(s1)), float64(utf8.RuneCountInString(s2)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(s1, s2))/maxLen
}

// levenshteinDistance with a rolling two-row matrix.
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}

			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}

// bigramSimilarity is the Jaccard index over character bigrams.
func bigramSimilarity(s1, s2 string) float64 {
	g1 := bigrams(s1)
	g2 := bigrams(s2)

	if len(g1) == 0 && len(g2) == 0 {
		return 1.0
	}
	if len(g1) == 0 || len(g2) == 0 {
		return 0.0
	}

	common := 0
	for g := range g1 {
		if g2[g] {
			common++
		}
	}

	total := len(g1) + len(g2) - common
	if total == 0 {
		return 0.0
	}
	return float64(common) / float64(total)
}

func bigrams(s string) map[string]bool {
	grams := make(map[string]bool)
	if len(s) < 2 {
		if s != "" {
			grams[s] = true
		}
		return grams
	}
	for i := 0; i+2 <= len(s); i++ {
		grams[s[i:i+2]] = true
	}
	return grams
}
