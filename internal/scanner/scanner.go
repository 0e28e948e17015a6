package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ImageFile represents a discovered image or image container
type ImageFile struct {
	Name    string
	Path    string
	Size    int64
	Type    string // "jpg", "png", "gif", "webp", "bmp", "pnm" or a container type
	ModTime time.Time
}

// IsContainer reports whether the file is an archive that may hold images
// (comic-book archives and plain archives alike)
func (f ImageFile) IsContainer() bool {
	switch f.Type {
	case "zip", "rar", "7z":
		return true
	}
	return false
}

// BurstSuffix detects camera burst / download-copy naming like
// "IMG_1234 (2).jpg" or "photo_copy3.png".
// It returns (isBurst, baseName, copyNumber)
func (f ImageFile) BurstSuffix() (bool, string, string) {
	name := strings.ToLower(f.Name)
	if idx := strings.LastIndex(name, "."); idx != -1 {
		name = name[:idx]
	}

	// Pattern: "name (N)"
	if strings.HasSuffix(name, ")") {
		if open := strings.LastIndex(name, " ("); open != -1 {
			num := name[open+2 : len(name)-1]
			if isDigits(num) {
				return true, strings.TrimSpace(name[:open]), num
			}
		}
	}

	// Pattern: "name_copyN" / "name-copyN" / "name copyN"
	for _, sep := range []string{"_copy", "-copy", " copy"} {
		if idx := strings.LastIndex(name, sep); idx != -1 {
			num := name[idx+len(sep):]
			if num == "" || isDigits(num) {
				return true, strings.TrimSpace(name[:idx]), num
			}
		}
	}

	return false, "", ""
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

// ScanDirectory scans a directory for image files and image containers
func ScanDirectory(dir string, recursive bool) ([]ImageFile, error) {
	var files []ImageFile

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// If not recursive and not the root directory, skip
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		imageType := getImageType(path)
		if imageType != "" {
			files = append(files, ImageFile{
				Name:    info.Name(),
				Path:    path,
				Size:    info.Size(),
				Type:    imageType,
				ModTime: info.ModTime(),
			})
		}

		return nil
	})

	return files, err
}

// getImageType returns the image type based on file extension
func getImageType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "jpg"
	case ".png":
		return "png"
	case ".gif":
		return "gif"
	case ".webp":
		return "webp"
	case ".bmp":
		return "bmp"
	case ".pgm", ".ppm", ".pnm":
		return "pnm"
	case ".zip", ".cbz":
		return "zip"
	case ".rar", ".cbr":
		return "rar"
	case ".7z", ".cb7":
		return "7z"
	default:
		return ""
	}
}

// GroupBySize groups files by their size
func GroupBySize(files []ImageFile) map[int64][]ImageFile {
	groups := make(map[int64][]ImageFile)

	for _, file := range files {
		groups[file.Size] = append(groups[file.Size], file)
	}

	return groups
}

// PrintFileStats prints statistics about scanned files
func PrintFileStats(files []ImageFile) {
	stats := make(map[string]int)
	var totalSize int64
	var containers int

	for _, file := range files {
		stats[file.Type]++
		totalSize += file.Size
		if file.IsContainer() {
			containers++
		}
	}

	fmt.Printf("  • JPEG: %d files\n", stats["jpg"])
	fmt.Printf("  • PNG: %d files\n", stats["png"])
	fmt.Printf("  • Other images: %d files\n", stats["gif"]+stats["webp"]+stats["bmp"]+stats["pnm"])
	fmt.Printf("  • Archives: %d files\n", containers)
	fmt.Printf("  • Total size: %s\n", FormatBytes(totalSize))
}

// FormatBytes renders a byte count in a human-readable unit
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
